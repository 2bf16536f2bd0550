package validation

import (
	"regexp"
	"strings"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,126}[a-z0-9]$|^[a-z0-9]$`)

// ValidateSlug validates an organization or team slug taken from the URL.
func ValidateSlug(slug string) []FieldError {
	var errs []FieldError

	if slug == "" {
		errs = append(errs, FieldError{Field: "slug", Message: "slug is required"})
	} else if !slugRegex.MatchString(slug) {
		errs = append(errs, FieldError{Field: "slug", Message: "slug must be lowercase alphanumeric with hyphens, at most 128 characters"})
	} else if strings.Contains(slug, "--") {
		errs = append(errs, FieldError{Field: "slug", Message: "slug must not contain consecutive hyphens"})
	}

	return errs
}
