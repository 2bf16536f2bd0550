package validation

import (
	"regexp"
	"strings"
)

// emailRegex accepts the usual local@domain.tld shape. It is not an RFC 5322
// parser; the backend remains the authority on whether an address exists.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateCredentials validates an email/password pair before it is sent to
// the backend. Returns a slice of field errors; empty slice means valid.
func ValidateCredentials(email, password string) []FieldError {
	var errs []FieldError

	email = strings.TrimSpace(email)
	if email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	} else if !emailRegex.MatchString(email) {
		errs = append(errs, FieldError{Field: "email", Message: "email must be a valid address"})
	}

	if password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	}

	return errs
}

// IsValidEmail reports whether email has the local@domain.tld shape.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}
