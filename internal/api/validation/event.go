package validation

import (
	"strings"
	"time"
)

// EventRequest mirrors the fields needed for event create/update validation.
type EventRequest struct {
	Title    string
	StartsAt string
	EndsAt   string
	Location string
}

// ValidateEventRequest validates the fields of an event create or update request.
func ValidateEventRequest(req EventRequest) []FieldError {
	var errs []FieldError

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	} else if len(title) > 255 {
		errs = append(errs, FieldError{Field: "title", Message: "title must be at most 255 characters"})
	}

	if len(req.Location) > 255 {
		errs = append(errs, FieldError{Field: "location", Message: "location must be at most 255 characters"})
	}

	start, startErr := time.Parse(time.RFC3339, req.StartsAt)
	if req.StartsAt == "" {
		errs = append(errs, FieldError{Field: "startsAt", Message: "startsAt is required"})
	} else if startErr != nil {
		errs = append(errs, FieldError{Field: "startsAt", Message: "startsAt must be an RFC 3339 timestamp"})
	}

	if req.EndsAt != "" {
		end, err := time.Parse(time.RFC3339, req.EndsAt)
		switch {
		case err != nil:
			errs = append(errs, FieldError{Field: "endsAt", Message: "endsAt must be an RFC 3339 timestamp"})
		case startErr == nil && end.Before(start):
			errs = append(errs, FieldError{Field: "endsAt", Message: "endsAt must not be before startsAt"})
		}
	}

	return errs
}
