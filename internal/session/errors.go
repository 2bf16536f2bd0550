package session

import (
	"errors"
	"strings"

	"github.com/kanakk365/ysntest-sub001/internal/api/validation"
)

// ErrMalformedState is returned when persisted session data cannot be restored.
var ErrMalformedState = errors.New("malformed persisted session")

// ValidationError reports credentials rejected before any network call.
type ValidationError struct {
	Fields []validation.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}
