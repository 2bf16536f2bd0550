package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is matched by errors for rejected credentials or an expired token.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotFound is matched by errors for a missing backend resource.
var ErrNotFound = errors.New("not found")

// ErrUnavailable is matched by transport failures and 5xx responses.
var ErrUnavailable = errors.New("backend unavailable")

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// Is maps status codes onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnavailable:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// TransportError wraps a failure to reach the backend at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports every transport failure as ErrUnavailable.
func (e *TransportError) Is(target error) bool {
	return target == ErrUnavailable
}

// Message returns a user-facing description of err.
func Message(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return apiErr.Message
		}
		return "Invalid email or password"
	case errors.Is(err, ErrUnavailable):
		return "The service is unavailable, please try again"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	}
	return "Something went wrong, please try again"
}
