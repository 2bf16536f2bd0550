package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kanakk365/ysntest-sub001/internal/backend"
)

// BackendErr writes the envelope for an error returned by the backend client.
// Rejected tokens map to 401, missing resources to 404, an unreachable or
// failing backend to 502, and other 4xx responses keep their status.
func BackendErr(w http.ResponseWriter, err error, requestID string) {
	var apiErr *backend.APIError

	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		Err(w, http.StatusUnauthorized, "UNAUTHORIZED", backend.Message(err), requestID)
	case errors.Is(err, backend.ErrNotFound):
		Err(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", requestID)
	case errors.Is(err, backend.ErrUnavailable):
		slog.Warn("backend unavailable", "error", err, "requestId", requestID)
		Err(w, http.StatusBadGateway, "BAD_GATEWAY", backend.Message(err), requestID)
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		Err(w, apiErr.StatusCode, "BACKEND_REJECTED", backend.Message(err), requestID)
	default:
		slog.Error("backend request failed", "error", err, "requestId", requestID)
		Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", requestID)
	}
}
