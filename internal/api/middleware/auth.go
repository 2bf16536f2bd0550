package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kanakk365/ysntest-sub001/internal/api/response"
	"github.com/kanakk365/ysntest-sub001/internal/backend"
)

const identityKey contextKey = "identity"

// TokenVerifier resolves a bearer token to the backend user it belongs to.
type TokenVerifier interface {
	CurrentUser(ctx context.Context, token string) (*backend.User, error)
}

// Identity is the caller behind a verified bearer token.
type Identity struct {
	User  *backend.User
	Token string
}

// BearerToken returns the token from an "Authorization: Bearer" header, or "".
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// Auth is middleware that verifies the bearer token against the backend's
// GET /user and stores the resulting Identity. Missing or rejected tokens
// return 401; an unreachable backend returns 502.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			token := BearerToken(r)
			if token == "" {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token is required", requestID)
				return
			}

			user, err := verifier.CurrentUser(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, backend.ErrUnauthorized):
					response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", requestID)
				case errors.Is(err, backend.ErrUnavailable):
					slog.Warn("token verification failed", "error", err, "requestId", requestID)
					response.Err(w, http.StatusBadGateway, "BAD_GATEWAY", "Authentication service unavailable", requestID)
				default:
					slog.Error("token verification failed", "error", err, "requestId", requestID)
					response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed", requestID)
				}
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, &Identity{User: user, Token: token})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity retrieves the authenticated Identity from the request context.
func GetIdentity(ctx context.Context) *Identity {
	if id, ok := ctx.Value(identityKey).(*Identity); ok {
		return id
	}
	return nil
}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}
