package middleware

import (
	"net/http"

	"github.com/kanakk365/ysntest-sub001/internal/api/response"
	"github.com/kanakk365/ysntest-sub001/internal/role"
	"github.com/kanakk365/ysntest-sub001/internal/session"
)

type denial struct {
	Area     string `json:"area"`
	Redirect string `json:"redirect"`
}

// RequireArea returns middleware that admits only identities the router
// allows into area. Denials return 403 with the redirect target in details.
func RequireArea(router *role.Router, area role.Area) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			identity := GetIdentity(r.Context())
			if identity == nil || identity.User == nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token is required", requestID)
				return
			}

			s := session.Session{
				User: &session.User{
					ID:    identity.User.ID,
					Name:  identity.User.Name,
					Email: identity.User.Email,
					Role:  session.RoleCode(identity.User.UserType),
				},
				Token:         identity.Token,
				Authenticated: true,
				Hydrated:      true,
			}

			out := router.Evaluate(s, area)
			if out.Decision != role.Allow {
				response.ErrWithDetails(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions",
					denial{Area: area.Name, Redirect: out.Redirect}, requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
