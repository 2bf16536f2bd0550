package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kanakk365/ysntest-sub001/internal/api/middleware"
	"github.com/kanakk365/ysntest-sub001/internal/api/response"
	"github.com/kanakk365/ysntest-sub001/internal/api/validation"
	"github.com/kanakk365/ysntest-sub001/internal/backend"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	UserType int    `json:"user_type"`
}

type loginResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(u *backend.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, UserType: u.UserType}
}

// AuthHandler proxies login, current-user and logout to the backend.
type AuthHandler struct {
	backend AuthBackend
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(b AuthBackend) *AuthHandler {
	return &AuthHandler{backend: b}
}

// Login handles POST /api/auth/login. Credentials are validated before the
// backend is called.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if fieldErrors := validation.ValidateCredentials(req.Email, req.Password); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	res, err := h.backend.Login(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		response.BackendErr(w, err, requestID)
		return
	}

	slog.Info("login proxied", "userId", res.User.ID, "requestId", requestID)
	response.Success(w, http.StatusOK, loginResponse{User: toUserResponse(&res.User), Token: res.Token}, requestID)
}

// User handles GET /api/auth/user for the identity resolved by middleware.Auth.
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil || identity.User == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token is required", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(identity.User), requestID)
}

// Logout handles POST /api/auth/logout. It always succeeds once the token
// was verified; a failed backend sign-out is only logged.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token is required", requestID)
		return
	}

	if err := h.backend.Logout(r.Context(), identity.Token); err != nil {
		slog.Warn("backend logout failed", "error", err, "requestId", requestID)
	}

	response.NoContent(w)
}
