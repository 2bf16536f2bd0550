package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kanakk365/ysntest-sub001/internal/api/middleware"
	"github.com/kanakk365/ysntest-sub001/internal/api/response"
	"github.com/kanakk365/ysntest-sub001/internal/api/validation"
	"github.com/kanakk365/ysntest-sub001/internal/identity"
)

// TokenMinter signs chat custom tokens.
type TokenMinter interface {
	Mint(uid string, claims map[string]any) (string, error)
}

type tokenResponse struct {
	CustomToken string `json:"customToken"`
}

// TokenHandler handles the chat token-exchange route.
type TokenHandler struct {
	verifier middleware.TokenVerifier
	minter   TokenMinter
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(verifier middleware.TokenVerifier, minter TokenMinter) *TokenHandler {
	return &TokenHandler{verifier: verifier, minter: minter}
}

// Exchange handles POST /api/chat/token. The local token (from the body, or
// the bearer header when the body has none) is verified against the backend
// and must belong to userId. The custom token is minted for the derived
// chat id and returned as a bare {customToken} object; errors keep the
// envelope.
func (h *TokenHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req identity.ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if req.Token == "" {
		req.Token = middleware.BearerToken(r)
	}

	var fieldErrors []validation.FieldError
	if req.UserID <= 0 {
		fieldErrors = append(fieldErrors, validation.FieldError{Field: "userId", Message: "userId is required"})
	}
	if req.Token == "" {
		fieldErrors = append(fieldErrors, validation.FieldError{Field: "token", Message: "token is required"})
	}
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	user, err := h.verifier.CurrentUser(r.Context(), req.Token)
	if err != nil {
		response.BackendErr(w, err, requestID)
		return
	}
	if user.ID != req.UserID {
		slog.Warn("token exchange for another user", "tokenUser", user.ID, "requested", req.UserID, "requestId", requestID)
		response.Err(w, http.StatusForbidden, "IDENTITY_MISMATCH", "Token does not belong to the requested user", requestID)
		return
	}

	uid, err := identity.DeriveForeignID(user.ID)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), requestID)
		return
	}

	customToken, err := h.minter.Mint(uid, map[string]any{
		"name":      user.Name,
		"email":     user.Email,
		"user_type": user.UserType,
	})
	if err != nil {
		slog.Error("minting chat token", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create chat token", requestID)
		return
	}

	slog.Info("chat token issued", "uid", uid, "requestId", requestID)
	response.Raw(w, http.StatusOK, tokenResponse{CustomToken: customToken})
}
