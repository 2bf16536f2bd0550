package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kanakk365/ysntest-sub001/internal/api/middleware"
	"github.com/kanakk365/ysntest-sub001/internal/api/response"
	"github.com/kanakk365/ysntest-sub001/internal/api/validation"
)

// DirectoryHandler serves the public organization and team profiles.
type DirectoryHandler struct {
	backend DirectoryBackend
}

// NewDirectoryHandler creates a new DirectoryHandler.
func NewDirectoryHandler(b DirectoryBackend) *DirectoryHandler {
	return &DirectoryHandler{backend: b}
}

// GetOrganization handles GET /api/organizations/{slug}.
func (h *DirectoryHandler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	slug := chi.URLParam(r, "slug")
	if fieldErrors := validation.ValidateSlug(slug); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	org, err := h.backend.Organization(r.Context(), slug)
	if err != nil {
		response.BackendErr(w, err, requestID)
		return
	}

	response.Success(w, http.StatusOK, org, requestID)
}

// GetTeam handles GET /api/teams/{slug}.
func (h *DirectoryHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	slug := chi.URLParam(r, "slug")
	if fieldErrors := validation.ValidateSlug(slug); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	team, err := h.backend.Team(r.Context(), slug)
	if err != nil {
		response.BackendErr(w, err, requestID)
		return
	}

	response.Success(w, http.StatusOK, team, requestID)
}
