package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kanakk365/ysntest-sub001/internal/api/middleware"
	"github.com/kanakk365/ysntest-sub001/internal/api/response"
	"github.com/kanakk365/ysntest-sub001/internal/api/validation"
	"github.com/kanakk365/ysntest-sub001/internal/backend"
)

type eventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	StartsAt    string `json:"startsAt"`
	EndsAt      string `json:"endsAt"`
	TeamID      *int64 `json:"teamId"`
}

type eventResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	StartsAt    string  `json:"startsAt"`
	EndsAt      *string `json:"endsAt"`
	TeamID      *int64  `json:"teamId"`
}

func toEventResponse(e *backend.Event) eventResponse {
	resp := eventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartsAt:    e.StartsAt.UTC().Format(time.RFC3339),
		TeamID:      e.TeamID,
	}
	if e.EndsAt != nil {
		s := e.EndsAt.UTC().Format(time.RFC3339)
		resp.EndsAt = &s
	}
	return resp
}

// EventsHandler proxies the events CRUD for the coach area.
type EventsHandler struct {
	backend EventsBackend
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(b EventsBackend) *EventsHandler {
	return &EventsHandler{backend: b}
}

// List handles GET /api/events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	events, err := h.backend.ListEvents(r.Context(), token(r))
	if err != nil {
		response.BackendErr(w, err, requestID)
		return
	}

	items := make([]eventResponse, 0, len(events))
	for i := range events {
		items = append(items, toEventResponse(&events[i]))
	}
	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

// Get handles GET /api/events/{id}.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseEventID(w, r, requestID)
	if !ok {
		return
	}

	ev, err := h.backend.GetEvent(r.Context(), token(r), id)
	if err != nil {
		response.BackendErr(w, err, requestID)
		return
	}

	response.Success(w, http.StatusOK, toEventResponse(ev), requestID)
}

// Create handles POST /api/events.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	in, ok := decodeEvent(w, r, requestID)
	if !ok {
		return
	}

	ev, err := h.backend.CreateEvent(r.Context(), token(r), in)
	if err != nil {
		response.BackendErr(w, err, requestID)
		return
	}

	response.Success(w, http.StatusCreated, toEventResponse(ev), requestID)
}

// Update handles PUT /api/events/{id}.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseEventID(w, r, requestID)
	if !ok {
		return
	}
	in, ok := decodeEvent(w, r, requestID)
	if !ok {
		return
	}

	ev, err := h.backend.UpdateEvent(r.Context(), token(r), id, in)
	if err != nil {
		response.BackendErr(w, err, requestID)
		return
	}

	response.Success(w, http.StatusOK, toEventResponse(ev), requestID)
}

// Delete handles DELETE /api/events/{id}.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseEventID(w, r, requestID)
	if !ok {
		return
	}

	if err := h.backend.DeleteEvent(r.Context(), token(r), id); err != nil {
		response.BackendErr(w, err, requestID)
		return
	}

	response.NoContent(w)
}

func token(r *http.Request) string {
	if id := middleware.GetIdentity(r.Context()); id != nil {
		return id.Token
	}
	return ""
}

func parseEventID(w http.ResponseWriter, r *http.Request, requestID string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "Event id must be a positive integer", requestID)
		return 0, false
	}
	return id, true
}

func decodeEvent(w http.ResponseWriter, r *http.Request, requestID string) (backend.EventInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return backend.EventInput{}, false
	}

	fieldErrors := validation.ValidateEventRequest(validation.EventRequest{
		Title:    req.Title,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Location: req.Location,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return backend.EventInput{}, false
	}

	start, _ := time.Parse(time.RFC3339, req.StartsAt)
	in := backend.EventInput{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    start,
		TeamID:      req.TeamID,
	}
	if req.EndsAt != "" {
		end, _ := time.Parse(time.RFC3339, req.EndsAt)
		in.EndsAt = &end
	}
	return in, true
}
