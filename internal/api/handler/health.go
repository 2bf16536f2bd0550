package handler

import (
	"net/http"

	"github.com/kanakk365/ysntest-sub001/internal/api/middleware"
	"github.com/kanakk365/ysntest-sub001/internal/api/response"
)

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	pinger      BackendPinger
	version     string
	chatEnabled bool
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pinger BackendPinger, version string, chatEnabled bool) *HealthHandler {
	return &HealthHandler{
		pinger:      pinger,
		version:     version,
		chatEnabled: chatEnabled,
	}
}

type backendStatus struct {
	Reachable bool    `json:"reachable"`
	Error     *string `json:"error"`
}

type healthData struct {
	Status  string        `json:"status"`
	Version string        `json:"version"`
	Backend backendStatus `json:"backend"`
	Chat    bool          `json:"chatTokens"`
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	status := "healthy"
	be := backendStatus{Reachable: true}

	if h.pinger == nil {
		status = "degraded"
		be.Reachable = false
	} else if err := h.pinger.Ping(r.Context()); err != nil {
		status = "degraded"
		be.Reachable = false
		msg := err.Error()
		be.Error = &msg
	}

	response.Success(w, http.StatusOK, healthData{
		Status:  status,
		Version: h.version,
		Backend: be,
		Chat:    h.chatEnabled,
	}, requestID)
}
