package handler

import (
	"log/slog"
	"net/http"
	"sync"

	"sigs.k8s.io/yaml"

	"github.com/kanakk365/ysntest-sub001/internal/api/middleware"
	"github.com/kanakk365/ysntest-sub001/internal/api/response"
)

// OpenAPIHandler serves the embedded api/openapi.yaml as JSON at
// /openapi.json. The document changes only with a new build, so it is
// converted once and served with a long cache lifetime.
type OpenAPIHandler struct {
	source []byte

	once sync.Once
	doc  []byte
	err  error
}

// NewOpenAPIHandler wraps the YAML document. Conversion is deferred to the
// first request so a broken document cannot stop the server from starting.
func NewOpenAPIHandler(source []byte) *OpenAPIHandler {
	return &OpenAPIHandler{source: source}
}

func (h *OpenAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		h.doc, h.err = yaml.YAMLToJSON(h.source)
	})

	if h.err != nil {
		requestID := middleware.GetRequestID(r.Context())
		slog.Error("openapi document is not valid YAML", "error", h.err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "API description unavailable", requestID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.doc); err != nil {
		slog.Debug("writing openapi document", "error", err)
	}
}
