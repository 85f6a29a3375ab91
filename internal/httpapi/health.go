package httpapi

import (
	"net/http"
	"time"

	"github.com/viant/ragvault/internal/docregistry"
	"github.com/viant/ragvault/internal/vectorindex"
)

// HealthHandler serves GET /api/health.
type HealthHandler struct {
	index    *vectorindex.Index
	registry *docregistry.Registry
}

func NewHealthHandler(index *vectorindex.Index, registry *docregistry.Registry) *HealthHandler {
	return &HealthHandler{index: index, registry: registry}
}

func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.health)
}

type vectorStoreStatus struct {
	TotalChunks int `json:"total_chunks"`
}

func (h *HealthHandler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"vector_store": vectorStoreStatus{TotalChunks: h.index.Len()},
		"documents":    len(h.registry.List()),
	})
}

func nowUTC() time.Time { return time.Now().UTC() }
