package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/viant/ragvault/internal/apperrors"
	"github.com/viant/ragvault/internal/docregistry"
	"github.com/viant/ragvault/internal/model"
	"github.com/viant/ragvault/internal/orchestrator"
)

// SupplementHandler serves the two supplemented endpoints not in the
// distilled HTTP contract: suggested questions and markdown export.
type SupplementHandler struct {
	orch     *orchestrator.Orchestrator
	registry *docregistry.Registry
	log      *zap.Logger
}

func NewSupplementHandler(orch *orchestrator.Orchestrator, registry *docregistry.Registry, log *zap.Logger) *SupplementHandler {
	return &SupplementHandler{orch: orch, registry: registry, log: log}
}

func (h *SupplementHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/documents/{id}/suggested-questions", h.suggestedQuestions)
	mux.HandleFunc("POST /api/generate/{generationId}/export", h.export)
}

type suggestedQuestionsRequest struct {
	NumQuestions int `json:"num_questions"`
}

func (h *SupplementHandler) suggestedQuestions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.registry.Get(id); err != nil {
		writeAppError(w, h.log, err)
		return
	}

	var req suggestedQuestionsRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	result, err := h.orch.SuggestedQuestions(r.Context(), []string{id}, req.NumQuestions)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type exportRequest struct {
	Sections []model.GeneratedSection `json:"sections"`
}

// export renders the sections the caller already has (a generation's
// result is not itself persisted server-side) as a single markdown
// document with inline source footnotes.
func (h *SupplementHandler) export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.KindInputInvalid), "invalid request body")
		return
	}
	format, content := orchestrator.Export(req.Sections)
	writeJSON(w, http.StatusOK, map[string]any{"format": format, "content": content})
}
