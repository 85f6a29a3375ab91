package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/viant/ragvault/internal/apperrors"
	"github.com/viant/ragvault/internal/model"
	"github.com/viant/ragvault/internal/orchestrator"
)

// GenerateHandler serves POST /api/generate and POST /api/generate/section.
type GenerateHandler struct {
	orch *orchestrator.Orchestrator
	log  *zap.Logger
}

func NewGenerateHandler(orch *orchestrator.Orchestrator, log *zap.Logger) *GenerateHandler {
	return &GenerateHandler{orch: orch, log: log}
}

func (h *GenerateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/generate", h.generate)
	mux.HandleFunc("POST /api/generate/section", h.regenerateSection)
}

type generateRequest struct {
	Prompt          string             `json:"prompt"`
	DocumentIDs     []string           `json:"document_ids"`
	EscalateCoverage bool              `json:"escalate_coverage"`
	IntentOverride  model.QueryIntent  `json:"intent_override"`
}

func (h *GenerateHandler) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.KindInputInvalid), "invalid request body")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, string(apperrors.KindInputInvalid), "prompt is required")
		return
	}

	result, err := h.orch.Generate(r.Context(), req.Prompt, req.DocumentIDs, req.EscalateCoverage, req.IntentOverride)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type regenerateSectionRequest struct {
	SectionID        string   `json:"section_id"`
	OriginalContent  string   `json:"original_content"`
	RefinementPrompt string   `json:"refinement_prompt"`
	DocumentIDs      []string `json:"document_ids"`
}

func (h *GenerateHandler) regenerateSection(w http.ResponseWriter, r *http.Request) {
	var req regenerateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.KindInputInvalid), "invalid request body")
		return
	}
	if req.OriginalContent == "" {
		writeError(w, http.StatusBadRequest, string(apperrors.KindInputInvalid), "original_content is required")
		return
	}

	result, err := h.orch.Regenerate(r.Context(), req.OriginalContent, req.RefinementPrompt, req.DocumentIDs)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
