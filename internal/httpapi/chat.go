package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/viant/ragvault/internal/apperrors"
	"github.com/viant/ragvault/internal/chat"
	"github.com/viant/ragvault/internal/orchestrator"
	"github.com/viant/ragvault/internal/store"
)

// ChatHandler serves POST/GET/DELETE/PATCH /api/chat and /api/chat/{id}.
type ChatHandler struct {
	orch      *orchestrator.Orchestrator
	ctrl      *chat.Controller
	convStore *store.ConversationStore
	log       *zap.Logger
}

func NewChatHandler(orch *orchestrator.Orchestrator, ctrl *chat.Controller, convStore *store.ConversationStore, log *zap.Logger) *ChatHandler {
	return &ChatHandler{orch: orch, ctrl: ctrl, convStore: convStore, log: log}
}

func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.send)
	mux.HandleFunc("GET /api/chat", h.list)
	mux.HandleFunc("GET /api/chat/{id}", h.get)
	mux.HandleFunc("DELETE /api/chat/{id}", h.delete)
	mux.HandleFunc("PATCH /api/chat/{id}", h.rename)
}

type chatRequest struct {
	ConversationID string   `json:"conversation_id"`
	Message        string   `json:"message"`
	DocumentIDs    []string `json:"document_ids"`
}

func (h *ChatHandler) send(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.KindInputInvalid), "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, string(apperrors.KindInputInvalid), "message is required")
		return
	}

	result, err := h.orch.Chat(r.Context(), req.ConversationID, req.Message, req.DocumentIDs)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ChatHandler) list(w http.ResponseWriter, _ *http.Request) {
	summaries, err := h.convStore.ListSummaries()
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *ChatHandler) get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	conv, ok := h.ctrl.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, string(apperrors.KindNotFound), "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *ChatHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.ctrl.Delete(id)
	if err := h.convStore.Delete(id); err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "id": id})
}

type renameRequest struct {
	Title string `json:"title"`
}

func (h *ChatHandler) rename(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.KindInputInvalid), "invalid request body")
		return
	}
	if !h.ctrl.Rename(id, req.Title, nowUTC()) {
		writeError(w, http.StatusNotFound, string(apperrors.KindNotFound), "conversation not found")
		return
	}
	conv, _ := h.ctrl.Get(id)
	if err := h.convStore.Save(conv); err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}
