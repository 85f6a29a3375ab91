package httpapi

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/viant/ragvault/internal/apperrors"
	"github.com/viant/ragvault/internal/chunkstore"
	"github.com/viant/ragvault/internal/docregistry"
	"github.com/viant/ragvault/internal/ingestion"
	"github.com/viant/ragvault/internal/model"
)

const maxUploadBytes = 25 << 20 // 25 MiB

// DocumentHandler serves POST/GET/DELETE /api/documents and the
// chunks sub-resource.
type DocumentHandler struct {
	registry *docregistry.Registry
	pipeline *ingestion.Pipeline
	chunks   *chunkstore.Store
	log      *zap.Logger
}

func NewDocumentHandler(registry *docregistry.Registry, pipeline *ingestion.Pipeline, chunks *chunkstore.Store, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{registry: registry, pipeline: pipeline, chunks: chunks, log: log}
}

func (h *DocumentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/documents", h.upload)
	mux.HandleFunc("GET /api/documents", h.list)
	mux.HandleFunc("GET /api/documents/{id}", h.get)
	mux.HandleFunc("DELETE /api/documents/{id}", h.delete)
	mux.HandleFunc("GET /api/documents/{id}/chunks", h.listChunks)
}

func (h *DocumentHandler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.KindInputInvalid), "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.KindInputInvalid), "missing file field")
		return
	}
	defer file.Close()

	docType, err := docTypeFromFilename(header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.KindInputInvalid), err.Error())
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.KindInputInvalid), "failed to read upload")
		return
	}

	now := time.Now().UTC()
	id := ingestion.NewDocumentID()
	doc, err := h.registry.Create(id, title, header.Filename, docType, now)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}

	h.pipeline.Enqueue(context.WithoutCancel(r.Context()), id, header.Filename, docType, data)

	writeJSON(w, http.StatusAccepted, doc)
}

func docTypeFromFilename(filename string) (model.DocumentType, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return model.DocumentTypePDF, nil
	case ".docx":
		return model.DocumentTypeDOCX, nil
	case ".txt":
		return model.DocumentTypeTXT, nil
	default:
		return "", unsupportedType(filename)
	}
}

func unsupportedType(filename string) error {
	return &unsupportedTypeError{filename: filename}
}

type unsupportedTypeError struct{ filename string }

func (e *unsupportedTypeError) Error() string {
	return "unsupported document type for " + e.filename + " (supported: .pdf, .docx, .txt)"
}

func (h *DocumentHandler) list(w http.ResponseWriter, _ *http.Request) {
	docs := h.registry.List()
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs, "total": len(docs)})
}

func (h *DocumentHandler) get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, err := h.registry.Get(id)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.registry.Get(id); err != nil {
		writeAppError(w, h.log, err)
		return
	}
	if err := h.pipeline.DeleteDocument(id); err != nil {
		writeAppError(w, h.log, err)
		return
	}
	if err := h.registry.Delete(id); err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "id": id})
}

func (h *DocumentHandler) listChunks(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.registry.Get(id); err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chunks": h.chunks.ByDocument(id)})
}
