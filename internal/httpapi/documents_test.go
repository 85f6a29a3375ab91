package httpapi

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/viant/ragvault/internal/chunkstore"
	"github.com/viant/ragvault/internal/docregistry"
	"github.com/viant/ragvault/internal/ingestion"
	"github.com/viant/ragvault/internal/logging"
	"github.com/viant/ragvault/internal/model"
	"github.com/viant/ragvault/internal/vectorindex"
)

type noopEmbedder struct{}

func (noopEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func setupDocumentHandler(t *testing.T) *DocumentHandler {
	t.Helper()
	registry := docregistry.New(t.TempDir())
	chunks := chunkstore.New(filepath.Join(t.TempDir(), "chunks.json"))
	index := vectorindex.New()
	chunker := ingestion.NewChunker(500, 100)
	parser := ingestion.NewTextParser(chunker)
	pipeline := ingestion.New(parser, noopEmbedder{}, index, filepath.Join(t.TempDir(), "index.bin"), chunks, registry, 2)
	return NewDocumentHandler(registry, pipeline, chunks, logging.NoOp())
}

func multipartUploadBody(t *testing.T, filename, title, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if title != "" {
		w.WriteField("title", title)
	}
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte(content))
	w.Close()
	return body, w.FormDataContentType()
}

func TestUploadAcceptsTextDocument(t *testing.T) {
	h := setupDocumentHandler(t)
	body, contentType := multipartUploadBody(t, "doc.txt", "My Doc", "hello world")

	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.upload(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202, body=%s", w.Code, w.Body.String())
	}
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	h := setupDocumentHandler(t)
	body, contentType := multipartUploadBody(t, "doc.exe", "", "binary")

	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.upload(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUploadMissingFileFieldIsBadRequest(t *testing.T) {
	h := setupDocumentHandler(t)
	body := &bytes.Buffer{}
	w2 := multipart.NewWriter(body)
	w2.WriteField("title", "t")
	w2.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", w2.FormDataContentType())
	w := httptest.NewRecorder()
	h.upload(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetMissingDocumentReturns404(t *testing.T) {
	h := setupDocumentHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/documents/missing", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()
	h.get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListReturnsAllDocuments(t *testing.T) {
	h := setupDocumentHandler(t)
	h.registry.Create("id1", "t", "f.txt", model.DocumentTypeTXT, nowUTC())

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	w := httptest.NewRecorder()
	h.list(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"total":1`) {
		t.Errorf("list should report the one created document, body=%s", w.Body.String())
	}
}

func TestDeleteMissingDocumentReturns404(t *testing.T) {
	h := setupDocumentHandler(t)
	req := httptest.NewRequest(http.MethodDelete, "/api/documents/missing", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()
	h.delete(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
