package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/viant/ragvault/internal/chat"
	"github.com/viant/ragvault/internal/chunkstore"
	"github.com/viant/ragvault/internal/docregistry"
	"github.com/viant/ragvault/internal/generator"
	"github.com/viant/ragvault/internal/logging"
	"github.com/viant/ragvault/internal/model"
	"github.com/viant/ragvault/internal/orchestrator"
	"github.com/viant/ragvault/internal/retrieval"
	"github.com/viant/ragvault/internal/store"
	"github.com/viant/ragvault/internal/vectorindex"
)

func setupSupplementHandler(t *testing.T, numChunks int) (*SupplementHandler, string) {
	t.Helper()
	registry := docregistry.New(t.TempDir())
	doc, _ := registry.Create("doc1", "Doc", "doc1.txt", model.DocumentTypeTXT, nowUTC())
	registry.Transition(doc.ID, model.DocumentStatusProcessing, nowUTC(), "")
	registry.Transition(doc.ID, model.DocumentStatusReady, nowUTC(), "")

	chunks := chunkstore.New(filepath.Join(t.TempDir(), "chunks.json"))
	cs := make([]model.Chunk, numChunks)
	for i := range cs {
		cs[i] = model.Chunk{ID: doc.ID + ":" + string(rune('a'+i)), Ordinal: i, Text: "chunk text"}
	}
	chunks.PutAll(doc.ID, cs)
	index := vectorindex.New()
	for _, c := range chunks.ByDocument(doc.ID) {
		index.Add(c.ID, []float32{1, 0})
	}

	r := retrieval.New(constantEmbedder{}, index, chunks, registry, 0.1, 10, 60)
	var gen generator.Generator = fakeGenerator{response: "1. First question?\n2. Second question?"}
	ctrl := chat.New(5, 8000)
	convStore := store.NewConversationStore(t.TempDir())
	models := orchestrator.ModelSelector{Analysis: "m", Writing: "m", QA: "m"}
	orch := orchestrator.New(r, gen, models, ctrl, convStore, 35)

	return NewSupplementHandler(orch, registry, logging.NoOp()), doc.ID
}

func TestSuggestedQuestionsReturnsOK(t *testing.T) {
	h, docID := setupSupplementHandler(t, 30)
	req := httptest.NewRequest(http.MethodPost, "/api/documents/"+docID+"/suggested-questions", bytes.NewBufferString(`{"num_questions":2}`))
	req.SetPathValue("id", docID)
	w := httptest.NewRecorder()
	h.suggestedQuestions(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}
}

func TestSuggestedQuestionsMissingDocumentReturns404(t *testing.T) {
	h, _ := setupSupplementHandler(t, 30)
	req := httptest.NewRequest(http.MethodPost, "/api/documents/missing/suggested-questions", bytes.NewBufferString(`{}`))
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()
	h.suggestedQuestions(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestExportEndpointReturnsMarkdown(t *testing.T) {
	h, _ := setupSupplementHandler(t, 5)
	req := httptest.NewRequest(http.MethodPost, "/api/generate/gen1/export", bytes.NewBufferString(`{"sections":[{"content":"hello"}]}`))
	w := httptest.NewRecorder()
	h.export(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"format":"markdown"`) {
		t.Errorf("export should report markdown format, body=%s", w.Body.String())
	}
}

func TestExportEndpointInvalidBodyIsBadRequest(t *testing.T) {
	h, _ := setupSupplementHandler(t, 5)
	req := httptest.NewRequest(http.MethodPost, "/api/generate/gen1/export", bytes.NewBufferString(`not json`))
	w := httptest.NewRecorder()
	h.export(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
