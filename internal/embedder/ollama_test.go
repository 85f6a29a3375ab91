package embedder

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbedReturnsNormalizedVectors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		json.NewDecoder(r.Body).Decode(&req)
		embeddings := make([][]float32, len(req.Input))
		for i := range embeddings {
			embeddings[i] = []float32{3, 4}
		}
		json.NewEncoder(w).Encode(embedResponse{Embeddings: embeddings})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", WithBaseURL(srv.URL))
	out, err := e.Embed(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	var sumSq float64
	for _, x := range out[0] {
		sumSq += float64(x) * float64(x)
	}
	if math.Abs(math.Sqrt(sumSq)-1) > 1e-6 {
		t.Errorf("returned vector is not unit-normalized: %v", out[0])
	}
}

func TestEmbedEmptyModelIsAnError(t *testing.T) {
	e := NewOllamaEmbedder("")
	if _, err := e.Embed(context.Background(), []string{"hi"}); err == nil {
		t.Error("expected an error for an empty model")
	}
}

func TestEmbedNoTextsIsAnError(t *testing.T) {
	e := NewOllamaEmbedder("m")
	if _, err := e.Embed(context.Background(), nil); err == nil {
		t.Error("expected an error for no input texts")
	}
}

func TestEmbedNonOKStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("m", WithBaseURL(srv.URL))
	if _, err := e.Embed(context.Background(), []string{"hi"}); err == nil {
		t.Error("expected an error for a non-200 response")
	}
}

func TestEmbedAPIErrorFieldIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Error: "model not found"})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("m", WithBaseURL(srv.URL))
	if _, err := e.Embed(context.Background(), []string{"hi"}); err == nil {
		t.Error("expected an error when the response carries an error field")
	}
}
