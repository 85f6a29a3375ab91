package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestGenerateReturnsMessageContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{Message: chatMessage{Role: "assistant", Content: "the answer"}})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(WithBaseURL(srv.URL))
	out, err := g.Generate(context.Background(), "system", "user", "llama3")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "the answer" {
		t.Errorf("Generate = %q, want %q", out, "the answer")
	}
}

func TestGenerateEmptyModelIDIsAnError(t *testing.T) {
	g := NewOllamaGenerator()
	if _, err := g.Generate(context.Background(), "s", "u", ""); err == nil {
		t.Error("expected an error for an empty model id")
	}
}

func TestGenerateClientErrorIsNotRetried(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	g := NewOllamaGenerator(WithBaseURL(srv.URL))
	if _, err := g.Generate(context.Background(), "s", "u", "llama3"); err == nil {
		t.Fatal("expected an error for a 400 response")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (client errors are permanent, not retried)", attempts)
	}
}

func TestGenerateServerErrorIsRetriedThenSucceeds(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(chatResponse{Message: chatMessage{Content: "recovered"}})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(WithBaseURL(srv.URL))
	out, err := g.Generate(context.Background(), "s", "u", "llama3")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "recovered" {
		t.Errorf("Generate = %q, want recovered after retry", out)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestGenerateAPIErrorFieldIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{Error: "model unavailable"})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(WithBaseURL(srv.URL))
	if _, err := g.Generate(context.Background(), "s", "u", "llama3"); err == nil {
		t.Error("expected an error when the response carries an error field")
	}
}

func TestGenerateRespectsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	g := NewOllamaGenerator(WithBaseURL(srv.URL))
	if _, err := g.Generate(ctx, "s", "u", "llama3"); err == nil {
		t.Error("expected an error when the context is cancelled")
	}
}
