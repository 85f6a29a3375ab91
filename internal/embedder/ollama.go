package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/viant/ragvault/internal/apperrors"
)

const (
	defaultBaseURL = "http://localhost:11434"
	embedEndpoint  = "/api/embed"
)

// OllamaEmbedder calls an Ollama-compatible /api/embed endpoint. A single
// process-wide instance is shared as one of the three global handles
// (vector index, embedder client, generator client).
type OllamaEmbedder struct {
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures an OllamaEmbedder at construction.
type Option func(*OllamaEmbedder)

func WithBaseURL(baseURL string) Option {
	return func(e *OllamaEmbedder) {
		if baseURL != "" {
			e.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPTimeout(d time.Duration) Option {
	return func(e *OllamaEmbedder) { e.httpClient.Timeout = d }
}

// WithRateLimit caps outbound embed requests per second, guarding a local
// Ollama daemon from being overrun by the ingestion worker pool.
func WithRateLimit(rps float64) Option {
	return func(e *OllamaEmbedder) {
		if rps > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func NewOllamaEmbedder(model string, opts ...Option) *OllamaEmbedder {
	e := &OllamaEmbedder{
		baseURL:    defaultBaseURL,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error"`
}

// Embed implements Embedder. Every returned vector is unit-normalized.
func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e.model == "" {
		return nil, apperrors.EmbeddingFailed("embedding model is required", nil)
	}
	if len(texts) == 0 {
		return nil, apperrors.EmbeddingFailed("no input texts provided", nil)
	}
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, apperrors.EmbeddingFailed("rate limiter wait", err)
		}
	}

	body, err := json.Marshal(embedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, apperrors.EmbeddingFailed("marshal request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+embedEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.EmbeddingFailed("create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.EmbeddingFailed("send request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, apperrors.EmbeddingFailed(fmt.Sprintf("embedding API error: %s", strings.TrimSpace(string(respBody))), nil)
	}
	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperrors.EmbeddingFailed("decode response", err)
	}
	if out.Error != "" {
		return nil, apperrors.EmbeddingFailed(out.Error, nil)
	}
	for _, v := range out.Embeddings {
		Normalize(v)
	}
	return out.Embeddings, nil
}
