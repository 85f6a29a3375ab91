package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/viant/ragvault/internal/apperrors"
)

const (
	defaultBaseURL = "http://localhost:11434"
	chatEndpoint   = "/api/chat"
	maxAttempts    = 2
)

// OllamaGenerator calls an Ollama-compatible /api/chat endpoint with a
// bounded exponential-backoff retry, one of the three process-wide
// global handles alongside the vector index and embedder client.
type OllamaGenerator struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*OllamaGenerator)

func WithBaseURL(baseURL string) Option {
	return func(g *OllamaGenerator) {
		if baseURL != "" {
			g.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPTimeout(d time.Duration) Option {
	return func(g *OllamaGenerator) { g.httpClient.Timeout = d }
}

func NewOllamaGenerator(opts ...Option) *OllamaGenerator {
	g := &OllamaGenerator{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error"`
}

// Generate implements Generator with a bounded retry (<=2 attempts,
// exponential backoff) around transport failures only — a successful HTTP
// response with an API-level error is not retried.
func (g *OllamaGenerator) Generate(ctx context.Context, systemPrompt, userPrompt, modelID string) (string, error) {
	if modelID == "" {
		return "", apperrors.GenerationFailed("model id is required", nil)
	}

	var result string
	operation := func() error {
		out, err := g.call(ctx, systemPrompt, userPrompt, modelID)
		if err != nil {
			return err
		}
		result = out
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxAttempts-1)
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return "", apperrors.GenerationFailed("generation failed after retries", err)
	}
	return result, nil
}

func (g *OllamaGenerator) call(ctx context.Context, systemPrompt, userPrompt, modelID string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: modelID,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: false,
	})
	if err != nil {
		return "", backoff.Permanent(apperrors.GenerationFailed("marshal request", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+chatEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(apperrors.GenerationFailed("create request", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", apperrors.GenerationFailed("send request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", apperrors.GenerationFailed(fmt.Sprintf("generation API error: %s", strings.TrimSpace(string(respBody))), nil)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", backoff.Permanent(apperrors.GenerationFailed(fmt.Sprintf("generation API error: %s", strings.TrimSpace(string(respBody))), nil))
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", backoff.Permanent(apperrors.GenerationFailed("decode response", err))
	}
	if out.Error != "" {
		return "", backoff.Permanent(apperrors.GenerationFailed(out.Error, nil))
	}
	return out.Message.Content, nil
}
