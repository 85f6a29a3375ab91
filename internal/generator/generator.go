// Package generator defines the generation capability interface and the
// Ollama /api/chat HTTP adapter, with a bounded exponential-backoff retry
// around transport failures.
package generator

import "context"

// Generator calls an LLM with a system and user prompt under a specific
// model id. Implementations fail with an apperrors.GenerationFailed error
// after the bounded retry is exhausted.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt, modelID string) (string, error)
}
