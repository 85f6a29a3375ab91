// Package embedder defines the embedding capability interface and the
// Ollama HTTP adapter that implements it; no other backend is provided.
package embedder

import (
	"context"
	"math"
)

// Embedder computes unit-norm, deterministic embeddings for a batch of
// texts. Implementations fail with an apperrors.EmbeddingFailed error.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Normalize scales v to unit length in place, matching every implementation
// of the embed contract regardless of backend.
func Normalize(v []float32) {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return
	}
	norm := float32(1 / math.Sqrt(sumSq))
	for i := range v {
		v[i] *= norm
	}
}
