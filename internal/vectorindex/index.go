// Package vectorindex is the process-wide vector index: an in-memory,
// unit-norm cosine similarity index guarded by a single RWMutex, one of the
// three global handles the service maintains for its lifetime.
package vectorindex

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/viant/ragvault/internal/apperrors"
)

// Match is one result of a top-k search.
type Match struct {
	ChunkID string
	Score   float64
}

// Index holds one vector per chunk id. Reads (Search) may run concurrently
// with each other; writes (Add, Delete) are mutually exclusive with reads
// and other writes, matching the reader/writer split the concurrency model
// calls for.
type Index struct {
	mu      sync.RWMutex
	vectors map[string][]float32
	// fanOutShards bounds how many goroutines Search uses to score
	// candidates concurrently for large indexes.
	fanOutShards int
}

func New() *Index {
	return &Index{
		vectors:      make(map[string][]float32),
		fanOutShards: 4,
	}
}

// Add inserts or replaces the vector for chunkID. v must already be
// unit-normalized by the caller (the embedder capability's contract).
func (idx *Index) Add(chunkID string, v []float32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	cp := make([]float32, len(v))
	copy(cp, v)
	idx.vectors[chunkID] = cp
}

// Delete removes chunkID from the index. Deleting an absent id is a no-op.
func (idx *Index) Delete(chunkID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.vectors, chunkID)
}

// DeleteMany removes every id in chunkIDs under one write lock.
func (idx *Index) DeleteMany(chunkIDs []string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, id := range chunkIDs {
		delete(idx.vectors, id)
	}
}

// Score returns the cosine similarity between query and the vector stored
// for chunkID, or 0 if chunkID is absent. query must already be
// unit-normalized.
func (idx *Index) Score(chunkID string, query []float32) float64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	v, ok := idx.vectors[chunkID]
	if !ok {
		return 0
	}
	return cosine(query, v)
}

// PruneExcept removes every vector whose chunk id is not in keep, returning
// the count removed. Used by startup reconciliation to drop vectors left
// behind by a deletion that died between its index and chunk-store phases.
func (idx *Index) PruneExcept(keep map[string]bool) int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	var drop []string
	for id := range idx.vectors {
		if !keep[id] {
			drop = append(drop, id)
		}
	}
	for _, id := range drop {
		delete(idx.vectors, id)
	}
	return len(drop)
}

// Len reports the number of indexed vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// Search returns the top-k matches by cosine similarity against query,
// restricted to eligible (nil means no restriction), ordered by descending
// score. query must already be unit-normalized.
func (idx *Index) Search(ctx context.Context, query []float32, k int, eligible map[string]bool) ([]Match, error) {
	idx.mu.RLock()
	ids := make([]string, 0, len(idx.vectors))
	vecs := make([][]float32, 0, len(idx.vectors))
	for id, v := range idx.vectors {
		if eligible != nil && !eligible[id] {
			continue
		}
		ids = append(ids, id)
		vecs = append(vecs, v)
	}
	idx.mu.RUnlock()

	if len(ids) == 0 {
		return nil, nil
	}

	scores := make([]float64, len(ids))
	shards := idx.fanOutShards
	if shards > len(ids) {
		shards = len(ids)
	}
	if shards < 1 {
		shards = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	chunkSize := (len(ids) + shards - 1) / shards
	for s := 0; s < shards; s++ {
		start := s * chunkSize
		end := start + chunkSize
		if start >= len(ids) {
			break
		}
		if end > len(ids) {
			end = len(ids)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				scores[i] = cosine(query, vecs[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.RetrievalFailed("vector search interrupted", err)
	}

	matches := make([]Match, len(ids))
	for i, id := range ids {
		matches[i] = Match{ChunkID: id, Score: scores[i]}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if k > 0 && k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
