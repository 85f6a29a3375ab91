// Package chunkstore is the Chunk Store component: an in-memory index from
// chunk id to its (document id, ordinal, text, page, section, region)
// tuple, persisted to vectors/chunks.json.
package chunkstore

import (
	"os"
	"sort"
	"sync"

	"github.com/viant/ragvault/internal/model"
	"github.com/viant/ragvault/internal/store"
)

// Store holds every Chunk in memory, guarded by an RWMutex; persistence is
// a full-snapshot write to a single JSON file, matching the layout's
// vectors/chunks.json.
type Store struct {
	mu     sync.RWMutex
	path   string
	chunks map[string]model.Chunk
	// byDocument indexes chunk ids by owning document, in ordinal order,
	// so region assignment and document-scoped deletion don't need a scan.
	byDocument map[string][]string
}

func New(path string) *Store {
	return &Store{
		path:       path,
		chunks:     make(map[string]model.Chunk),
		byDocument: make(map[string][]string),
	}
}

// Load replaces the store's contents with the snapshot at its path, or
// leaves it empty if no snapshot exists yet.
func (s *Store) Load() error {
	var chunks []model.Chunk
	if err := store.ReadJSON(s.path, &chunks); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = make(map[string]model.Chunk, len(chunks))
	s.byDocument = make(map[string][]string)
	for _, c := range chunks {
		s.chunks[c.ID] = c
		s.byDocument[c.DocumentID] = append(s.byDocument[c.DocumentID], c.ID)
	}
	for _, ids := range s.byDocument {
		sort.Slice(ids, func(i, j int) bool { return s.chunks[ids[i]].Ordinal < s.chunks[ids[j]].Ordinal })
	}
	return nil
}

// Save writes the full chunk set as one JSON array, atomically.
func (s *Store) Save() error {
	s.mu.RLock()
	all := make([]model.Chunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		all = append(all, c)
	}
	s.mu.RUnlock()
	return store.WriteJSONAtomic(s.path, all)
}

// PutAll replaces every chunk belonging to documentID with chunks, assigning
// region by ordinal tertile over the full set for that document.
func (s *Store) PutAll(documentID string, chunks []model.Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.byDocument[documentID] {
		delete(s.chunks, id)
	}
	ids := make([]string, 0, len(chunks))
	n := len(chunks)
	for _, c := range chunks {
		c.DocumentID = documentID
		c.Region = model.AssignRegion(c.Ordinal, n)
		s.chunks[c.ID] = c
		ids = append(ids, c.ID)
	}
	s.byDocument[documentID] = ids
}

// Get returns the chunk for id, or false if absent.
func (s *Store) Get(id string) (model.Chunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chunks[id]
	return c, ok
}

// GetMany returns every found chunk for the given ids, skipping misses.
func (s *Store) GetMany(ids []string) []model.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Chunk, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.chunks[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// ByDocument returns every chunk owned by documentID, in ordinal order.
func (s *Store) ByDocument(documentID string) []model.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byDocument[documentID]
	out := make([]model.Chunk, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.chunks[id])
	}
	return out
}

// CountByDocument reports how many chunks documentID owns.
func (s *Store) CountByDocument(documentID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byDocument[documentID])
}

// All returns every chunk in the store, for reconciliation sweeps.
func (s *Store) All() []model.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Chunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		out = append(out, c)
	}
	return out
}

// Delete removes a single chunk id, detaching it from its document's
// ordinal list. Used by reconciliation to prune orphans one at a time.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chunks[id]
	if !ok {
		return
	}
	delete(s.chunks, id)
	ids := s.byDocument[c.DocumentID]
	for i, existing := range ids {
		if existing == id {
			s.byDocument[c.DocumentID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
}

// DeleteDocument removes every chunk owned by documentID and returns their
// ids, so callers (the vector index) can drop the matching vectors too.
func (s *Store) DeleteDocument(documentID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.byDocument[documentID]
	for _, id := range ids {
		delete(s.chunks, id)
	}
	delete(s.byDocument, documentID)
	return ids
}
