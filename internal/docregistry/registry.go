// Package docregistry is the Document Registry component: it exclusively
// owns Document records and enforces the forward-only status lifecycle.
// Persistence follows the documents/ layout: one JSON file per document
// plus an index.json summary for O(1) listing.
package docregistry

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/viant/ragvault/internal/apperrors"
	"github.com/viant/ragvault/internal/model"
	"github.com/viant/ragvault/internal/store"
)

// Summary is the index.json projection of a Document.
type Summary struct {
	ID         string                `json:"id"`
	Title      string                `json:"title"`
	Status     model.DocumentStatus  `json:"status"`
	ChunkCount int                   `json:"chunk_count"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// Registry holds every Document in memory, guarded by an RWMutex.
type Registry struct {
	mu   sync.RWMutex
	dir  string
	docs map[string]model.Document
}

func New(dir string) *Registry {
	return &Registry{dir: dir, docs: make(map[string]model.Document)}
}

func (r *Registry) docPath(id string) string   { return filepath.Join(r.dir, id+".json") }
func (r *Registry) indexPath() string          { return filepath.Join(r.dir, "index.json") }

// Load reads the index and every document file it references.
func (r *Registry) Load() error {
	var summaries []Summary
	if err := store.ReadJSON(r.indexPath(), &summaries); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	docs := make(map[string]model.Document, len(summaries))
	for _, s := range summaries {
		var d model.Document
		if err := store.ReadJSON(r.docPath(s.ID), &d); err != nil {
			continue
		}
		docs[d.ID] = d
	}
	r.mu.Lock()
	r.docs = docs
	r.mu.Unlock()
	return nil
}

func (r *Registry) persist(d model.Document) error {
	if err := store.WriteJSONAtomic(r.docPath(d.ID), d); err != nil {
		return err
	}
	return r.saveIndex()
}

func (r *Registry) saveIndex() error {
	r.mu.RLock()
	summaries := make([]Summary, 0, len(r.docs))
	for _, d := range r.docs {
		summaries = append(summaries, Summary{ID: d.ID, Title: d.Title, Status: d.Status, ChunkCount: d.ChunkCount, UpdatedAt: d.UpdatedAt})
	}
	r.mu.RUnlock()
	return store.WithIndexLock(r.indexPath(), func() error {
		return store.WriteJSONAtomic(r.indexPath(), summaries)
	})
}

// Create registers a new Document in DocumentStatusPending.
func (r *Registry) Create(id, title, filename string, docType model.DocumentType, now time.Time) (model.Document, error) {
	doc := model.Document{
		ID:        id,
		Title:     title,
		Filename:  filename,
		Type:      docType,
		Status:    model.DocumentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.mu.Lock()
	r.docs[id] = doc
	r.mu.Unlock()
	return doc, r.persist(doc)
}

// Get returns the document for id.
func (r *Registry) Get(id string) (model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.docs[id]
	if !ok {
		return model.Document{}, apperrors.NotFound("document not found", map[string]any{"document_id": id})
	}
	return d, nil
}

// List returns every document.
func (r *Registry) List() []model.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Document, 0, len(r.docs))
	for _, d := range r.docs {
		out = append(out, d)
	}
	return out
}

// Transition moves id to next status, enforcing the forward-only lifecycle.
func (r *Registry) Transition(id string, next model.DocumentStatus, now time.Time, errMsg string) error {
	r.mu.Lock()
	d, ok := r.docs[id]
	if !ok {
		r.mu.Unlock()
		return apperrors.NotFound("document not found", map[string]any{"document_id": id})
	}
	if !d.Status.CanTransitionTo(next) {
		r.mu.Unlock()
		return apperrors.InputInvalid("invalid status transition", map[string]any{
			"document_id": id, "from": d.Status, "to": next,
		})
	}
	d.Status = next
	d.UpdatedAt = now
	d.ErrorMessage = errMsg
	r.docs[id] = d
	r.mu.Unlock()
	return r.persist(d)
}

// SetChunkCount records the final chunk count once ingestion completes.
func (r *Registry) SetChunkCount(id string, count int, now time.Time) error {
	r.mu.Lock()
	d, ok := r.docs[id]
	if !ok {
		r.mu.Unlock()
		return apperrors.NotFound("document not found", map[string]any{"document_id": id})
	}
	d.ChunkCount = count
	d.UpdatedAt = now
	r.docs[id] = d
	r.mu.Unlock()
	return r.persist(d)
}

// Delete removes id from the registry and its on-disk file.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	if _, ok := r.docs[id]; !ok {
		r.mu.Unlock()
		return apperrors.NotFound("document not found", map[string]any{"document_id": id})
	}
	delete(r.docs, id)
	r.mu.Unlock()
	_ = os.Remove(r.docPath(id))
	return r.saveIndex()
}

// EligibleReady filters ids to those that exist and are ready. When ids is
// empty, every ready document is eligible.
func (r *Registry) EligibleReady(ids []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(ids) == 0 {
		out := make([]string, 0, len(r.docs))
		for id, d := range r.docs {
			if d.Status == model.DocumentStatusReady {
				out = append(out, id)
			}
		}
		return out
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if d, ok := r.docs[id]; ok && d.Status == model.DocumentStatusReady {
			out = append(out, id)
		}
	}
	return out
}

// ReconcileStale marks every pending/processing document as failed with
// "stale_on_restart", per the startup reconciliation invariant.
func (r *Registry) ReconcileStale(now time.Time) (int, error) {
	r.mu.Lock()
	var changed []model.Document
	for id, d := range r.docs {
		if d.Status == model.DocumentStatusPending || d.Status == model.DocumentStatusProcessing {
			d.Status = model.DocumentStatusFailed
			d.ErrorMessage = "stale_on_restart"
			d.UpdatedAt = now
			r.docs[id] = d
			changed = append(changed, d)
		}
	}
	r.mu.Unlock()
	if len(changed) == 0 {
		return 0, nil
	}
	for _, d := range changed {
		if err := store.WriteJSONAtomic(r.docPath(d.ID), d); err != nil {
			return len(changed), err
		}
	}
	return len(changed), r.saveIndex()
}
