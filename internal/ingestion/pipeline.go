// Package ingestion implements the chunk+embed pipeline: parse, split into
// chunks, embed, and index, offloaded from the single-threaded request
// handlers to a bounded worker pool. Parsing goes through the Parser
// interface; TextParser handles plain text, and pdf/docx uploads fail
// ingestion as unsupported.
package ingestion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/viant/ragvault/internal/apperrors"
	"github.com/viant/ragvault/internal/chunkstore"
	"github.com/viant/ragvault/internal/docregistry"
	"github.com/viant/ragvault/internal/embedder"
	"github.com/viant/ragvault/internal/model"
	"github.com/viant/ragvault/internal/vectorindex"
)

// Parser turns raw document bytes into chunk-sized text fragments. It is
// an external capability: this package never implements pdf/docx parsing
// itself.
type Parser interface {
	Parse(ctx context.Context, filename string, docType model.DocumentType, data []byte) ([]string, error)
}

// Pipeline coordinates document ingestion: a bounded worker pool for
// CPU-bound chunk+embed work, serialized per document id, parallel across
// documents.
type Pipeline struct {
	parser    Parser
	embedder  embedder.Embedder
	index     *vectorindex.Index
	indexPath string
	chunks    *chunkstore.Store
	registry  *docregistry.Registry

	sem *semaphore.Weighted

	mu          sync.Mutex
	perDocument map[string]*sync.Mutex
}

// New builds a Pipeline whose worker pool accepts at most queueDepth
// documents ingesting concurrently; additional uploads still accept
// immediately and remain pending until a slot frees. indexPath is where
// the vector index binary snapshot is persisted after each ingestion.
func New(parser Parser, emb embedder.Embedder, index *vectorindex.Index, indexPath string, chunks *chunkstore.Store, registry *docregistry.Registry, queueDepth int) *Pipeline {
	if queueDepth < 1 {
		queueDepth = 1
	}
	return &Pipeline{
		parser:      parser,
		embedder:    emb,
		index:       index,
		indexPath:   indexPath,
		chunks:      chunks,
		registry:    registry,
		sem:         semaphore.NewWeighted(int64(queueDepth)),
		perDocument: make(map[string]*sync.Mutex),
	}
}

func (p *Pipeline) lockFor(documentID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.perDocument[documentID]
	if !ok {
		l = &sync.Mutex{}
		p.perDocument[documentID] = l
	}
	return l
}

// Enqueue starts ingestion for documentID in a background goroutine; the
// caller has already recorded the document as pending. The worker pool
// bounds concurrency via the semaphore acquired before any CPU-bound work
// starts.
func (p *Pipeline) Enqueue(ctx context.Context, documentID, filename string, docType model.DocumentType, data []byte) {
	go func() {
		lock := p.lockFor(documentID)
		lock.Lock()
		defer lock.Unlock()

		if err := p.sem.Acquire(ctx, 1); err != nil {
			_ = p.registry.Transition(documentID, model.DocumentStatusFailed, time.Now().UTC(), "ingestion_cancelled")
			return
		}
		defer p.sem.Release(1)

		if err := p.ingest(ctx, documentID, filename, docType, data); err != nil {
			_ = p.registry.Transition(documentID, model.DocumentStatusFailed, time.Now().UTC(), err.Error())
		}
	}()
}

func (p *Pipeline) ingest(ctx context.Context, documentID, filename string, docType model.DocumentType, data []byte) error {
	now := time.Now().UTC()
	if err := p.registry.Transition(documentID, model.DocumentStatusProcessing, now, ""); err != nil {
		return err
	}

	texts, err := p.parser.Parse(ctx, filename, docType, data)
	if err != nil {
		return apperrors.InputInvalid("document parsing failed", map[string]any{"cause": err.Error()})
	}
	if len(texts) == 0 {
		return apperrors.InputInvalid("document produced no chunks", nil)
	}

	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(texts) {
		return apperrors.EmbeddingFailed(fmt.Sprintf("embedder returned %d vectors for %d chunks", len(vectors), len(texts)), nil)
	}

	chunks := make([]model.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = model.Chunk{
			ID:         chunkID(documentID, i),
			DocumentID: documentID,
			Ordinal:    i,
			Text:       text,
		}
	}
	p.chunks.PutAll(documentID, chunks)
	for i, c := range chunks {
		p.index.Add(c.ID, vectors[i])
	}
	if err := p.chunks.Save(); err != nil {
		return apperrors.PersistenceFailed("failed to persist chunks", err)
	}
	if err := p.index.SaveTo(p.indexPath); err != nil {
		return apperrors.PersistenceFailed("failed to persist vector index", err)
	}

	if err := p.registry.SetChunkCount(documentID, len(chunks), time.Now().UTC()); err != nil {
		return err
	}
	return p.registry.Transition(documentID, model.DocumentStatusReady, time.Now().UTC(), "")
}

// chunkID is derived deterministically from the document id and ordinal,
// so re-ingesting the same document reproduces the same chunk ids.
func chunkID(documentID string, ordinal int) string {
	return fmt.Sprintf("%s:%d", documentID, ordinal)
}

// DeleteDocument removes a document's chunks and vectors. Deletion is
// two-phase: the index entries go first, then the chunk records; if the
// process dies between phases, startup reconciliation prunes orphans.
func (p *Pipeline) DeleteDocument(documentID string) error {
	ids := p.chunks.DeleteDocument(documentID)
	p.index.DeleteMany(ids)
	if err := p.index.SaveTo(p.indexPath); err != nil {
		return apperrors.PersistenceFailed("failed to persist vector index", err)
	}
	if err := p.chunks.Save(); err != nil {
		return apperrors.PersistenceFailed("failed to persist chunks", err)
	}
	return nil
}

// NewDocumentID allocates a fresh document id.
func NewDocumentID() string { return uuid.NewString() }
