package reconcile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/viant/ragvault/internal/chunkstore"
	"github.com/viant/ragvault/internal/docregistry"
	"github.com/viant/ragvault/internal/model"
	"github.com/viant/ragvault/internal/vectorindex"
)

func TestRunMarksStaleInFlightDocumentsFailed(t *testing.T) {
	registry := docregistry.New(t.TempDir())
	now := time.Now()
	registry.Create("doc1", "t", "f.txt", model.DocumentTypeTXT, now)
	registry.Transition("doc1", model.DocumentStatusProcessing, now, "")

	chunks := chunkstore.New(filepath.Join(t.TempDir(), "chunks.json"))
	index := vectorindex.New()
	indexPath := filepath.Join(t.TempDir(), "index.bin")

	report, err := Run(registry, chunks, index, indexPath, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.StaleDocuments != 1 {
		t.Errorf("StaleDocuments = %d, want 1", report.StaleDocuments)
	}
}

func TestRunPrunesOrphanedChunksAndVectors(t *testing.T) {
	registry := docregistry.New(t.TempDir())
	now := time.Now()
	registry.Create("live-doc", "t", "f.txt", model.DocumentTypeTXT, now)

	chunks := chunkstore.New(filepath.Join(t.TempDir(), "chunks.json"))
	chunks.PutAll("live-doc", []model.Chunk{{ID: "live-doc:0", Ordinal: 0}})
	chunks.PutAll("orphan-doc", []model.Chunk{{ID: "orphan-doc:0", Ordinal: 0}})

	index := vectorindex.New()
	index.Add("live-doc:0", []float32{1, 0})
	index.Add("orphan-doc:0", []float32{0, 1})
	index.Add("dangling-vector", []float32{1, 1})
	indexPath := filepath.Join(t.TempDir(), "index.bin")

	report, err := Run(registry, chunks, index, indexPath, now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.OrphanedChunks != 1 {
		t.Errorf("OrphanedChunks = %d, want 1", report.OrphanedChunks)
	}
	if report.OrphanedVectors != 2 {
		t.Errorf("OrphanedVectors = %d, want 2 (orphan-doc:0 and dangling-vector)", report.OrphanedVectors)
	}
	if _, ok := chunks.Get("orphan-doc:0"); ok {
		t.Error("orphaned chunk should have been pruned")
	}
	if _, ok := chunks.Get("live-doc:0"); !ok {
		t.Error("live chunk should survive reconciliation")
	}
}

func TestRunWithNothingToReconcileReturnsZeroReport(t *testing.T) {
	registry := docregistry.New(t.TempDir())
	now := time.Now()
	registry.Create("doc1", "t", "f.txt", model.DocumentTypeTXT, now)
	registry.Transition("doc1", model.DocumentStatusProcessing, now, "")
	registry.Transition("doc1", model.DocumentStatusReady, now, "")

	chunks := chunkstore.New(filepath.Join(t.TempDir(), "chunks.json"))
	chunks.PutAll("doc1", []model.Chunk{{ID: "doc1:0", Ordinal: 0}})
	index := vectorindex.New()
	index.Add("doc1:0", []float32{1, 0})
	indexPath := filepath.Join(t.TempDir(), "index.bin")

	report, err := Run(registry, chunks, index, indexPath, now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.StaleDocuments != 0 || report.OrphanedChunks != 0 || report.OrphanedVectors != 0 {
		t.Errorf("report = %+v, want all zero", report)
	}
}
