// Package reconcile runs the startup consistency pass: any document left
// pending/processing when the process last exited is marked failed, and
// any chunk or vector orphaned by a deletion that died mid-way is pruned.
package reconcile

import (
	"time"

	"github.com/viant/ragvault/internal/chunkstore"
	"github.com/viant/ragvault/internal/docregistry"
	"github.com/viant/ragvault/internal/vectorindex"
)

// Report summarizes what the startup pass changed.
type Report struct {
	StaleDocuments  int
	OrphanedChunks  int
	OrphanedVectors int
}

// Run marks stale in-flight documents as failed, then prunes chunks whose
// owning document no longer exists and vectors whose chunk no longer
// exists — the two-phase-deletion recovery the concurrency model requires.
func Run(registry *docregistry.Registry, chunks *chunkstore.Store, index *vectorindex.Index, indexPath string, now time.Time) (Report, error) {
	var report Report

	staleCount, err := registry.ReconcileStale(now)
	if err != nil {
		return report, err
	}
	report.StaleDocuments = staleCount

	liveDocs := map[string]bool{}
	for _, d := range registry.List() {
		liveDocs[d.ID] = true
	}

	var orphanChunkIDs []string
	for _, c := range chunks.All() {
		if !liveDocs[c.DocumentID] {
			orphanChunkIDs = append(orphanChunkIDs, c.ID)
		}
	}
	if len(orphanChunkIDs) > 0 {
		for _, id := range orphanChunkIDs {
			chunks.Delete(id)
		}
		if err := chunks.Save(); err != nil {
			return report, err
		}
		report.OrphanedChunks = len(orphanChunkIDs)
	}

	liveChunks := map[string]bool{}
	for _, c := range chunks.All() {
		liveChunks[c.ID] = true
	}
	orphanedVectors := index.PruneExcept(liveChunks)
	report.OrphanedVectors = orphanedVectors
	if orphanedVectors > 0 {
		if err := index.SaveTo(indexPath); err != nil {
			return report, err
		}
	}

	return report, nil
}
