// Package retrieval implements the Retriever component: similarity and
// diverse/region-stratified strategies, each producing an ordered list of
// SourceRefs and a CoverageDescriptor computed from the retrieval itself.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/viant/ragvault/internal/chunkstore"
	"github.com/viant/ragvault/internal/docregistry"
	"github.com/viant/ragvault/internal/embedder"
	"github.com/viant/ragvault/internal/model"
	"github.com/viant/ragvault/internal/vectorindex"
)

// Region weights for diverse sampling allocation: intro/middle/conclusion
// proportions of 30/40/30.
var regionWeights = map[model.Region]float64{
	model.RegionIntro:      0.30,
	model.RegionMiddle:     0.40,
	model.RegionConclusion: 0.30,
}

var regionOrder = []model.Region{model.RegionIntro, model.RegionMiddle, model.RegionConclusion}

// Retriever composes the vector index, chunk store, and document registry
// to answer similarity and diverse queries.
type Retriever struct {
	embedder       embedder.Embedder
	index          *vectorindex.Index
	chunks         *chunkstore.Store
	registry       *docregistry.Registry
	threshold      float64
	topK           int
	maxCoveragePct float64
}

func New(emb embedder.Embedder, index *vectorindex.Index, chunks *chunkstore.Store, registry *docregistry.Registry, threshold float64, topK int, maxCoveragePct float64) *Retriever {
	return &Retriever{
		embedder:       emb,
		index:          index,
		chunks:         chunks,
		registry:       registry,
		threshold:      threshold,
		topK:           topK,
		maxCoveragePct: maxCoveragePct,
	}
}

// Result is the combined output of a retrieval call.
type Result struct {
	Sources  []model.SourceRef
	Coverage model.CoverageDescriptor
	Warnings []string
}

const maxExcerptLen = 200

func truncateExcerpt(text string) string {
	if len(text) <= maxExcerptLen {
		return text
	}
	cut := text[:maxExcerptLen]
	if i := lastSpace(cut); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

func lastSpace(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ' ' {
			return i
		}
	}
	return -1
}

// eligibleDocuments resolves docIDs (or all ready documents when empty).
func (r *Retriever) eligibleDocuments(docIDs []string) []model.Document {
	ids := r.registry.EligibleReady(docIDs)
	docs := make([]model.Document, 0, len(ids))
	for _, id := range ids {
		if d, err := r.registry.Get(id); err == nil {
			docs = append(docs, d)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

func emptyResult(rt model.RetrievalType, warning string) Result {
	cov := model.NewCoverageDescriptor(rt, 0, 0, nil, nil, "No eligible documents are ready.")
	return Result{
		Sources:  []model.SourceRef{},
		Coverage: cov,
		Warnings: []string{warning},
	}
}

// Similarity embeds query, searches the top-k vectors across eligible
// documents, and keeps results scoring at or above the configured
// threshold.
func (r *Retriever) Similarity(ctx context.Context, query string, docIDs []string) (Result, error) {
	docs := r.eligibleDocuments(docIDs)
	if len(docs) == 0 {
		return emptyResult(model.RetrievalSimilarity, model.WarningNoContext), nil
	}

	eligible := map[string]bool{}
	total := 0
	perDocTotal := map[string]int{}
	titles := map[string]string{}
	for _, d := range docs {
		titles[d.ID] = d.Title
		n := r.chunks.CountByDocument(d.ID)
		perDocTotal[d.ID] = n
		total += n
		for _, c := range r.chunks.ByDocument(d.ID) {
			eligible[c.ID] = true
		}
	}

	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return Result{}, err
	}
	queryVec := vecs[0]

	matches, err := r.index.Search(ctx, queryVec, r.topK, eligible)
	if err != nil {
		return Result{}, err
	}

	sources := make([]model.SourceRef, 0, len(matches))
	perDocSeen := map[string]int{}
	for _, m := range matches {
		if m.Score < r.threshold {
			continue
		}
		c, ok := r.chunks.Get(m.ChunkID)
		if !ok {
			continue
		}
		sources = append(sources, model.NewSourceRef(c.DocumentID, c.ID, truncateExcerpt(c.Text), m.Score, map[string]string{
			"title": titles[c.DocumentID],
		}))
		perDocSeen[c.DocumentID]++
	}
	if len(sources) > r.topK {
		sources = sources[:r.topK]
	}

	perDoc := make([]model.DocumentCoverage, 0, len(docs))
	for _, d := range docs {
		seen := perDocSeen[d.ID]
		tot := perDocTotal[d.ID]
		pct := 0.0
		if tot > 0 {
			pct = 100 * float64(seen) / float64(tot)
		}
		perDoc = append(perDoc, model.DocumentCoverage{DocumentID: d.ID, Title: d.Title, ChunksSeen: seen, ChunksTotal: tot, CoveragePercentage: pct})
	}

	cov := model.NewCoverageDescriptor(model.RetrievalSimilarity, len(sources), total, perDoc,
		nil, fmt.Sprintf("Retrieved %d of %d chunks by similarity.", len(sources), total))

	var warnings []string
	if len(sources) == 0 {
		warnings = append(warnings, model.WarningNoContext)
	}
	return Result{Sources: sources, Coverage: cov, Warnings: warnings}, nil
}

type docChunks struct {
	doc      model.Document
	byRegion map[model.Region][]model.Chunk
	total    int
}

// Diverse samples chunks across intro/middle/conclusion regions of each
// eligible document to hit a target coverage percentage, ranking
// within-region candidates by similarity to query.
func (r *Retriever) Diverse(ctx context.Context, query string, docIDs []string, targetPct float64, escalate bool) (Result, error) {
	docs := r.eligibleDocuments(docIDs)
	if len(docs) == 0 {
		return emptyResult(model.RetrievalDiverse, model.WarningNoContext), nil
	}

	if escalate {
		targetPct = math.Min(targetPct+15, r.maxCoveragePct)
	}

	grouped := make([]docChunks, 0, len(docs))
	totalN := 0
	for _, d := range docs {
		chunks := r.chunks.ByDocument(d.ID)
		byRegion := map[model.Region][]model.Chunk{}
		for _, c := range chunks {
			byRegion[c.Region] = append(byRegion[c.Region], c)
		}
		grouped = append(grouped, docChunks{doc: d, byRegion: byRegion, total: len(chunks)})
		totalN += len(chunks)
	}

	if totalN == 0 {
		return emptyResult(model.RetrievalDiverse, model.WarningNoContext), nil
	}

	targetCount := int(math.Ceil(float64(totalN) * targetPct / 100))
	if targetCount < 6 {
		targetCount = 6
	}
	ceiling := int(math.Ceil(float64(totalN) * r.maxCoveragePct / 100))
	if targetCount > ceiling {
		targetCount = ceiling
	}
	if targetCount > totalN {
		targetCount = totalN
	}

	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return Result{}, err
	}
	queryVec := vecs[0]

	numDocs := len(grouped)
	perDocTarget := targetCount / numDocs
	if perDocTarget < 1 {
		perDocTarget = 1
	}

	selected := make(map[string]bool)
	var selectedChunks []model.Chunk
	blindSpots := []string{}
	for _, dc := range grouped {
		docSelected := r.sampleDocumentRegions(dc.byRegion, perDocTarget, queryVec)
		if len(docSelected) == 0 && dc.total > 0 {
			blindSpots = append(blindSpots, fmt.Sprintf("%s not sampled", dc.doc.Title))
		} else {
			for _, region := range regionOrder {
				if len(dc.byRegion[region]) == 0 {
					continue
				}
				has := false
				for _, c := range docSelected {
					if c.Region == region {
						has = true
						break
					}
				}
				if !has {
					blindSpots = append(blindSpots, fmt.Sprintf("%s of %s not sampled", region, dc.doc.Title))
				}
			}
		}
		for _, c := range docSelected {
			if !selected[c.ID] {
				selected[c.ID] = true
				selectedChunks = append(selectedChunks, c)
			}
		}
	}

	sort.Slice(selectedChunks, func(i, j int) bool {
		if selectedChunks[i].DocumentID != selectedChunks[j].DocumentID {
			return selectedChunks[i].DocumentID < selectedChunks[j].DocumentID
		}
		return selectedChunks[i].Ordinal < selectedChunks[j].Ordinal
	})
	if len(selectedChunks) > targetCount {
		selectedChunks = selectedChunks[:targetCount]
	}

	titles := map[string]string{}
	for _, dc := range grouped {
		titles[dc.doc.ID] = dc.doc.Title
	}

	sources := make([]model.SourceRef, 0, len(selectedChunks))
	perDocSeen := map[string]int{}
	for _, c := range selectedChunks {
		score := r.index.Score(c.ID, queryVec)
		sources = append(sources, model.NewSourceRef(c.DocumentID, c.ID, truncateExcerpt(c.Text), score, map[string]string{
			"title": titles[c.DocumentID],
		}))
		perDocSeen[c.DocumentID]++
	}

	perDoc := make([]model.DocumentCoverage, 0, len(grouped))
	for _, dc := range grouped {
		seen := perDocSeen[dc.doc.ID]
		pct := 0.0
		if dc.total > 0 {
			pct = 100 * float64(seen) / float64(dc.total)
		}
		perDoc = append(perDoc, model.DocumentCoverage{DocumentID: dc.doc.ID, Title: dc.doc.Title, ChunksSeen: seen, ChunksTotal: dc.total, CoveragePercentage: pct})
	}

	cov := model.NewCoverageDescriptor(model.RetrievalDiverse, len(sources), totalN, perDoc, blindSpots,
		fmt.Sprintf("Sampled %d of %d chunks across intro/middle/conclusion regions (~%.0f%% target coverage).", len(sources), totalN, targetPct))

	return Result{Sources: sources, Coverage: cov, Warnings: nil}, nil
}

// sampleDocumentRegions allocates perDocTarget chunks across a document's
// regions in 30/40/30 proportion, ranked by similarity within each region,
// spilling to adjacent regions when one is under-populated. Ties break by
// ascending ordinal.
func (r *Retriever) sampleDocumentRegions(byRegion map[model.Region][]model.Chunk, perDocTarget int, queryVec []float32) []model.Chunk {
	allocation := map[model.Region]int{}
	remaining := perDocTarget
	for i, region := range regionOrder {
		if i == len(regionOrder)-1 {
			allocation[region] = remaining
			continue
		}
		n := int(math.Round(float64(perDocTarget) * regionWeights[region]))
		if n < 1 {
			n = 1
		}
		if n > remaining {
			n = remaining
		}
		allocation[region] = n
		remaining -= n
	}

	scoreOf := func(c model.Chunk) float64 { return r.index.Score(c.ID, queryVec) }

	var selected []model.Chunk
	var spillPool []model.Chunk
	for _, region := range regionOrder {
		candidates := append([]model.Chunk{}, byRegion[region]...)
		sort.Slice(candidates, func(i, j int) bool {
			si, sj := scoreOf(candidates[i]), scoreOf(candidates[j])
			if si != sj {
				return si > sj
			}
			return candidates[i].Ordinal < candidates[j].Ordinal
		})
		want := allocation[region]
		if want > len(candidates) {
			want = len(candidates)
		}
		if want > 0 {
			selected = append(selected, candidates[:want]...)
		}
		if len(candidates) > want {
			spillPool = append(spillPool, candidates[want:]...)
		}
		if deficit := allocation[region] - want; deficit > 0 && len(spillPool) > 0 {
			take := deficit
			if take > len(spillPool) {
				take = len(spillPool)
			}
			selected = append(selected, spillPool[:take]...)
			spillPool = spillPool[take:]
		}
	}
	return selected
}
