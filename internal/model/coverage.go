package model

// RetrievalType is the strategy a Retriever used to produce a CoverageDescriptor.
type RetrievalType string

const (
	RetrievalSimilarity RetrievalType = "similarity"
	RetrievalDiverse    RetrievalType = "diverse"
)

// DocumentCoverage is the per-document slice of a CoverageDescriptor.
type DocumentCoverage struct {
	DocumentID        string  `json:"document_id"`
	Title             string  `json:"title"`
	ChunksSeen        int     `json:"chunks_seen"`
	ChunksTotal       int     `json:"chunks_total"`
	CoveragePercentage float64 `json:"coverage_percentage"`
}

// CoverageDescriptor is computed from retrieval, never guessed by the
// generator. chunks_seen never exceeds chunks_total; coverage_percentage is
// always 100*seen/total.
type CoverageDescriptor struct {
	RetrievalType      RetrievalType      `json:"retrieval_type"`
	ChunksSeen         int                `json:"chunks_seen"`
	ChunksTotal        int                `json:"chunks_total"`
	CoveragePercentage float64            `json:"coverage_percentage"`
	PerDocument        []DocumentCoverage `json:"per_document"`
	BlindSpots         []string           `json:"blind_spots"`
	CoverageSummary    string             `json:"coverage_summary"`
}

// NewCoverageDescriptor computes the percentage field from seen/total and
// guarantees BlindSpots is never nil.
func NewCoverageDescriptor(rt RetrievalType, seen, total int, perDoc []DocumentCoverage, blindSpots []string, summary string) CoverageDescriptor {
	if blindSpots == nil {
		blindSpots = []string{}
	}
	if perDoc == nil {
		perDoc = []DocumentCoverage{}
	}
	pct := 0.0
	if total > 0 {
		pct = 100 * float64(seen) / float64(total)
	}
	return CoverageDescriptor{
		RetrievalType:      rt,
		ChunksSeen:         seen,
		ChunksTotal:        total,
		CoveragePercentage: pct,
		PerDocument:        perDoc,
		BlindSpots:         blindSpots,
		CoverageSummary:    summary,
	}
}
