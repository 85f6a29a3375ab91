package retrieval

import (
	"fmt"

	"github.com/viant/ragvault/internal/model"
)

// Retrieval-quality thresholds, carried over as configured constants: a
// single document contributing more than this share of sources triggers
// an over-reliance warning; fewer than this many sources caps confidence
// observability; average relevance below this floor is flagged.
const (
	MaxSingleSourceReliance  = 0.7
	MinSourcesForHighConfidence = 3
	MinRelevanceScore        = 0.7
)

// QualityWarnings computes retrieval-quality warnings independent of
// citation count — insufficient source count, low average relevance, and
// single-document over-reliance — additive to the citation-based warnings
// the Validator computes after generation.
func QualityWarnings(sources []model.SourceRef) []string {
	var warnings []string

	switch {
	case len(sources) == 0:
		warnings = append(warnings, fmt.Sprintf("%s: no relevant sources found", model.WarningInsufficientContext))
	case len(sources) < MinSourcesForHighConfidence:
		warnings = append(warnings, fmt.Sprintf("%s: only %d source(s) found", model.WarningInsufficientContext, len(sources)))
	}

	if len(sources) > 0 {
		var sum float64
		for _, s := range sources {
			sum += s.RelevanceScore
		}
		avg := sum / float64(len(sources))
		if avg < MinRelevanceScore {
			warnings = append(warnings, fmt.Sprintf("%s: average source relevance is low (%.2f)", model.WarningLowRelevanceSources, avg))
		}

		counts := map[string]int{}
		for _, s := range sources {
			counts[s.DocumentID]++
		}
		for _, c := range counts {
			if float64(c)/float64(len(sources)) > MaxSingleSourceReliance {
				warnings = append(warnings, fmt.Sprintf("%s: over-reliance on a single document", model.WarningSourceOverReliance))
				break
			}
		}
	}

	return warnings
}

// RetrievalConfidence is the observability-only confidence grade from the
// original model-routing concept: computed and surfaced in retrieval
// metadata, but does not override intent-based model selection.
type RetrievalConfidence string

const (
	RetrievalConfidenceHigh   RetrievalConfidence = "high"
	RetrievalConfidenceMedium RetrievalConfidence = "medium"
	RetrievalConfidenceLow    RetrievalConfidence = "low"
)

// GradeRetrievalConfidence grades sources by average relevance and count of
// high-quality (>= MinRelevanceScore) chunks, for observability only.
func GradeRetrievalConfidence(sources []model.SourceRef) RetrievalConfidence {
	if len(sources) == 0 {
		return RetrievalConfidenceLow
	}
	var sum float64
	highQuality := 0
	for _, s := range sources {
		sum += s.RelevanceScore
		if s.RelevanceScore >= MinRelevanceScore {
			highQuality++
		}
	}
	avg := sum / float64(len(sources))
	switch {
	case avg >= MinRelevanceScore && highQuality >= MinSourcesForHighConfidence:
		return RetrievalConfidenceHigh
	case avg >= 0.5:
		return RetrievalConfidenceMedium
	default:
		return RetrievalConfidenceLow
	}
}
