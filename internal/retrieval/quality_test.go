package retrieval

import (
	"strings"
	"testing"

	"github.com/viant/ragvault/internal/model"
)

func refWithScore(docID string, score float64) model.SourceRef {
	return model.NewSourceRef(docID, docID+":0", "excerpt", score, nil)
}

func TestQualityWarningsEmptySources(t *testing.T) {
	warnings := QualityWarnings(nil)
	if len(warnings) != 1 || !strings.Contains(warnings[0], model.WarningInsufficientContext) {
		t.Errorf("warnings = %v, want a single insufficient_context warning", warnings)
	}
}

func TestQualityWarningsFewSources(t *testing.T) {
	warnings := QualityWarnings([]model.SourceRef{refWithScore("d1", 0.9)})
	if !strings.Contains(warnings[0], model.WarningInsufficientContext) {
		t.Errorf("warnings = %v, want insufficient_context for a single source", warnings)
	}
}

func TestQualityWarningsLowRelevance(t *testing.T) {
	sources := []model.SourceRef{refWithScore("d1", 0.3), refWithScore("d2", 0.3), refWithScore("d3", 0.3)}
	warnings := QualityWarnings(sources)
	found := false
	for _, w := range warnings {
		if strings.Contains(w, model.WarningLowRelevanceSources) {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want low_relevance_sources", warnings)
	}
}

func TestQualityWarningsSingleDocumentOverReliance(t *testing.T) {
	sources := []model.SourceRef{refWithScore("d1", 0.9), refWithScore("d1", 0.9), refWithScore("d1", 0.9), refWithScore("d2", 0.9)}
	warnings := QualityWarnings(sources)
	found := false
	for _, w := range warnings {
		if strings.Contains(w, model.WarningSourceOverReliance) {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want source_over_reliance", warnings)
	}
}

func TestGradeRetrievalConfidence(t *testing.T) {
	cases := []struct {
		name    string
		sources []model.SourceRef
		want    RetrievalConfidence
	}{
		{"no sources", nil, RetrievalConfidenceLow},
		{"high quality", []model.SourceRef{refWithScore("d1", 0.9), refWithScore("d2", 0.9), refWithScore("d3", 0.9)}, RetrievalConfidenceHigh},
		{"medium quality", []model.SourceRef{refWithScore("d1", 0.6), refWithScore("d2", 0.6)}, RetrievalConfidenceMedium},
		{"low quality", []model.SourceRef{refWithScore("d1", 0.1)}, RetrievalConfidenceLow},
	}
	for _, c := range cases {
		if got := GradeRetrievalConfidence(c.sources); got != c.want {
			t.Errorf("%s: GradeRetrievalConfidence = %s, want %s", c.name, got, c.want)
		}
	}
}
