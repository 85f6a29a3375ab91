// Package intent implements the Intent Classifier: a deterministic,
// rule-ordered mapping from a raw prompt to an IntentClassification. ANALYSIS
// is checked before WRITING so "write a summary" classifies as ANALYSIS; QA
// is sandwiched between them to catch short questions that also mention
// writing.
package intent

import (
	"regexp"
	"strings"

	"github.com/viant/ragvault/internal/model"
)

var analysisCues = []*regexp.Regexp{
	regexp.MustCompile(`(?i)summariz\w*`),
	regexp.MustCompile(`(?i)summaris\w*`),
	regexp.MustCompile(`(?i)\boverview\b`),
	regexp.MustCompile(`(?i)\bmain\s+points?\b`),
	regexp.MustCompile(`(?i)\bkey\s+takeaways?\b`),
	regexp.MustCompile(`(?i)\bof\s+this\s+document\b`),
	regexp.MustCompile(`(?i)\bwrite\s+a\s+summary\b`),
}

var interrogativeStart = regexp.MustCompile(`(?i)^(what|when|where|who|why|how|is|are|does|can)\b`)

var writingCues = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bwrite\b`),
	regexp.MustCompile(`(?i)\bdraft\b`),
	regexp.MustCompile(`(?i)\bcreate\b`),
	regexp.MustCompile(`(?i)\bcompose\b`),
	regexp.MustCompile(`(?i)\breport\b`),
	regexp.MustCompile(`(?i)\bletter\b`),
}

var focusPattern = regexp.MustCompile(`(?i)\b(?:about|regarding)\s+(.+)$`)
var sectionPattern = regexp.MustCompile(`(?i)\bthe\s+(.+?)\s+section\b`)

// Classify applies the three ordered rules to prompt and returns a
// deterministic IntentClassification.
func Classify(prompt string) model.IntentClassification {
	trimmed := strings.TrimSpace(prompt)

	if cues := matchAll(analysisCues, trimmed); len(cues) > 0 {
		confidence := 0.70 + 0.20*float64(len(cues)-1)
		if confidence > 1.0 {
			confidence = 1.0
		}
		scope, topic := summaryScope(trimmed)
		return model.IntentClassification{
			Intent:             model.IntentAnalysis,
			Confidence:         confidence,
			Reasoning:          "summary-class cues matched",
			SuggestedRetrieval: model.RetrievalDiverse,
			SummaryScope:       scope,
			FocusTopic:         topic,
		}
	}

	words := strings.Fields(trimmed)
	hasQuestionMark := strings.Contains(trimmed, "?")
	if interrogativeStart.MatchString(trimmed) && (hasQuestionMark || len(words) <= 15) {
		confidence := 0.70
		if hasQuestionMark {
			confidence += 0.15
		}
		if confidence > 1.0 {
			confidence = 1.0
		}
		return model.IntentClassification{
			Intent:             model.IntentQA,
			Confidence:         confidence,
			Reasoning:          "interrogative opener with short or question-marked prompt",
			SuggestedRetrieval: model.RetrievalSimilarity,
			SummaryScope:       model.SummaryScopeNA,
		}
	}

	if cues := matchAll(writingCues, trimmed); len(cues) > 0 {
		confidence := 0.70 + 0.10*float64(len(cues)-1)
		if confidence > 1.0 {
			confidence = 1.0
		}
		return model.IntentClassification{
			Intent:             model.IntentWriting,
			Confidence:         confidence,
			Reasoning:          "content-creation cues matched",
			SuggestedRetrieval: model.RetrievalSimilarity,
			SummaryScope:       model.SummaryScopeNA,
		}
	}

	return model.IntentClassification{
		Intent:             model.IntentWriting,
		Confidence:         0.5,
		Reasoning:          "no specific pattern matched; defaulting to writing mode",
		SuggestedRetrieval: model.RetrievalSimilarity,
		SummaryScope:       model.SummaryScopeNA,
	}
}

func matchAll(patterns []*regexp.Regexp, s string) []string {
	var hits []string
	for _, p := range patterns {
		if p.MatchString(s) {
			hits = append(hits, p.String())
		}
	}
	return hits
}

// summaryScope returns FOCUSED with a topic when the prompt names a focus
// term, else BROAD.
func summaryScope(prompt string) (model.SummaryScope, string) {
	if m := focusPattern.FindStringSubmatch(prompt); len(m) == 2 {
		return model.SummaryScopeFocused, strings.TrimSpace(m[1])
	}
	if m := sectionPattern.FindStringSubmatch(prompt); len(m) == 2 {
		return model.SummaryScopeFocused, strings.TrimSpace(m[1])
	}
	return model.SummaryScopeBroad, ""
}
