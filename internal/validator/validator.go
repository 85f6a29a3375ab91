// Package validator implements the Validator component: the only part of
// the pipeline allowed to change sources, confidence, and warnings on a
// GeneratedSection. The Generator's output is plain text; everything
// auditable about it is decided here.
package validator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/viant/ragvault/internal/model"
)

var sectionHeading = regexp.MustCompile(`(?m)^##\s+(.+)$`)
var citationPattern = regexp.MustCompile(`\[Source\s+(\d+)\]`)

// hedgingPattern is the exact confidence-grading hedging regex: it governs
// only whether a medium-confidence section is downgraded to low.
var hedgingPattern = regexp.MustCompile(`(?i)\b(may|might|possibly|unclear|not certain)\b`)

// Split breaks raw generator output into sections by "## Heading" markers.
// If no headings are present, the whole output becomes one section.
func Split(raw string) []string {
	locs := sectionHeading.FindAllStringIndex(raw, -1)
	if len(locs) == 0 {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}
	sections := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		sections = append(sections, strings.TrimSpace(raw[loc[0]:end]))
	}
	return sections
}

// sanitizeResult is the outcome of citation sanitization over one section.
type sanitizeResult struct {
	content        string
	citedOrder     []int // valid source indices in first-appearance order
	citedIndices   map[int]bool
	removedInvalid bool
}

// sanitizeCitations strips [Source N] tokens with N outside [1..k] from
// content, reporting which valid indices remain cited, in the order they
// first appear in the text.
func sanitizeCitations(content string, k int) sanitizeResult {
	cited := map[int]bool{}
	var order []int
	removed := false
	out := citationPattern.ReplaceAllStringFunc(content, func(m string) string {
		sub := citationPattern.FindStringSubmatch(m)
		n, _ := strconv.Atoi(sub[1])
		if n < 1 || n > k {
			removed = true
			return ""
		}
		if !cited[n] {
			cited[n] = true
			order = append(order, n)
		}
		return m
	})
	return sanitizeResult{content: out, citedOrder: order, citedIndices: cited, removedInvalid: removed}
}

// gradeConfidence is a pure function of (citation count, hedging match):
// high iff c>=3, medium iff 1<=c<=2, unknown iff c=0. Hedging language
// downgrades medium to low; it never overrides high, since three or more
// citations is treated as well-grounded regardless of hedging phrasing.
// (This is the spec's stated rule; the source evidence for hedging
// precedence was flagged ambiguous — see DESIGN.md.)
func gradeConfidence(citationCount int, hedges bool) model.ConfidenceLevel {
	var base model.ConfidenceLevel
	switch {
	case citationCount >= 3:
		base = model.ConfidenceHigh
	case citationCount >= 1:
		base = model.ConfidenceMedium
	default:
		base = model.ConfidenceUnknown
	}
	if base == model.ConfidenceMedium && hedges {
		return model.ConfidenceLow
	}
	return base
}

// ValidateSections turns raw generator output into GeneratedSections: each
// section's citations are sanitized against sources (indexed [Source 1]..
// [Source K]), confidence is graded, and warnings are attached.
func ValidateSections(raw string, sources []model.SourceRef, coverage model.CoverageDescriptor, retrievalWarnings []string) []model.GeneratedSection {
	k := len(sources)
	rawSections := Split(raw)
	if len(rawSections) == 0 {
		warnings := append([]string{}, retrievalWarnings...)
		if k == 0 {
			warnings = append(warnings, model.WarningNoSources)
		} else {
			warnings = append(warnings, model.WarningZeroCitations)
		}
		return []model.GeneratedSection{
			model.NewGeneratedSection(uuid.NewString(), "", nil, model.ConfidenceUnknown, warnings),
		}
	}

	out := make([]model.GeneratedSection, 0, len(rawSections))
	for _, raw := range rawSections {
		sr := sanitizeCitations(raw, k)

		usedSources := make([]model.SourceRef, 0, len(sr.citedOrder))
		for _, n := range sr.citedOrder {
			usedSources = append(usedSources, sources[n-1])
		}
		citationCount := len(sr.citedOrder)
		confidence := gradeConfidence(citationCount, hedgingPattern.MatchString(raw))

		warnings := append([]string{}, retrievalWarnings...)
		if sr.removedInvalid {
			warnings = append(warnings, model.WarningInvalidCitationsRemoved)
		}
		if k == 0 {
			warnings = append(warnings, model.WarningNoSources)
		} else if citationCount == 0 {
			warnings = append(warnings, model.WarningZeroCitations)
		}
		if len(usedSources) == 1 && k > 3 {
			warnings = append(warnings, model.WarningSourceOverReliance)
		}

		out = append(out, model.NewGeneratedSection(uuid.NewString(), sr.content, usedSources, confidence, warnings))
	}
	return out
}

// BlindSpotsSummary re-exposes the coverage descriptor's blind spots as a
// human-readable summary line, so callers can surface both the structured
// list and a one-line digest.
func BlindSpotsSummary(coverage model.CoverageDescriptor) string {
	if len(coverage.BlindSpots) == 0 {
		return ""
	}
	return fmt.Sprintf("%d area(s) not sampled: %s", len(coverage.BlindSpots), strings.Join(coverage.BlindSpots, "; "))
}
