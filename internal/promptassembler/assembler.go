// Package promptassembler picks a prompt template keyed by intent, injects
// retrieved chunks with stable numeric [Source N] labels, and states the
// coverage percentage verbatim so the generator knows its own limits.
package promptassembler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/viant/ragvault/internal/model"
)

// Assembled is the (system, user) prompt pair handed to the Generator.
type Assembled struct {
	System string
	User   string
}

const analysisSystem = `You are a document analysis assistant that helps users understand their documents.

EPISTEMIC RULES (you MUST follow these):
1. Your confidence must not exceed what coverage justifies
2. Separate claims (with citations) from interpretations (marked as synthesis)
3. Surface contradictions without forcing resolution
4. Acknowledge what you cannot assess

Your goal is intellectual honesty first, usefulness second, polish last.`

const writingSystem = `You are a writing assistant that helps users write through uncertainty and draft professional documents.

CRITICAL RULES:
1. Use ONLY the provided context as your knowledge base
2. NEVER make up information not present in the context
3. You MAY include reasoned interpretations or hypotheses IF they are clearly labeled as such
4. Clearly distinguish between directly supported claims, reasoned synthesis, and open questions
5. Cite which source supports each claim using [Source N] notation
6. If sources conflict, acknowledge the conflict explicitly

Your goal is transparency - users must be able to verify every claim you make.`

// Assemble builds the system and user prompts for prompt, the classified
// intent, the retrieved sources, and the coverage descriptor already
// computed by the Retriever.
func Assemble(prompt string, ic model.IntentClassification, sources []model.SourceRef, coverage model.CoverageDescriptor) Assembled {
	coverageInfo := fmt.Sprintf("You are seeing ~%.0f%% of the document.", coverage.CoveragePercentage)
	context, numSources := formatContext(sources)

	switch {
	case ic.Intent == model.IntentAnalysis && ic.SummaryScope == model.SummaryScopeFocused:
		return Assembled{
			System: analysisSystem,
			User:   focusedSummaryUser(ic.FocusTopic, coverageInfo, context, numSources),
		}
	case ic.Intent == model.IntentAnalysis:
		return Assembled{
			System: analysisSystem,
			User:   exploratorySummaryUser(coverageInfo, context, numSources),
		}
	default:
		return Assembled{
			System: writingSystem,
			User:   coverageAwareUser(prompt, coverageInfo, context, numSources),
		}
	}
}

func formatContext(sources []model.SourceRef) (string, int) {
	if len(sources) == 0 {
		return "No relevant sources found.", 0
	}
	parts := make([]string, 0, len(sources))
	for i, s := range sources {
		title := s.Metadata["title"]
		if title == "" {
			title = "Unknown"
		}
		parts = append(parts, fmt.Sprintf("[Source %d] (from: %s)\n%s", i+1, title, s.Excerpt))
	}
	return strings.Join(parts, "\n\n---\n\n"), len(sources)
}

func exploratorySummaryUser(coverageInfo, context string, numSources int) string {
	return fmt.Sprintf(`Provide an exploratory overview of this document based on a representative sample.

IMPORTANT - THIS IS AN EXPLORATORY OVERVIEW:
%s

CONTEXT (%d sources from different document regions):
%s

OUTPUT STRUCTURE:

## Observations
[2-3 sentences describing what this document appears to cover, based on the sample. Cite [Source N].]

## Synthesized Patterns
[Main topics/themes found across the sample.]

## Contradictions
[Where the sampled sources conflict, if any.]

## Questions Raised
[Specific questions or topics the user could explore for deeper understanding.]

## Blind Spots
[What parts of the document this sample represents and what might be missing.]

Begin your exploratory overview:`, coverageInfo, numSources, context)
}

func focusedSummaryUser(focusTopic, coverageInfo, context string, numSources int) string {
	return fmt.Sprintf(`Provide a focused analysis of %q based on the document content.

COVERAGE CONTEXT:
%s

CONTEXT (%d sources):
%s

OUTPUT STRUCTURE:

## Observations
[Focused synthesis of what the document says about %q. Cite every claim with [Source N].]

## Synthesized Patterns
[How this topic connects to other themes mentioned in the sources.]

## Contradictions
[Where sources disagree about %q, if any.]

## Questions Raised
[2-3 specific questions that would deepen understanding of %q.]

## Blind Spots
[What aspects of %q are NOT covered in the available sources.]

Begin your focused analysis:`, focusTopic, coverageInfo, numSources, context, focusTopic, focusTopic, focusTopic, focusTopic)
}

// COVERAGE_AWARE_GENERATION: used for QA and WRITING intents.
func coverageAwareUser(topic, coverageInfo, context string, numSources int) string {
	return fmt.Sprintf(`Write the following based on the provided context: %s

IMPORTANT CONTEXT LIMITATION:
%s

CONTEXT (%d sources available - cite [Source 1] through [Source %d]):
%s

CRITICAL OUTPUT RULES:
- Output ONLY the requested content - no preamble or meta-commentary
- Write in a clear, professional tone
- MANDATORY: Include [Source N] citations inline after claims
- ONLY cite sources that exist: [Source 1] through [Source %d]
- Every non-trivial paragraph MUST have at least one citation
- If context is insufficient, write what you can and note gaps at the end

Begin writing:`, topic, coverageInfo, numSources, numSources, context, numSources)
}

// RegenerationPrompt builds the prompt for re-running a section with a
// refinement instruction (or a default clarity pass).
func RegenerationPrompt(originalSection string, refinement string, sources []model.SourceRef, coverage model.CoverageDescriptor) Assembled {
	if refinement == "" {
		refinement = "Improve clarity and ensure all claims are well-supported."
	}
	context, _ := formatContext(sources)
	truncated := originalSection
	if len(truncated) > 500 {
		truncated = truncated[:500] + "..."
	}
	user := fmt.Sprintf(`Rewrite this section using the provided context: %s

%s

CONTEXT:
%s

Rewritten section:`, truncated, refinement, context)
	return Assembled{System: writingSystem, User: user}
}

// SuggestedQuestionsPrompt builds the prompt for the suggested-questions
// supplement endpoint.
func SuggestedQuestionsPrompt(numQuestions int, sources []model.SourceRef) Assembled {
	context, _ := formatContext(sources)
	user := fmt.Sprintf(`Based on the following document content, generate %d thoughtful questions that a user might want to explore or write about.

DOCUMENT CONTENT:
%s

Generate questions that:
1. Can be answered or explored using the provided content
2. Cover different aspects and topics from the documents
3. Range from specific factual questions to broader analytical ones

Output ONLY the questions, one per line, numbered 1-%d. Do not include any other text:`, numQuestions, context, numQuestions)
	return Assembled{System: writingSystem, User: user}
}

var numberedLine = regexp.MustCompile(`^\s*\d+[.)]\s*(.+)$`)

// ParseQuestions extracts numbered questions from raw generator output. If
// no numbered lines match, it falls back to any line ending in "?".
func ParseQuestions(raw string, limit int) []string {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	questions := make([]string, 0, limit)
	for _, line := range lines {
		if m := numberedLine.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			if q := strings.TrimSpace(m[1]); q != "" {
				questions = append(questions, q)
			}
		}
	}
	if len(questions) == 0 {
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" && strings.HasSuffix(trimmed, "?") {
				questions = append(questions, trimmed)
			}
		}
	}
	if limit > 0 && len(questions) > limit {
		questions = questions[:limit]
	}
	return questions
}
