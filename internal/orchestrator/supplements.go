package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/ragvault/internal/model"
	"github.com/viant/ragvault/internal/promptassembler"
)

// SuggestedQuestionsResult is the response shape of SuggestedQuestions.
type SuggestedQuestionsResult struct {
	Questions       []string `json:"questions"`
	SourceDocuments []string `json:"source_documents"`
}

// SuggestedQuestions retrieves a representative sample of a document
// selection and asks the generator for exploratory follow-up questions.
func (o *Orchestrator) SuggestedQuestions(ctx context.Context, docIDs []string, numQuestions int) (SuggestedQuestionsResult, error) {
	if numQuestions <= 0 {
		numQuestions = 5
	}

	result, err := o.retriever.Diverse(ctx, "document overview", docIDs, o.defaultCoveragePct, false)
	if err != nil {
		return SuggestedQuestionsResult{}, err
	}

	assembled := promptassembler.SuggestedQuestionsPrompt(numQuestions, result.Sources)
	raw, err := o.generator.Generate(ctx, assembled.System, assembled.User, o.models.Writing)
	if err != nil {
		return SuggestedQuestionsResult{}, err
	}

	questions := promptassembler.ParseQuestions(raw, numQuestions)

	seen := map[string]bool{}
	var docs []string
	for _, s := range result.Sources {
		if !seen[s.DocumentID] {
			seen[s.DocumentID] = true
			docs = append(docs, s.DocumentID)
		}
	}

	return SuggestedQuestionsResult{Questions: questions, SourceDocuments: docs}, nil
}

// Export renders a generation's sections as a single markdown document:
// each section's content is copied unchanged, [Source N] citations
// included, followed by one [^k] footnote per distinct source, numbered in
// first-appearance order across all sections. Citations in the content are
// not rewritten to the footnote numbers.
func Export(sections []model.GeneratedSection) (format, content string) {
	var b strings.Builder
	var footnotes []string
	footnoteIndex := 0
	seen := map[string]int{}

	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(s.Content)

		for _, src := range s.Sources {
			key := src.DocumentID + ":" + src.ChunkID
			if _, ok := seen[key]; ok {
				continue
			}
			footnoteIndex++
			seen[key] = footnoteIndex
			title := src.Metadata["title"]
			if title == "" {
				title = "Unknown"
			}
			footnotes = append(footnotes, fmt.Sprintf("[^%d]: %s — %s", footnoteIndex, title, src.Excerpt))
		}
	}

	if len(footnotes) > 0 {
		b.WriteString("\n\n---\n\n")
		b.WriteString(strings.Join(footnotes, "\n"))
	}

	return "markdown", b.String()
}
