// Package orchestrator implements the three top-level request handlers
// that compose Intent Classifier -> Retriever -> Prompt Assembler ->
// Generator -> Validator: generate, chat, and regenerate. Only chat
// persists its result (the conversation); generate and regenerate return
// theirs without storing them.
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/viant/ragvault/internal/apperrors"
	"github.com/viant/ragvault/internal/chat"
	"github.com/viant/ragvault/internal/generator"
	"github.com/viant/ragvault/internal/intent"
	"github.com/viant/ragvault/internal/model"
	"github.com/viant/ragvault/internal/promptassembler"
	"github.com/viant/ragvault/internal/retrieval"
	"github.com/viant/ragvault/internal/store"
	"github.com/viant/ragvault/internal/validator"
)

// ModelSelector resolves an LLM identifier from an intent, per the
// configured per-intent model overrides.
type ModelSelector struct {
	Analysis string
	Writing  string
	QA       string
}

func (m ModelSelector) For(i model.QueryIntent) string {
	switch i {
	case model.IntentAnalysis:
		return m.Analysis
	case model.IntentWriting:
		return m.Writing
	default:
		return m.QA
	}
}

// Orchestrator wires every pipeline component together behind the three
// operations the HTTP layer calls.
type Orchestrator struct {
	retriever    *retrieval.Retriever
	generator    generator.Generator
	models       ModelSelector
	chat         *chat.Controller
	convStore    *store.ConversationStore
	defaultCoveragePct float64
}

func New(r *retrieval.Retriever, g generator.Generator, models ModelSelector, c *chat.Controller, convStore *store.ConversationStore, defaultCoveragePct float64) *Orchestrator {
	return &Orchestrator{retriever: r, generator: g, models: models, chat: c, convStore: convStore, defaultCoveragePct: defaultCoveragePct}
}

// RetrievalMetadata is the {intent, coverage, ...} block returned alongside
// generated sections.
type RetrievalMetadata struct {
	Intent              model.IntentClassification `json:"intent"`
	Coverage            model.CoverageDescriptor    `json:"coverage"`
	RetrievalConfidence retrieval.RetrievalConfidence `json:"retrieval_confidence"`
	Warnings            []string                    `json:"warnings"`
}

// Timings records how long each pipeline stage took, in milliseconds.
type Timings struct {
	RetrievalMS int64 `json:"retrieval_ms"`
	GenerationMS int64 `json:"generation_ms"`
	TotalMS     int64 `json:"total_ms"`
}

// GenerateResult is the response shape of generate().
type GenerateResult struct {
	GenerationID      string                    `json:"generation_id"`
	Sections          []model.GeneratedSection  `json:"sections"`
	RetrievalMetadata RetrievalMetadata         `json:"retrieval_metadata"`
	Timings           Timings                   `json:"timings"`
}

// Generate runs I -> choose retrieval -> R -> P -> G -> X. When the
// similarity strategy returns nothing, it emits a no_context warning and
// still calls the generator with an empty source block rather than
// silently failing or auto-escalating to diverse.
func (o *Orchestrator) Generate(ctx context.Context, prompt string, docIDs []string, escalate bool, intentOverride model.QueryIntent) (GenerateResult, error) {
	start := time.Now()

	ic := intent.Classify(prompt)
	if intentOverride != "" {
		ic.Intent = intentOverride
		ic.Reasoning = "intent overridden by caller"
	}

	retrievalStart := time.Now()
	result, err := o.retrieve(ctx, prompt, docIDs, ic, escalate)
	if err != nil {
		return GenerateResult{}, err
	}
	retrievalMS := time.Since(retrievalStart).Milliseconds()

	assembled := promptassembler.Assemble(prompt, ic, result.Sources, result.Coverage)
	modelID := o.models.For(ic.Intent)

	genStart := time.Now()
	raw, err := o.generator.Generate(ctx, assembled.System, assembled.User, modelID)
	if err != nil {
		return GenerateResult{}, err
	}
	genMS := time.Since(genStart).Milliseconds()

	qualityWarnings := retrieval.QualityWarnings(result.Sources)
	allWarnings := append(append([]string{}, result.Warnings...), qualityWarnings...)
	sections := validator.ValidateSections(raw, result.Sources, result.Coverage, allWarnings)

	return GenerateResult{
		GenerationID: uuid.NewString(),
		Sections:     sections,
		RetrievalMetadata: RetrievalMetadata{
			Intent:              ic,
			Coverage:            result.Coverage,
			RetrievalConfidence: retrieval.GradeRetrievalConfidence(result.Sources),
			Warnings:            allWarnings,
		},
		Timings: Timings{RetrievalMS: retrievalMS, GenerationMS: genMS, TotalMS: time.Since(start).Milliseconds()},
	}, nil
}

// retrieve dispatches to similarity or diverse per the intent's suggested
// retrieval, never silently retrying similarity with diverse on empty
// results.
func (o *Orchestrator) retrieve(ctx context.Context, query string, docIDs []string, ic model.IntentClassification, escalate bool) (retrieval.Result, error) {
	if ic.SuggestedRetrieval == model.RetrievalDiverse {
		return o.retriever.Diverse(ctx, query, docIDs, o.defaultCoveragePct, escalate)
	}
	result, err := o.retriever.Similarity(ctx, query, docIDs)
	if err != nil {
		return retrieval.Result{}, err
	}
	if len(result.Sources) == 0 {
		hasWarning := false
		for _, w := range result.Warnings {
			if w == model.WarningNoContext {
				hasWarning = true
			}
		}
		if !hasWarning {
			result.Warnings = append(result.Warnings, model.WarningNoContext)
		}
	}
	return result, nil
}

// ChatResult is the response shape of chat().
type ChatResult struct {
	ConversationID     string                   `json:"conversation_id"`
	Message            model.ChatMessage        `json:"message"`
	CumulativeCoverage *model.CoverageDescriptor `json:"cumulative_coverage,omitempty"`
	ContextUsed        []model.SourceRef        `json:"context_used"`
	Timings            Timings                  `json:"timings"`
}

const maxQueryAugmentChars = 200

// Chat loads or creates a conversation, augments the query with the prior
// user turns (joined oldest first, cut to maxQueryAugmentChars), runs the
// pipeline with the conversation's history
// window folded into the prompt, appends the turn, and persists.
func (o *Orchestrator) Chat(ctx context.Context, conversationID, message string, docIDs []string) (ChatResult, error) {
	start := time.Now()
	now := time.Now().UTC()

	conv := o.chat.GetOrCreate(conversationID, docIDs, now)
	lock := o.chat.Lock(conv.ID)
	lock.Lock()
	defer lock.Unlock()

	query := chat.AugmentQuery(conv, message, maxQueryAugmentChars)
	ic := intent.Classify(message)

	retrievalStart := time.Now()
	result, err := o.retrieve(ctx, query, docIDs, ic, false)
	if err != nil {
		return ChatResult{}, err
	}
	retrievalMS := time.Since(retrievalStart).Milliseconds()

	history := o.chat.BuildHistoryWindow(conv)
	assembled := promptassembler.Assemble(historyPrefixedPrompt(history, message), ic, result.Sources, result.Coverage)
	modelID := o.models.For(ic.Intent)

	genStart := time.Now()
	raw, err := o.generator.Generate(ctx, assembled.System, assembled.User, modelID)
	if err != nil {
		return ChatResult{}, err
	}
	genMS := time.Since(genStart).Milliseconds()

	qualityWarnings := retrieval.QualityWarnings(result.Sources)
	allWarnings := append(append([]string{}, result.Warnings...), qualityWarnings...)
	sections := validator.ValidateSections(raw, result.Sources, result.Coverage, allWarnings)

	assistantContent := joinSectionContent(sections)
	o.chat.AppendTurn(conv, message, assistantContent, sections, result.Sources, now)

	cumIDs := chat.CumulativeChunkIDs(conv)
	cumCov := model.NewCoverageDescriptor(result.Coverage.RetrievalType, len(cumIDs), result.Coverage.ChunksTotal, nil, nil,
		"Cumulative coverage across this conversation.")
	conv.CumulativeCoverage = &cumCov

	if err := o.convStore.Save(conv); err != nil {
		return ChatResult{}, apperrors.PersistenceFailed("failed to persist conversation", err)
	}

	lastMsg := conv.Messages[len(conv.Messages)-1]
	return ChatResult{
		ConversationID:     conv.ID,
		Message:            lastMsg,
		CumulativeCoverage: conv.CumulativeCoverage,
		ContextUsed:        result.Sources,
		Timings:            Timings{RetrievalMS: retrievalMS, GenerationMS: genMS, TotalMS: time.Since(start).Milliseconds()},
	}, nil
}

func historyPrefixedPrompt(history chat.HistoryWindow, message string) string {
	if len(history.Blocks) == 0 {
		return message
	}
	out := ""
	for _, b := range history.Blocks {
		out += b + "\n"
	}
	return out + "USER: " + message
}

func joinSectionContent(sections []model.GeneratedSection) string {
	out := ""
	for i, s := range sections {
		if i > 0 {
			out += "\n\n"
		}
		out += s.Content
	}
	return out
}

// RegenerateResult is the response shape of regenerate().
type RegenerateResult struct {
	Section           model.GeneratedSection `json:"section"`
	RetrievalMetadata RetrievalMetadata      `json:"retrieval_metadata"`
	Timings           Timings                `json:"timings"`
}

// Regenerate re-runs retrieval with the refinement prompt (falling back to
// the original content when none is given), reassembles, regenerates, and
// revalidates a single section. is_user_edited is always reset to false:
// a regenerate replaces the section with fresh model output.
func (o *Orchestrator) Regenerate(ctx context.Context, originalContent, refinementPrompt string, docIDs []string) (RegenerateResult, error) {
	start := time.Now()

	query := refinementPrompt
	if query == "" {
		query = originalContent
	}
	ic := intent.Classify(query)

	retrievalStart := time.Now()
	result, err := o.retrieve(ctx, query, docIDs, ic, false)
	if err != nil {
		return RegenerateResult{}, err
	}
	retrievalMS := time.Since(retrievalStart).Milliseconds()

	assembled := promptassembler.RegenerationPrompt(originalContent, refinementPrompt, result.Sources, result.Coverage)
	modelID := o.models.For(ic.Intent)

	genStart := time.Now()
	raw, err := o.generator.Generate(ctx, assembled.System, assembled.User, modelID)
	if err != nil {
		return RegenerateResult{}, err
	}
	genMS := time.Since(genStart).Milliseconds()

	qualityWarnings := retrieval.QualityWarnings(result.Sources)
	allWarnings := append(append([]string{}, result.Warnings...), qualityWarnings...)
	sections := validator.ValidateSections(raw, result.Sources, result.Coverage, allWarnings)
	section := sections[0]
	section.IsUserEdited = false

	return RegenerateResult{
		Section: section,
		RetrievalMetadata: RetrievalMetadata{
			Intent:              ic,
			Coverage:            result.Coverage,
			RetrievalConfidence: retrieval.GradeRetrievalConfidence(result.Sources),
			Warnings:            allWarnings,
		},
		Timings: Timings{RetrievalMS: retrievalMS, GenerationMS: genMS, TotalMS: time.Since(start).Milliseconds()},
	}, nil
}
