package model

import "time"

// ChatRole distinguishes user and assistant turns in a Conversation.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of a Conversation. Assistant messages carry the
// full metadata contract of a GeneratedSection via Sections.
type ChatMessage struct {
	ID           string             `json:"id"`
	Role         ChatRole           `json:"role"`
	Content      string             `json:"content"`
	Timestamp    time.Time          `json:"timestamp"`
	SourcesUsed  []SourceRef        `json:"sources_used"`
	Sections     []GeneratedSection `json:"sections,omitempty"`
}

// NewChatMessage guarantees SourcesUsed is a non-nil slice.
func NewChatMessage(id string, role ChatRole, content string, ts time.Time, sources []SourceRef, sections []GeneratedSection) ChatMessage {
	if sources == nil {
		sources = []SourceRef{}
	}
	return ChatMessage{
		ID:          id,
		Role:        role,
		Content:     content,
		Timestamp:   ts,
		SourcesUsed: sources,
		Sections:    sections,
	}
}

// Conversation owns its ChatMessages exclusively. updated_at is monotone;
// title is derived from the first user message when unset at creation time.
type Conversation struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Messages          []ChatMessage      `json:"messages"`
	DocumentIDs       []string           `json:"document_ids,omitempty"`
	CumulativeCoverage *CoverageDescriptor `json:"cumulative_coverage,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// TitleFromMessage truncates s to at most 80 runes, the rule used to derive
// a conversation title from the first user message when no title is set.
func TitleFromMessage(s string) string {
	r := []rune(s)
	if len(r) <= 80 {
		return s
	}
	return string(r[:80])
}
