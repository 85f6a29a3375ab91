// Package chat implements the Chat Controller: bounded history window,
// cumulative coverage across turns, and optimistic message bookkeeping.
package chat

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/viant/ragvault/internal/model"
)

// Controller owns every Conversation exclusively, guarded by a per-process
// map lock plus one lock per conversation id so at most one generation is
// in flight per conversation at a time.
type Controller struct {
	mu            sync.RWMutex
	conversations map[string]*model.Conversation
	locks         map[string]*sync.Mutex

	historyTurns    int
	maxHistoryChars int
}

func New(historyTurns, maxHistoryChars int) *Controller {
	return &Controller{
		conversations:   make(map[string]*model.Conversation),
		locks:           make(map[string]*sync.Mutex),
		historyTurns:    historyTurns,
		maxHistoryChars: maxHistoryChars,
	}
}

// LoadAll seeds the controller's in-memory cache, used at startup after
// reading every conversation file back from disk.
func (c *Controller) LoadAll(conversations []*model.Conversation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, conv := range conversations {
		c.conversations[conv.ID] = conv
	}
}

// Lock returns the per-conversation mutex, creating it if needed.
func (c *Controller) Lock(conversationID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[conversationID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[conversationID] = l
	}
	return l
}

// GetOrCreate returns the conversation for id, or creates a new one when id
// is empty or unknown.
func (c *Controller) GetOrCreate(conversationID string, documentIDs []string, now time.Time) *model.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if conversationID != "" {
		if conv, ok := c.conversations[conversationID]; ok {
			return conv
		}
	}
	conv := &model.Conversation{
		ID:          uuid.NewString(),
		Messages:    []model.ChatMessage{},
		DocumentIDs: documentIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c.conversations[conv.ID] = conv
	return conv
}

// Get returns the conversation for id.
func (c *Controller) Get(id string) (*model.Conversation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	conv, ok := c.conversations[id]
	return conv, ok
}

// List returns every conversation, for the summary listing endpoint.
func (c *Controller) List() []*model.Conversation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*model.Conversation, 0, len(c.conversations))
	for _, conv := range c.conversations {
		out = append(out, conv)
	}
	return out
}

// Delete removes id from the cache. Idempotent: deleting an absent id is
// not an error.
func (c *Controller) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.conversations, id)
	delete(c.locks, id)
}

// Rename sets conv's title.
func (c *Controller) Rename(id, title string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	conv, ok := c.conversations[id]
	if !ok {
		return false
	}
	conv.Title = title
	conv.UpdatedAt = now
	return true
}

// HistoryWindow is the bounded, character-budgeted context window built
// from a conversation's recent turns.
type HistoryWindow struct {
	Blocks           []string
	MessageCount     int
	Truncated        bool
}

// BuildHistoryWindow flattens the last historyTurns user/assistant pairs
// into alternating role-tagged blocks, dropping oldest whole turns first
// when the character budget is exceeded. Truncation never splits a turn.
func (c *Controller) BuildHistoryWindow(conv *model.Conversation) HistoryWindow {
	turns := pairTurns(conv.Messages)
	if len(turns) > c.historyTurns {
		turns = turns[len(turns)-c.historyTurns:]
	}

	truncated := false
	for {
		blocks, total := renderTurns(turns)
		if total <= c.maxHistoryChars || len(turns) <= 1 {
			return HistoryWindow{Blocks: blocks, MessageCount: countMessages(turns), Truncated: truncated}
		}
		turns = turns[1:]
		truncated = true
	}
}

type turn struct {
	user      *model.ChatMessage
	assistant *model.ChatMessage
}

func pairTurns(messages []model.ChatMessage) []turn {
	var turns []turn
	var pending *model.ChatMessage
	for i := range messages {
		m := &messages[i]
		switch m.Role {
		case model.RoleUser:
			if pending != nil {
				turns = append(turns, turn{user: pending})
			}
			pending = m
		case model.RoleAssistant:
			if pending != nil {
				turns = append(turns, turn{user: pending, assistant: m})
				pending = nil
			} else {
				turns = append(turns, turn{assistant: m})
			}
		}
	}
	if pending != nil {
		turns = append(turns, turn{user: pending})
	}
	return turns
}

func renderTurns(turns []turn) ([]string, int) {
	var blocks []string
	total := 0
	for _, t := range turns {
		if t.user != nil {
			b := "USER: " + t.user.Content
			blocks = append(blocks, b)
			total += len(b)
		}
		if t.assistant != nil {
			b := "ASSISTANT: " + t.assistant.Content
			blocks = append(blocks, b)
			total += len(b)
		}
	}
	return blocks, total
}

func countMessages(turns []turn) int {
	n := 0
	for _, t := range turns {
		if t.user != nil {
			n++
		}
		if t.assistant != nil {
			n++
		}
	}
	return n
}

// AugmentQuery builds the retrieval query from the new message plus a
// light, character-capped summary of prior user turns, so a follow-up
// question inherits the topic context of earlier turns.
func AugmentQuery(conv *model.Conversation, message string, maxPriorChars int) string {
	var priorUser []string
	for _, m := range conv.Messages {
		if m.Role == model.RoleUser {
			priorUser = append(priorUser, m.Content)
		}
	}
	if len(priorUser) == 0 {
		return message
	}
	summary := strings.Join(priorUser, " ")
	if len(summary) > maxPriorChars {
		summary = summary[:maxPriorChars]
	}
	return message + " " + summary
}

// AppendTurn atomically appends the user and assistant messages, updates
// updated_at, and derives the title from the first user message if unset.
func (c *Controller) AppendTurn(conv *model.Conversation, userContent string, assistantContent string, sections []model.GeneratedSection, sourcesUsed []model.SourceRef, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	userMsg := model.NewChatMessage(uuid.NewString(), model.RoleUser, userContent, now, nil, nil)
	assistantMsg := model.NewChatMessage(uuid.NewString(), model.RoleAssistant, assistantContent, now, sourcesUsed, sections)

	conv.Messages = append(conv.Messages, userMsg, assistantMsg)
	conv.UpdatedAt = now
	if conv.Title == "" {
		conv.Title = model.TitleFromMessage(userContent)
	}
}

// CumulativeChunkIDs returns the union of chunk ids referenced across every
// message in the conversation.
func CumulativeChunkIDs(conv *model.Conversation) []string {
	seen := map[string]bool{}
	var ids []string
	for _, m := range conv.Messages {
		for _, s := range m.SourcesUsed {
			if !seen[s.ChunkID] {
				seen[s.ChunkID] = true
				ids = append(ids, s.ChunkID)
			}
		}
	}
	return ids
}
