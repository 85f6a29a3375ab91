package store

import (
	"os"
	"path/filepath"
	"time"

	"github.com/viant/ragvault/internal/model"
)

// ConversationSummary is the index.json projection of a Conversation:
// {title, updated_at, message_count} per the persisted layout.
type ConversationSummary struct {
	ConversationID string    `json:"conversation_id"`
	Title          string    `json:"title"`
	UpdatedAt      time.Time `json:"updated_at"`
	MessageCount   int       `json:"message_count"`
}

// ConversationStore is a file-based conversation persistence layer,
// mirroring the Document Registry's file-per-entity-plus-index pattern.
type ConversationStore struct {
	dir string
}

func NewConversationStore(dir string) *ConversationStore {
	return &ConversationStore{dir: dir}
}

func (s *ConversationStore) path(id string) string  { return filepath.Join(s.dir, id+".json") }
func (s *ConversationStore) indexPath() string       { return filepath.Join(s.dir, "index.json") }

// Save writes the full conversation and refreshes the index entry for it.
func (s *ConversationStore) Save(conv *model.Conversation) error {
	if err := WriteJSONAtomic(s.path(conv.ID), conv); err != nil {
		return err
	}
	summaries, err := s.loadIndex()
	if err != nil {
		return err
	}
	summaries[conv.ID] = ConversationSummary{
		ConversationID: conv.ID,
		Title:          conv.Title,
		UpdatedAt:      conv.UpdatedAt,
		MessageCount:   len(conv.Messages),
	}
	return s.saveIndex(summaries)
}

// Load reads one conversation by id.
func (s *ConversationStore) Load(id string) (*model.Conversation, error) {
	var conv model.Conversation
	if err := ReadJSON(s.path(id), &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// LoadAll reads every conversation referenced by the index, skipping any
// whose file is missing or unreadable.
func (s *ConversationStore) LoadAll() ([]*model.Conversation, error) {
	summaries, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	out := make([]*model.Conversation, 0, len(summaries))
	for id := range summaries {
		conv, err := s.Load(id)
		if err != nil {
			continue
		}
		out = append(out, conv)
	}
	return out, nil
}

// ListSummaries returns the index without reading individual files.
func (s *ConversationStore) ListSummaries() ([]ConversationSummary, error) {
	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	out := make([]ConversationSummary, 0, len(index))
	for _, sum := range index {
		out = append(out, sum)
	}
	return out, nil
}

// Delete drops the conversation file and its index entry. Idempotent.
func (s *ConversationStore) Delete(id string) error {
	_ = os.Remove(s.path(id))
	summaries, err := s.loadIndex()
	if err != nil {
		return err
	}
	delete(summaries, id)
	return s.saveIndex(summaries)
}

func (s *ConversationStore) loadIndex() (map[string]ConversationSummary, error) {
	var list []ConversationSummary
	if err := ReadJSON(s.indexPath(), &list); err != nil {
		if os.IsNotExist(err) {
			return map[string]ConversationSummary{}, nil
		}
		return nil, err
	}
	out := make(map[string]ConversationSummary, len(list))
	for _, sum := range list {
		out[sum.ConversationID] = sum
	}
	return out, nil
}

func (s *ConversationStore) saveIndex(summaries map[string]ConversationSummary) error {
	list := make([]ConversationSummary, 0, len(summaries))
	for _, sum := range summaries {
		list = append(list, sum)
	}
	return WithIndexLock(s.indexPath(), func() error {
		return WriteJSONAtomic(s.indexPath(), list)
	})
}
