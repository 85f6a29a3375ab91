package store

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/viant/ragvault/internal/model"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	s := NewConversationStore(t.TempDir())
	conv := &model.Conversation{
		ID:        "conv1",
		Title:     "My Chat",
		Messages:  []model.ChatMessage{model.NewChatMessage("m1", model.RoleUser, "hi", time.Now(), nil, nil)},
		UpdatedAt: time.Now(),
	}
	if err := s.Save(conv); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load("conv1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Title != "My Chat" {
		t.Errorf("Load title = %q, want %q", got.Title, "My Chat")
	}
	if diff := cmp.Diff(conv.Messages, got.Messages, cmpopts.EquateApproxTime(0)); diff != "" {
		t.Errorf("Load messages mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadAllSkipsMissingFiles(t *testing.T) {
	s := NewConversationStore(t.TempDir())
	conv := &model.Conversation{ID: "conv1", Title: "t", UpdatedAt: time.Now()}
	s.Save(conv)

	all, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(all) != 1 || all[0].ID != "conv1" {
		t.Errorf("LoadAll = %+v, want [conv1]", all)
	}
}

func TestListSummariesReflectsSavedConversations(t *testing.T) {
	s := NewConversationStore(t.TempDir())
	s.Save(&model.Conversation{ID: "conv1", Title: "A", Messages: []model.ChatMessage{{}, {}}, UpdatedAt: time.Now()})
	s.Save(&model.Conversation{ID: "conv2", Title: "B", UpdatedAt: time.Now()})

	summaries, err := s.ListSummaries()
	if err != nil {
		t.Fatalf("ListSummaries: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("ListSummaries = %d entries, want 2", len(summaries))
	}
}

func TestDeleteRemovesConversationAndIndexEntry(t *testing.T) {
	s := NewConversationStore(t.TempDir())
	s.Save(&model.Conversation{ID: "conv1", Title: "A", UpdatedAt: time.Now()})

	if err := s.Delete("conv1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load("conv1"); err == nil {
		t.Error("Load after Delete should fail")
	}
	summaries, err := s.ListSummaries()
	if err != nil {
		t.Fatalf("ListSummaries: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("ListSummaries after Delete = %v, want empty", summaries)
	}
}

func TestDeleteIsIdempotentForUnknownID(t *testing.T) {
	s := NewConversationStore(t.TempDir())
	if err := s.Delete("never-existed"); err != nil {
		t.Fatalf("Delete(unknown) = %v, want nil", err)
	}
}
