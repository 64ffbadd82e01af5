//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestIntegration_MessageRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	conv := "it-" + uuid.NewString()[:8]

	rec, err := s.InsertMessage(ctx, NewMessage{
		Sender:         "alice",
		App:            "sms",
		Text:           "Please call me back. Thanks!",
		ConversationID: conv,
	}, []string{"Please call me back"})
	if err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}
	if rec.ID == 0 {
		t.Fatal("expected non-zero message id")
	}
	if rec.ConversationID != conv {
		t.Errorf("expected conversation %s, got %s", conv, rec.ConversationID)
	}

	msgs, err := s.ListConversation(ctx, conv, 10)
	if err != nil {
		t.Fatalf("ListConversation failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Intent != nil {
		t.Errorf("expected nil intent before classification, got %v", *msgs[0].Intent)
	}

	followups, err := s.ListFollowupTasks(ctx, conv)
	if err != nil {
		t.Fatalf("ListFollowupTasks failed: %v", err)
	}
	if len(followups) != 1 || followups[0].Task != "Please call me back" {
		t.Errorf("unexpected followups: %+v", followups)
	}
}

func TestIntegration_GeneratedConversationID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	rec, err := s.InsertMessage(ctx, NewMessage{Sender: "a", App: "sms", Text: "hi"}, nil)
	if err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}
	if rec.ConversationID == "" {
		t.Fatal("expected generated conversation id")
	}
	if _, err := uuid.Parse(rec.ConversationID); err != nil {
		t.Errorf("expected a UUID conversation id, got %q", rec.ConversationID)
	}
}

func TestIntegration_ClassificationLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	conv := "it-" + uuid.NewString()[:8]

	rec, err := s.InsertMessage(ctx, NewMessage{
		Sender: "bob", App: "whatsapp", Text: "Is this working?", ConversationID: conv,
	}, nil)
	if err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}

	unclassified, err := s.ListUnclassified(ctx, 500)
	if err != nil {
		t.Fatalf("ListUnclassified failed: %v", err)
	}
	found := false
	for _, m := range unclassified {
		if m.ID == rec.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the new message in the unclassified set")
	}

	if err := s.UpdateClassification(ctx, rec.ID, "question", "neutral", "question"); err != nil {
		t.Fatalf("UpdateClassification failed: %v", err)
	}

	unclassified, err = s.ListUnclassified(ctx, 500)
	if err != nil {
		t.Fatalf("ListUnclassified failed: %v", err)
	}
	for _, m := range unclassified {
		if m.ID == rec.ID {
			t.Fatal("classified message still selected")
		}
	}
}

func TestIntegration_SummaryTaskLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	conv := "it-" + uuid.NewString()[:8]

	task, err := s.CreateSummaryTask(ctx, conv)
	if err != nil {
		t.Fatalf("CreateSummaryTask failed: %v", err)
	}
	if task.Status != TaskPending {
		t.Errorf("expected pending, got %s", task.Status)
	}

	if err := s.CompleteSummaryTask(ctx, task.ID, "done"); err != nil {
		t.Fatalf("CompleteSummaryTask failed: %v", err)
	}
	got, err := s.GetSummaryTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetSummaryTask failed: %v", err)
	}
	if got.Status != TaskCompleted || got.Summary == nil || *got.Summary != "done" {
		t.Errorf("unexpected task after completion: %+v", got)
	}

	// Terminal states stay terminal.
	if err := s.FailSummaryTask(ctx, task.ID); err != nil {
		t.Fatalf("FailSummaryTask failed: %v", err)
	}
	got, _ = s.GetSummaryTask(ctx, task.ID)
	if got.Status != TaskCompleted {
		t.Errorf("completed task reverted to %s", got.Status)
	}

	if err := s.DeleteSummaryTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteSummaryTask failed: %v", err)
	}
	if err := s.DeleteSummaryTask(ctx, task.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestIntegration_SearchScan(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	conv := "it-" + uuid.NewString()[:8]
	needle := "zxq" + uuid.NewString()[:8]

	if _, err := s.InsertMessage(ctx, NewMessage{
		Sender: "a", App: "sms", Text: "contains the " + needle + " marker", ConversationID: conv,
	}, nil); err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}

	msgs, err := s.SearchScan(ctx, needle, 10)
	if err != nil {
		t.Fatalf("SearchScan failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(msgs))
	}
}
