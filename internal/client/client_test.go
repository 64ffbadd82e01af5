package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func fakeAPI(t *testing.T, tasks []SummaryTask) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/tasks":
			json.NewEncoder(w).Encode(tasks)
		case r.Method == http.MethodPost && r.URL.Path == "/suggestions":
			json.NewEncoder(w).Encode(map[string][]string{"suggestions": {"Sure!", "On my way"}})
		case r.Method == http.MethodGet && r.URL.Path == "/search":
			json.NewEncoder(w).Encode([]map[string]any{{"id": 1, "message": "hit"}})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "not_found"})
		}
	}))
}

func strp(s string) *string { return &s }

func TestListConversations_DistinctSorted(t *testing.T) {
	server := fakeAPI(t, []SummaryTask{
		{ID: 1, ConversationID: "conv-b", Status: "pending"},
		{ID: 2, ConversationID: "conv-a", Status: "completed"},
		{ID: 3, ConversationID: "conv-b", Status: "completed"},
	})
	defer server.Close()

	c := New(server.URL, "test-key")
	ids, err := c.ListConversations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "conv-a" || ids[1] != "conv-b" {
		t.Errorf("unexpected conversations: %v", ids)
	}
}

func TestGetSummary_LatestCompleted(t *testing.T) {
	server := fakeAPI(t, []SummaryTask{
		{ID: 1, ConversationID: "conv-a", Status: "completed", Summary: strp("old summary")},
		{ID: 2, ConversationID: "conv-a", Status: "completed", Summary: strp("new summary")},
		{ID: 3, ConversationID: "conv-a", Status: "pending"},
	})
	defer server.Close()

	c := New(server.URL, "test-key")
	got, err := c.GetSummary(context.Background(), "conv-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "new summary" {
		t.Errorf("expected latest completed summary, got %q", got)
	}
}

func TestGetSummary_NoneCompleted(t *testing.T) {
	server := fakeAPI(t, []SummaryTask{
		{ID: 1, ConversationID: "conv-a", Status: "pending"},
	})
	defer server.Close()

	c := New(server.URL, "test-key")
	if _, err := c.GetSummary(context.Background(), "conv-a"); err == nil {
		t.Fatal("expected error when no completed summary exists")
	}
}

func TestRequestSuggestions(t *testing.T) {
	server := fakeAPI(t, nil)
	defer server.Close()

	c := New(server.URL, "test-key")
	got, err := c.RequestSuggestions(context.Background(), "conv-a", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "Sure!" {
		t.Errorf("unexpected suggestions: %v", got)
	}
}

func TestErrorKindSurfaced(t *testing.T) {
	server := fakeAPI(t, nil)
	defer server.Close()

	c := New(server.URL, "wrong-key")
	_, err := c.ListTasks(context.Background())
	if err == nil {
		t.Fatal("expected error with wrong key")
	}
}
