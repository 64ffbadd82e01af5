package summarize

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (f *fakeGenerator) Generate(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.response, f.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLocal_Empty(t *testing.T) {
	got, err := Local{}.Summarize(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty summary, got %q", got)
	}
}

func TestLocal_SingleMessage(t *testing.T) {
	got, err := Local{}.Summarize(context.Background(), []Line{{Sender: "alice", Text: "Hello"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hello" {
		t.Errorf("expected verbatim single message, got %q", got)
	}
}

func TestLocal_FirstAndLast(t *testing.T) {
	lines := []Line{
		{Sender: "alice", Text: "Hello"},
		{Sender: "bob", Text: "How are you"},
		{Sender: "alice", Text: "Bye"},
	}
	got, err := Local{}.Summarize(context.Background(), lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hello ... Bye" {
		t.Errorf("expected %q, got %q", "Hello ... Bye", got)
	}
}

func TestRemote_TrimsResponse(t *testing.T) {
	gen := &fakeGenerator{response: "  They greeted each other.\n"}
	r := NewRemote(gen, discard())

	got, err := r.Summarize(context.Background(), []Line{
		{Sender: "alice", Text: "Hello"},
		{Sender: "bob", Text: "Hi"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "They greeted each other." {
		t.Errorf("expected trimmed LLM summary, got %q", got)
	}
	if gen.calls != 1 {
		t.Errorf("expected 1 LLM call, got %d", gen.calls)
	}
}

func TestRemote_FallsBackOnError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream down")}
	r := NewRemote(gen, discard())

	lines := []Line{
		{Sender: "alice", Text: "Hello"},
		{Sender: "bob", Text: "How are you"},
		{Sender: "alice", Text: "Bye"},
	}
	got, err := r.Summarize(context.Background(), lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hello ... Bye" {
		t.Errorf("expected local fallback summary, got %q", got)
	}
}

func TestRemote_EmptyConversationSkipsLLM(t *testing.T) {
	gen := &fakeGenerator{response: "should not be used"}
	r := NewRemote(gen, discard())

	got, err := r.Summarize(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty summary, got %q", got)
	}
	if gen.calls != 0 {
		t.Errorf("expected no LLM calls for empty conversation, got %d", gen.calls)
	}
}

func TestTranscript(t *testing.T) {
	got := Transcript([]Line{
		{Sender: "alice", Text: "Hello"},
		{Sender: "bob", Text: "Hi"},
	})
	want := "alice: Hello\nbob: Hi\n"
	if got != want {
		t.Errorf("Transcript = %q, want %q", got, want)
	}
}
