package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/daniel-SCAU/oldAIagent/internal/store"
)

// countingBackend holds messages in memory and counts the rows each
// search path examines, so tests can compare the work done by the
// indexed and scan paths.
type countingBackend struct {
	messages []store.Message
	indexed  bool
	probeErr error

	probes       int
	rowsExamined int
	indexedCalls int
	scanCalls    int
}

func (b *countingBackend) HasSearchIndex(_ context.Context) (bool, error) {
	b.probes++
	if b.probeErr != nil {
		return false, b.probeErr
	}
	return b.indexed, nil
}

func (b *countingBackend) SearchIndexed(_ context.Context, tsquery string, limit int) ([]store.Message, error) {
	b.indexedCalls++
	// An index only touches matching rows.
	tokens := strings.Split(tsquery, " & ")
	var out []store.Message
	for _, m := range b.messages {
		lower := strings.ToLower(m.Text)
		match := true
		for _, tok := range tokens {
			if !strings.Contains(lower, tok) {
				match = false
				break
			}
		}
		if match {
			b.rowsExamined++
			out = append(out, m)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (b *countingBackend) SearchScan(_ context.Context, term string, limit int) ([]store.Message, error) {
	b.scanCalls++
	var out []store.Message
	for _, m := range b.messages {
		b.rowsExamined++
		if strings.Contains(strings.ToLower(m.Text), strings.ToLower(term)) {
			out = append(out, m)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func corpus(n int) []store.Message {
	msgs := make([]store.Message, n)
	for i := range msgs {
		msgs[i] = store.Message{ID: int64(i + 1), Text: "ordinary chatter"}
	}
	msgs[n/2].Text = "the needle message"
	return msgs
}

func TestSearch_IndexedExaminesFewerRows(t *testing.T) {
	indexed := &countingBackend{messages: corpus(101), indexed: true}
	scan := &countingBackend{messages: corpus(101), indexed: false}

	rIndexed := NewResolver(indexed, discard())
	rScan := NewResolver(scan, discard())

	got1, err := rIndexed.Search(context.Background(), "needle", 10)
	if err != nil {
		t.Fatalf("indexed search: %v", err)
	}
	got2, err := rScan.Search(context.Background(), "needle", 10)
	if err != nil {
		t.Fatalf("scan search: %v", err)
	}

	if len(got1) != 1 || len(got2) != 1 {
		t.Fatalf("expected 1 hit on both paths, got %d and %d", len(got1), len(got2))
	}
	if indexed.rowsExamined >= scan.rowsExamined {
		t.Errorf("indexed path examined %d rows, scan examined %d; expected fewer on the indexed path",
			indexed.rowsExamined, scan.rowsExamined)
	}
}

func TestSearch_FallsBackToScanWithoutIndex(t *testing.T) {
	b := &countingBackend{messages: corpus(5), indexed: false}
	r := NewResolver(b, discard())

	got, err := r.Search(context.Background(), "needle", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(got))
	}
	if b.indexedCalls != 0 || b.scanCalls != 1 {
		t.Errorf("expected only the scan path, got indexed=%d scan=%d", b.indexedCalls, b.scanCalls)
	}
}

func TestSearch_ProbeCachedAcrossQueries(t *testing.T) {
	b := &countingBackend{messages: corpus(5), indexed: true}
	r := NewResolver(b, discard())

	for i := 0; i < 3; i++ {
		if _, err := r.Search(context.Background(), "needle", 10); err != nil {
			t.Fatalf("search %d: %v", i, err)
		}
	}
	if b.probes != 1 {
		t.Errorf("expected 1 capability probe, got %d", b.probes)
	}
}

func TestSearch_FailedProbeRetried(t *testing.T) {
	b := &countingBackend{messages: corpus(5), indexed: true, probeErr: errors.New("db down")}
	r := NewResolver(b, discard())

	if _, err := r.Search(context.Background(), "needle", 10); err == nil {
		t.Fatal("expected error while probe fails")
	}

	b.probeErr = nil
	got, err := r.Search(context.Background(), "needle", 10)
	if err != nil {
		t.Fatalf("expected recovery after probe succeeds, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(got))
	}
	if b.probes != 2 {
		t.Errorf("expected probe retried once, got %d probes", b.probes)
	}
}

func TestTSQuery(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"hello", "hello"},
		{"Hello World", "hello & world"},
		{"  spaced   out  ", "spaced & out"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := TSQuery(tc.in); got != tc.want {
			t.Errorf("TSQuery(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
