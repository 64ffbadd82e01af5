// Package summarize condenses a conversation's messages into a single
// string, via the remote LLM with a deterministic local fallback.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const summaryPrompt = "Summarize the following conversation:\n%s"

// Line is one sender-attributed message in conversation order.
type Line struct {
	Sender string
	Text   string
}

// Summarizer turns an ordered conversation into one string.
type Summarizer interface {
	Summarize(ctx context.Context, lines []Line) (string, error)
}

// Generator produces one text answer for one prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Local is the no-network fallback: zero messages summarize to the
// empty string, one message is returned verbatim, anything longer is
// collapsed to its first and last message.
type Local struct{}

func (Local) Summarize(_ context.Context, lines []Line) (string, error) {
	switch len(lines) {
	case 0:
		return "", nil
	case 1:
		return lines[0].Text, nil
	default:
		return lines[0].Text + " ... " + lines[len(lines)-1].Text, nil
	}
}

// Remote summarizes via the LLM. Any upstream failure or empty
// conversation falls back to Local; the failure is logged so it is
// visible, but the task still gets a usable summary.
type Remote struct {
	llm      Generator
	fallback Local
	logger   *slog.Logger
}

func NewRemote(llm Generator, logger *slog.Logger) *Remote {
	return &Remote{llm: llm, logger: logger}
}

func (r *Remote) Summarize(ctx context.Context, lines []Line) (string, error) {
	if len(lines) == 0 {
		return r.fallback.Summarize(ctx, lines)
	}

	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	prompt := fmt.Sprintf(summaryPrompt, strings.Join(texts, "\n"))

	raw, err := r.llm.Generate(ctx, prompt)
	if err != nil {
		r.logger.Warn("remote summarization failed, using fallback", "error", err)
		return r.fallback.Summarize(ctx, lines)
	}
	return strings.TrimSpace(raw), nil
}

// Transcript renders lines as "sender: text" blocks for prompts that
// need speaker attribution, like reply suggestions.
func Transcript(lines []Line) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.Sender)
		sb.WriteString(": ")
		sb.WriteString(l.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
