package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

const classifyPrompt = `Classify the following message. Respond with a JSON object with exactly two keys:
"intent" (one of: question, task, statement) and
"sentiment" (one of: positive, negative, neutral).

Message:
%s`

// Generator produces one text answer for one prompt. *mygpt.Client
// satisfies this.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Remote classifies via the LLM and falls back to the local heuristic
// on any failure: transport error, malformed JSON, or labels outside
// the allowed sets. Failures are logged, never surfaced as errors.
type Remote struct {
	llm      Generator
	fallback Heuristic
	logger   *slog.Logger
}

func NewRemote(llm Generator, logger *slog.Logger) *Remote {
	return &Remote{llm: llm, logger: logger}
}

func (r *Remote) Classify(ctx context.Context, text string) Result {
	raw, err := r.llm.Generate(ctx, fmt.Sprintf(classifyPrompt, text))
	if err != nil {
		r.logger.Warn("remote classification failed, using heuristic", "error", err)
		return r.fallback.Classify(ctx, text)
	}

	res, ok := parseResult(raw)
	if !ok {
		r.logger.Warn("unusable classification response, using heuristic", "response", raw)
		return r.fallback.Classify(ctx, text)
	}
	return res
}

// parseResult accepts either a bare JSON object or one embedded in
// surrounding prose (models like to add preambles).
func parseResult(raw string) (Result, bool) {
	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start < 0 || end <= start {
			return Result{}, false
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &res); err != nil {
			return Result{}, false
		}
	}
	res.Intent = strings.ToLower(strings.TrimSpace(res.Intent))
	res.Sentiment = strings.ToLower(strings.TrimSpace(res.Sentiment))
	if !validIntent(res.Intent) || !validSentiment(res.Sentiment) {
		return Result{}, false
	}
	return res, true
}
