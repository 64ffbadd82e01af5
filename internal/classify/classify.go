// Package classify assigns intent and sentiment labels to message
// text, either via the remote LLM or a local keyword heuristic.
package classify

import "context"

// Intent labels.
const (
	IntentQuestion  = "question"
	IntentTask      = "task"
	IntentStatement = "statement"
)

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Result carries both labels for one message.
type Result struct {
	Intent    string `json:"intent"`
	Sentiment string `json:"sentiment"`
}

// Classifier labels a message. Implementations never fail: the remote
// variant falls back to the heuristic one on any upstream problem, so a
// classification tick always produces labels for every row it selected.
type Classifier interface {
	Classify(ctx context.Context, text string) Result
}

func validIntent(s string) bool {
	return s == IntentQuestion || s == IntentTask || s == IntentStatement
}

func validSentiment(s string) bool {
	return s == SentimentPositive || s == SentimentNegative || s == SentimentNeutral
}
