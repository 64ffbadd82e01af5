package classify

import (
	"context"
	"strings"
)

var taskKeywords = []string{
	"please", "can you", "could you", "todo", "kindly", "follow up",
}

var positiveKeywords = []string{
	"love", "great", "good", "thanks", "thank you", "awesome",
	"excellent", "happy", "wonderful",
}

var negativeKeywords = []string{
	"terrible", "bad", "hate", "awful", "angry", "horrible",
	"problem", "broken", "sad",
}

// Heuristic is the local fallback classifier: plain case-insensitive
// substring rules, no network.
type Heuristic struct{}

func (Heuristic) Classify(_ context.Context, text string) Result {
	return Result{
		Intent:    heuristicIntent(text),
		Sentiment: heuristicSentiment(text),
	}
}

func heuristicIntent(text string) string {
	if strings.Contains(text, "?") {
		return IntentQuestion
	}
	lower := strings.ToLower(text)
	for _, kw := range taskKeywords {
		if strings.Contains(lower, kw) {
			return IntentTask
		}
	}
	return IntentStatement
}

func heuristicSentiment(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range positiveKeywords {
		if strings.Contains(lower, kw) {
			return SentimentPositive
		}
	}
	for _, kw := range negativeKeywords {
		if strings.Contains(lower, kw) {
			return SentimentNegative
		}
	}
	return SentimentNeutral
}
