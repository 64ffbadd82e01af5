package jobs

import (
	"context"
	"log/slog"

	"github.com/daniel-SCAU/oldAIagent/internal/classify"
	"github.com/daniel-SCAU/oldAIagent/internal/store"
)

// ClassifyStore is the slice of the message store the classification
// job needs.
type ClassifyStore interface {
	ListUnclassified(ctx context.Context, limit int) ([]store.Message, error)
	UpdateClassification(ctx context.Context, id int64, intent, sentiment, category string) error
}

// Classification labels unclassified messages in batches. Repeated
// runs are safe: the selection predicate skips rows that already carry
// both labels, so an already-classified row is never rewritten.
type Classification struct {
	store      ClassifyStore
	classifier classify.Classifier
	batch      int
	logger     *slog.Logger
}

func NewClassification(s ClassifyStore, c classify.Classifier, batch int, logger *slog.Logger) *Classification {
	return &Classification{store: s, classifier: c, batch: batch, logger: logger}
}

func (j *Classification) Run(ctx context.Context) {
	msgs, err := j.store.ListUnclassified(ctx, j.batch)
	if err != nil {
		j.logger.Error("classification scan failed", "error", err)
		return
	}
	if len(msgs) == 0 {
		return
	}

	classified := 0
	for _, m := range msgs {
		res := j.classifier.Classify(ctx, m.Text)
		// Category mirrors intent; there is no separate taxonomy yet.
		if err := j.store.UpdateClassification(ctx, m.ID, res.Intent, res.Sentiment, res.Intent); err != nil {
			j.logger.Error("classification write failed", "message_id", m.ID, "error", err)
			continue
		}
		classified++
	}

	j.logger.Info("classification tick complete", "selected", len(msgs), "classified", classified)
}
