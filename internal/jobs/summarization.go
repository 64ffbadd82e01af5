package jobs

import (
	"context"
	"log/slog"

	"github.com/daniel-SCAU/oldAIagent/internal/events"
	"github.com/daniel-SCAU/oldAIagent/internal/store"
	"github.com/daniel-SCAU/oldAIagent/internal/summarize"
)

// SummaryStore is the slice of the store the summarization job needs.
type SummaryStore interface {
	ListPendingSummaryTasks(ctx context.Context) ([]store.SummaryTask, error)
	ConversationLines(ctx context.Context, conversationID string) ([]store.ConversationLine, error)
	CompleteSummaryTask(ctx context.Context, id int64, summary string) error
	FailSummaryTask(ctx context.Context, id int64) error
}

// Summarization claims pending summary tasks each tick and resolves
// each one to completed or failed. One bad task must not stop the
// rest of the tick.
type Summarization struct {
	store      SummaryStore
	summarizer summarize.Summarizer
	events     *events.Publisher
	logger     *slog.Logger
}

func NewSummarization(s SummaryStore, sum summarize.Summarizer, pub *events.Publisher, logger *slog.Logger) *Summarization {
	return &Summarization{store: s, summarizer: sum, events: pub, logger: logger}
}

func (j *Summarization) Run(ctx context.Context) {
	tasks, err := j.store.ListPendingSummaryTasks(ctx)
	if err != nil {
		j.logger.Error("summary task scan failed", "error", err)
		return
	}

	for _, task := range tasks {
		if err := j.process(ctx, task); err != nil {
			j.logger.Error("summary task failed", "task_id", task.ID,
				"conversation_id", task.ConversationID, "error", err)
			if err := j.store.FailSummaryTask(ctx, task.ID); err != nil {
				j.logger.Error("failed to mark task failed", "task_id", task.ID, "error", err)
			}
			j.publish(events.SubjectSummaryFailed, task, "")
		}
	}

	if len(tasks) > 0 {
		j.logger.Info("summarization tick complete", "tasks", len(tasks))
	}
}

func (j *Summarization) process(ctx context.Context, task store.SummaryTask) error {
	rows, err := j.store.ConversationLines(ctx, task.ConversationID)
	if err != nil {
		return err
	}

	lines := make([]summarize.Line, len(rows))
	for i, r := range rows {
		lines[i] = summarize.Line{Sender: r.Sender, Text: r.Text}
	}

	summary, err := j.summarizer.Summarize(ctx, lines)
	if err != nil {
		return err
	}

	if err := j.store.CompleteSummaryTask(ctx, task.ID, summary); err != nil {
		return err
	}
	j.publish(events.SubjectSummaryCompleted, task, summary)
	return nil
}

func (j *Summarization) publish(subject string, task store.SummaryTask, summary string) {
	payload := map[string]any{
		"task_id":         task.ID,
		"conversation_id": task.ConversationID,
	}
	if summary != "" {
		payload["summary"] = summary
	}
	if err := j.events.Publish(subject, payload); err != nil {
		j.logger.Warn("event publish failed", "subject", subject, "error", err)
	}
}
