package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Summary task statuses. Transitions are monotone: pending moves to
// completed or failed exactly once and never reverts.
const (
	TaskPending   = "pending"
	TaskCompleted = "completed"
	TaskFailed    = "failed"
)

// SummaryTask is one queued summarization request.
type SummaryTask struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Status         string    `json:"status"`
	Summary        *string   `json:"summary,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// FollowupTask is one actionable sentence extracted at ingestion time.
type FollowupTask struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Task           string    `json:"task"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

const taskColumns = `id, conversation_id, status, summary, created_at`

// CreateSummaryTask enqueues a summarization request. The conversation
// is not validated to exist; a task against an empty conversation just
// summarizes to an empty string.
func (s *Store) CreateSummaryTask(ctx context.Context, conversationID string) (SummaryTask, error) {
	if err := s.ready(); err != nil {
		return SummaryTask{}, err
	}
	var t SummaryTask
	err := s.pool.QueryRow(ctx, `
		INSERT INTO summary_tasks (conversation_id)
		VALUES ($1)
		RETURNING `+taskColumns,
		conversationID,
	).Scan(&t.ID, &t.ConversationID, &t.Status, &t.Summary, &t.CreatedAt)
	if err != nil {
		return SummaryTask{}, fmt.Errorf("insert summary task: %w", err)
	}
	return t, nil
}

func (s *Store) ListSummaryTasks(ctx context.Context) ([]SummaryTask, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.queryTasks(ctx, `
		SELECT `+taskColumns+`
		FROM summary_tasks
		ORDER BY id ASC`)
}

// ListPendingSummaryTasks returns pending tasks in creation order.
func (s *Store) ListPendingSummaryTasks(ctx context.Context) ([]SummaryTask, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.queryTasks(ctx, `
		SELECT `+taskColumns+`
		FROM summary_tasks
		WHERE status = 'pending'
		ORDER BY id ASC`)
}

func (s *Store) GetSummaryTask(ctx context.Context, id int64) (SummaryTask, error) {
	if err := s.ready(); err != nil {
		return SummaryTask{}, err
	}
	var t SummaryTask
	err := s.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM summary_tasks
		WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.ConversationID, &t.Status, &t.Summary, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SummaryTask{}, ErrNotFound
	}
	if err != nil {
		return SummaryTask{}, fmt.Errorf("get summary task: %w", err)
	}
	return t, nil
}

func (s *Store) DeleteSummaryTask(ctx context.Context, id int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM summary_tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete summary task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteSummaryTask moves a pending task to completed with its
// summary. The status guard keeps terminal states terminal.
func (s *Store) CompleteSummaryTask(ctx context.Context, id int64, summary string) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE summary_tasks SET status = 'completed', summary = $1
		WHERE id = $2 AND status = 'pending'`,
		summary, id,
	)
	if err != nil {
		return fmt.Errorf("complete summary task: %w", err)
	}
	return nil
}

// FailSummaryTask moves a pending task to failed. No summary is set.
func (s *Store) FailSummaryTask(ctx context.Context, id int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE summary_tasks SET status = 'failed'
		WHERE id = $1 AND status = 'pending'`,
		id,
	)
	if err != nil {
		return fmt.Errorf("fail summary task: %w", err)
	}
	return nil
}

// ListFollowupTasks returns extracted followup tasks, newest last.
func (s *Store) ListFollowupTasks(ctx context.Context, conversationID string) ([]FollowupTask, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, conversation_id, task, status, created_at
		FROM followup_tasks
		WHERE conversation_id = $1
		ORDER BY id ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query followup tasks: %w", err)
	}
	defer rows.Close()

	var out []FollowupTask
	for rows.Next() {
		var t FollowupTask
		if err := rows.Scan(&t.ID, &t.ConversationID, &t.Task, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan followup task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (s *Store) queryTasks(ctx context.Context, sql string) ([]SummaryTask, error) {
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query summary tasks: %w", err)
	}
	defer rows.Close()

	var out []SummaryTask
	for rows.Next() {
		var t SummaryTask
		if err := rows.Scan(&t.ID, &t.ConversationID, &t.Status, &t.Summary, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan summary task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}
