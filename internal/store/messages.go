package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is one normalized row in the chat table. Intent, sentiment
// and category stay nil until the classification job visits the row.
type Message struct {
	ID             int64      `json:"id"`
	ConversationID string     `json:"conversation_id"`
	Sender         string     `json:"sender"`
	App            string     `json:"app"`
	Text           string     `json:"message"`
	CreatedAt      time.Time  `json:"created_at"`
	ContactID      *int64     `json:"contact_id,omitempty"`
	Category       *string    `json:"category,omitempty"`
	Intent         *string    `json:"intent,omitempty"`
	Sentiment      *string    `json:"sentiment,omitempty"`
	MessageType    *string    `json:"message_type,omitempty"`
	ThreadKey      *string    `json:"thread_key,omitempty"`
}

// NewMessage is the insert shape for an inbound message.
type NewMessage struct {
	Sender         string
	App            string
	Text           string
	ConversationID string // generated when empty
	ContactID      *int64
}

// MessageReceipt is returned to the caller after a successful insert.
type MessageReceipt struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConversationLine is the sender-prefixed projection used by the
// summarizer and the suggestions prompt.
type ConversationLine struct {
	Sender string
	Text   string
}

const messageColumns = `id, conversation_id, sender, app, message, created_at,
	contact_id, category, intent, sentiment, message_type, thread_key`

// InsertMessage stores one message plus its extracted followup tasks in
// a single transaction, so a task row never references a message that
// was rolled back.
func (s *Store) InsertMessage(ctx context.Context, msg NewMessage, followups []string) (MessageReceipt, error) {
	if err := s.ready(); err != nil {
		return MessageReceipt{}, err
	}

	convID := msg.ConversationID
	if convID == "" {
		convID = uuid.NewString()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return MessageReceipt{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var rec MessageReceipt
	err = tx.QueryRow(ctx, `
		INSERT INTO chat (sender, app, message, conversation_id, contact_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, conversation_id, created_at`,
		msg.Sender, msg.App, msg.Text, convID, msg.ContactID,
	).Scan(&rec.ID, &rec.ConversationID, &rec.CreatedAt)
	if err != nil {
		return MessageReceipt{}, fmt.Errorf("insert message: %w", err)
	}

	for _, task := range followups {
		_, err = tx.Exec(ctx, `
			INSERT INTO followup_tasks (conversation_id, task)
			VALUES ($1, $2)`,
			rec.ConversationID, task,
		)
		if err != nil {
			return MessageReceipt{}, fmt.Errorf("insert followup task: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return MessageReceipt{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// ListConversation returns a conversation's messages oldest first.
func (s *Store) ListConversation(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM chat
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2`,
		conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// ConversationLines returns sender/message pairs oldest first, the
// projection the summarizer and suggestion prompts are built from.
func (s *Store) ConversationLines(ctx context.Context, conversationID string) ([]ConversationLine, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT sender, message
		FROM chat
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversation lines: %w", err)
	}
	defer rows.Close()

	var lines []ConversationLine
	for rows.Next() {
		var l ConversationLine
		if err := rows.Scan(&l.Sender, &l.Text); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return lines, nil
}

// ListUnclassified selects rows the classification job still has to
// visit. Fully classified rows never match, which is what makes
// repeated ticks idempotent.
func (s *Store) ListUnclassified(ctx context.Context, limit int) ([]Message, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM chat
		WHERE intent IS NULL OR sentiment IS NULL
		ORDER BY id ASC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query unclassified: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// UpdateClassification writes intent, sentiment and category back to a row.
func (s *Store) UpdateClassification(ctx context.Context, id int64, intent, sentiment, category string) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE chat SET intent = $1, sentiment = $2, category = $3
		WHERE id = $4`,
		intent, sentiment, category, id,
	)
	if err != nil {
		return fmt.Errorf("update classification: %w", err)
	}
	return nil
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanMessages(rows pgxRows) ([]Message, error) {
	var out []Message
	for rows.Next() {
		var m Message
		err := rows.Scan(
			&m.ID, &m.ConversationID, &m.Sender, &m.App, &m.Text, &m.CreatedAt,
			&m.ContactID, &m.Category, &m.Intent, &m.Sentiment, &m.MessageType, &m.ThreadKey,
		)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}
