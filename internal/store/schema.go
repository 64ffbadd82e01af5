package store

import (
	"context"
	"fmt"
)

// EnsureSchema creates the base tables if they are missing; existing
// installs may predate one of them. The chat.search_vector column and
// its GIN index are an operational add-on and are not created here;
// search probes for the column at query time and degrades to a
// substring scan.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS contacts (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			name TEXT NOT NULL,
			info JSONB
		)`,
		`CREATE TABLE IF NOT EXISTS chat (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			sender TEXT NOT NULL,
			app TEXT NOT NULL,
			message TEXT NOT NULL,
			conversation_id TEXT,
			contact_id BIGINT REFERENCES contacts(id),
			category TEXT,
			intent TEXT,
			sentiment TEXT,
			message_type TEXT,
			thread_key TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS summary_tasks (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			summary TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS followup_tasks (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			task TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS chat_conversation_idx ON chat (conversation_id, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
