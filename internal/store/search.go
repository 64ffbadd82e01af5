package store

import (
	"context"
	"fmt"
)

// HasSearchIndex reports whether the chat table carries the tsvector
// column that backs indexed full-text search. The column is added by an
// operational migration, so installs without it fall back to a
// substring scan.
func (s *Store) HasSearchIndex(ctx context.Context) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = 'chat' AND column_name = 'search_vector'
		)`,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("probe search column: %w", err)
	}
	return exists, nil
}

// SearchIndexed runs the tsvector path. The query string must already
// be a to_tsquery expression (tokens joined with " & ").
func (s *Store) SearchIndexed(ctx context.Context, tsquery string, limit int) ([]Message, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM chat
		WHERE search_vector @@ to_tsquery('english', $1)
		ORDER BY created_at DESC
		LIMIT $2`,
		tsquery, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("indexed search: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// SearchScan is the fallback path: case-insensitive substring match
// over the raw message column.
func (s *Store) SearchScan(ctx context.Context, term string, limit int) ([]Message, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM chat
		WHERE message ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2`,
		"%"+term+"%", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("scan search: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}
