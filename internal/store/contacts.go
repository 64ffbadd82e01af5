package store

import (
	"context"
	"fmt"
)

// Contact maps a display name to an opaque info bag. Names are not
// unique at this layer; lookups take the first match.
type Contact struct {
	ID   int64          `json:"id"`
	Name string         `json:"name"`
	Info map[string]any `json:"info,omitempty"`
}

func (s *Store) CreateContact(ctx context.Context, name string, info map[string]any) (Contact, error) {
	if err := s.ready(); err != nil {
		return Contact{}, err
	}
	var c Contact
	err := s.pool.QueryRow(ctx, `
		INSERT INTO contacts (name, info)
		VALUES ($1, $2)
		RETURNING id, name, info`,
		name, info,
	).Scan(&c.ID, &c.Name, &c.Info)
	if err != nil {
		return Contact{}, fmt.Errorf("insert contact: %w", err)
	}
	return c, nil
}

func (s *Store) ListContacts(ctx context.Context) ([]Contact, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, info
		FROM contacts
		ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Info); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}
