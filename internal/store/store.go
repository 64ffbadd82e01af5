package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUnavailable is returned by every store method when the database
// pool was never established. Callers map it to a service-unavailable
// response instead of crashing or hanging.
var ErrUnavailable = errors.New("database unavailable")

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewUnavailable returns a store whose every method fails fast with
// ErrUnavailable. Used when pool init fails at startup so the process
// keeps serving non-database routes.
func NewUnavailable() *Store {
	return &Store{}
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) ready() error {
	if s.pool == nil {
		return ErrUnavailable
	}
	return nil
}
