// Package search decides at query time whether message search goes
// through the indexed full-text path or the substring-scan fallback.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/daniel-SCAU/oldAIagent/internal/store"
)

// Backend is the storage seam the resolver drives. *store.Store
// satisfies it.
type Backend interface {
	HasSearchIndex(ctx context.Context) (bool, error)
	SearchIndexed(ctx context.Context, tsquery string, limit int) ([]store.Message, error)
	SearchScan(ctx context.Context, term string, limit int) ([]store.Message, error)
}

// Resolver probes the backend once for full-text capability and
// routes every query accordingly. Both paths return the same row
// shape, most recent first.
type Resolver struct {
	backend Backend
	logger  *slog.Logger

	mu      sync.Mutex
	probed  bool
	indexed bool
}

func NewResolver(backend Backend, logger *slog.Logger) *Resolver {
	return &Resolver{backend: backend, logger: logger}
}

func (r *Resolver) Search(ctx context.Context, q string, limit int) ([]store.Message, error) {
	indexed, err := r.hasIndex(ctx)
	if err != nil {
		return nil, err
	}
	if indexed {
		return r.backend.SearchIndexed(ctx, TSQuery(q), limit)
	}
	return r.backend.SearchScan(ctx, q, limit)
}

// hasIndex caches the first successful probe. A failed probe (for
// example the database being unavailable) is not cached, so the next
// query retries it.
func (r *Resolver) hasIndex(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.probed {
		return r.indexed, nil
	}
	indexed, err := r.backend.HasSearchIndex(ctx)
	if err != nil {
		return false, fmt.Errorf("search capability probe: %w", err)
	}
	r.probed = true
	r.indexed = indexed
	r.logger.Info("search capability resolved", "indexed", indexed)
	return indexed, nil
}

// TSQuery lowercases the query and joins its whitespace-separated
// tokens with the tsquery AND operator.
func TSQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " & ")
}
