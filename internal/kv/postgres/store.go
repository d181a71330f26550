// Package postgres persists key-value payloads to the kv_state table through
// the shared pgx pool and its prepared statements.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store reads and writes kv_state rows. The pool is owned by the caller.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps a pool created by db.New (which registers kv_get / kv_put).
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Get returns the payload stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, "kv_get", key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return payload, true, nil
}

// Put upserts the payload stored under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.pool.Exec(ctx, "kv_put", key, value); err != nil {
		return fmt.Errorf("kv put %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; the pool outlives the store.
func (s *Store) Close() error { return nil }
