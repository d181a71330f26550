// Package memory implements an in-process key-value store for tests and
// ephemeral runs.
package memory

import (
	"bytes"
	"context"
	"sync"
)

// Store keeps payloads in a map. Values are copied on the way in and out.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte

	// PutErr, when set, is returned by every Put. Tests use it to simulate a
	// full or disabled storage backend.
	PutErr error
}

// New returns an empty store.
func New() *Store { return &Store{data: make(map[string][]byte)} }

// Get returns a copy of the payload stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

// Put replaces the payload stored under key.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PutErr != nil {
		return s.PutErr
	}
	s.data[key] = bytes.Clone(value)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// Keys lists the stored keys in no particular order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.data))
	for k := range s.data {
		out = append(out, k)
	}
	return out
}
