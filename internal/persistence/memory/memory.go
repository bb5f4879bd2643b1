// Package memory provides an in-process blob store for local development and tests.
package memory

import (
	"context"
	"sync"

	"example.com/mapty/internal/persistence"
)

// Store keeps blobs in memory.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
	writes int
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// Get implements persistence.Store.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", persistence.ErrNotFound
	}
	return value, nil
}

// Set implements persistence.Store.
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	s.writes++
	return nil
}

// Remove implements persistence.Store.
func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Writes reports how many Set calls the store has served.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
