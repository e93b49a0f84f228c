package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
)

// Ensure PositionStore implements the interface.
var _ driven.PositionStore = (*PositionStore)(nil)

// PositionStore is an in-memory implementation of driven.PositionStore.
// Values do not survive a restart; it backs --ephemeral viewers and tests.
type PositionStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewPositionStore creates a new in-memory position store.
func NewPositionStore() *PositionStore {
	return &PositionStore{
		values: make(map[string]string),
	}
}

// Get returns the value stored under key.
func (s *PositionStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *PositionStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
