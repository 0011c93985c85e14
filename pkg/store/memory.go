package store

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps the snapshot in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	data  []byte
	saves int
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the last saved snapshot.
func (s *MemoryStore) Load(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data), nil
}

// Save stores a copy of data.
func (s *MemoryStore) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = slices.Clone(data)
	s.saves++
	return nil
}

// Clear forgets the stored snapshot.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}

// Saves returns how many times Save has been called.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Close does nothing.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
