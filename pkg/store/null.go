package store

import "context"

// NullStore is a no-op store that never keeps anything.
// The editor falls back to it when the configured backend cannot be opened.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() *NullStore {
	return &NullStore{}
}

// Load always reports an empty store.
func (s *NullStore) Load(ctx context.Context) ([]byte, error) { return nil, nil }

// Save does nothing.
func (s *NullStore) Save(ctx context.Context, data []byte) error { return nil }

// Clear does nothing.
func (s *NullStore) Clear(ctx context.Context) error { return nil }

// Close does nothing.
func (s *NullStore) Close() error { return nil }

var _ Store = (*NullStore)(nil)
