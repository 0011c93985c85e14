package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the snapshot in a single JSON file.
// Writes go to a temporary file in the same directory and are renamed into
// place, so a crash never leaves a half-written snapshot behind.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	closed bool
}

// DefaultPath returns $XDG_DATA_HOME/dialogtree/state.json, falling back to
// ~/.local/share/dialogtree/state.json.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "dialogtree", "state.json"), nil
}

// NewFileStore creates a file store at path.
// The parent directory will be created if it doesn't exist.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load reads the snapshot file.
func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	return data, nil
}

// Save atomically replaces the snapshot file.
func (s *FileStore) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(name, s.path); err != nil {
		os.Remove(name)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

// Clear removes the snapshot file.
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove store file: %w", err)
	}
	return nil
}

// Close marks the store closed; later calls fail with ErrClosed.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string { return s.path }

var _ Store = (*FileStore)(nil)
