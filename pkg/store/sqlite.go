package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL
);`

// SQLiteStore keeps the snapshot as one row of a key/value table.
type SQLiteStore struct {
	db     *sql.DB
	key    string
	closed atomic.Bool
}

// NewSQLiteStore opens (or creates) the database at path. An empty path or
// ":memory:" opens a private in-memory database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path
	if path == "" || path == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps a :memory: database alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db, key: Key}, nil
}

// Load reads the snapshot row.
func (s *SQLiteStore) Load(ctx context.Context) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, s.key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite load: %w", err)
	}
	return data, nil
}

// Save upserts the snapshot row.
func (s *SQLiteStore) Save(ctx context.Context, data []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.key, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlite save: %w", err)
	}
	return nil
}

// Clear deletes the snapshot row.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, s.key); err != nil {
		return fmt.Errorf("sqlite clear: %w", err)
	}
	return nil
}

// Close closes the database; later calls fail with ErrClosed.
func (s *SQLiteStore) Close() error {
	s.closed.Store(true)
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
