// Package store persists the serialized editor state.
//
// Every backend holds exactly one value: the latest snapshot of all
// characters, encoded by [dialogue.Marshal]. Backends never interpret the
// bytes, so any backend can load what another one saved.
//
// # Backends
//
//   - [FileStore]: a JSON file, written atomically
//   - [MemoryStore]: in-process, for tests and ephemeral sessions
//   - [NullStore]: drops everything; used when the configured backend fails
//   - [SQLiteStore]: a key/value row in a SQLite database
//   - [RedisStore]: a single Redis key
//   - [MongoStore]: a single MongoDB document
//
// Use [Open] to build a backend from [Options].
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Key names the stored snapshot in keyed backends.
const Key = "mainCharacterData"

// Store is a single-value persistence slot.
type Store interface {
	// Save replaces the stored snapshot.
	Save(ctx context.Context, data []byte) error

	// Load returns the stored snapshot, or (nil, nil) when nothing has
	// been saved yet.
	Load(ctx context.Context) ([]byte, error)

	// Clear removes the stored snapshot. Clearing an empty store is not
	// an error.
	Clear(ctx context.Context) error

	// Close releases connections and handles.
	Close() error
}

// Sentinel errors for store operations.
var (
	// ErrUnknownBackend is returned by Open for an unrecognized backend name.
	ErrUnknownBackend = errors.New("unknown store backend")

	// ErrClosed is returned when a store is used after Close.
	ErrClosed = errors.New("store closed")
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendNull   = "null"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists every backend name Open understands.
var Backends = []string{BackendFile, BackendMemory, BackendNull, BackendSQLite, BackendRedis, BackendMongo}

// Options selects and configures a backend.
type Options struct {
	Backend string // one of the Backend* names; empty means file

	Path       string // FileStore file path; empty uses DefaultPath
	SQLitePath string // SQLite database file
	RedisURL   string // redis://host:port/db
	MongoURI   string // mongodb://host:port
	MongoDB    string // database name; empty uses "dialogtree"
}

// Open builds the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		path := opts.Path
		if path == "" {
			p, err := DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return NewFileStore(path)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendNull:
		return NewNullStore(), nil
	case BackendSQLite:
		return NewSQLiteStore(ctx, opts.SQLitePath)
	case BackendRedis:
		return NewRedisStore(ctx, opts.RedisURL)
	case BackendMongo:
		return NewMongoStore(ctx, opts.MongoURI, opts.MongoDB)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
