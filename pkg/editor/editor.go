// Package editor ties the dialogue graph, its undo history and a persistence
// backend into one editing session.
//
// An [Editor] owns the working [dialogue.State]. Every entry point runs one
// mutator under the editor's lock and reports whether anything changed. A
// changed edit records a history snapshot and queues a save; a rejected one
// does neither. Undo and Redo swap the working state for a snapshot and save
// it too.
//
// Saves are asynchronous: the store is written by a single background
// goroutine that only keeps the newest pending snapshot. A failed save is
// logged and counted and the next one supersedes it. [Editor.Flush] waits
// for the writer to go idle; [Editor.Close] flushes and closes the store.
//
//	st, _ := store.Open(ctx, store.Options{Backend: "sqlite", SQLitePath: "dialog.db"})
//	ed, _ := editor.Open(ctx, st, editor.Options{})
//	defer ed.Close(ctx)
//
//	bo, _ := ed.CreateCharacter(ctx, "Bo", "#336699")
//	hello, _ := ed.CreateRoot(ctx, bo.ID, "Hello there", "", "")
//	ed.Undo(ctx)
//
// An Editor is safe for concurrent use.
package editor

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dialogtree/pkg/dialogue"
	"github.com/matzehuels/dialogtree/pkg/errors"
	"github.com/matzehuels/dialogtree/pkg/history"
	"github.com/matzehuels/dialogtree/pkg/observability"
	"github.com/matzehuels/dialogtree/pkg/store"
)

// Options configures an editor session.
type Options struct {
	// Logger receives load/save diagnostics. Defaults to log.Default().
	Logger *log.Logger

	// HistoryLimit caps the number of undo snapshots. Zero is unbounded.
	HistoryLimit int

	// Backend names the store in logs and metrics. Defaults to "store".
	Backend string
}

// Editor is one editing session over a persisted state.
type Editor struct {
	mu       sync.Mutex
	state    dialogue.State
	hist     *history.History
	st       store.Store
	saver    *saver
	logger   *log.Logger
	degraded bool
	closed   bool
}

// Open loads the stored state and starts a session on it.
//
// A store that holds nothing yields an empty state. A store that fails to
// load, or holds data that does not decode, also yields an empty state; the
// session then runs on a [store.NullStore] so the unreadable data is never
// overwritten, and [Editor.Degraded] reports true.
func Open(ctx context.Context, st store.Store, opts Options) (*Editor, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	backend := opts.Backend
	if backend == "" {
		backend = "store"
	}
	if st == nil {
		logger.Warn("no store configured, changes will not be saved")
		st = store.NewNullStore()
	}

	e := &Editor{st: st, logger: logger}

	state, err := load(ctx, st, backend)
	if err != nil {
		logger.Warn("could not load saved state, starting empty; changes will not be saved", "backend", backend, "err", err)
		_ = st.Close()
		e.st = store.NewNullStore()
		e.degraded = true
		state = dialogue.NewState()
	}
	logger.Debug("state loaded", "backend", backend, "characters", len(state))

	e.state = state
	e.hist = history.New(state, opts.HistoryLimit)
	e.saver = newSaver(e.st, backend, logger)
	observability.Editor().OnHistorySize(ctx, e.hist.Len())
	return e, nil
}

func load(ctx context.Context, st store.Store, backend string) (dialogue.State, error) {
	start := time.Now()
	data, err := st.Load(ctx)
	observability.Store().OnLoad(ctx, backend, len(data), time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "load state")
	}
	if data == nil {
		return dialogue.NewState(), nil
	}
	s, err := dialogue.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailed, err, "decode saved state")
	}
	return s, nil
}

// Close waits for pending saves and closes the store. The context bounds
// the wait; the store is closed either way.
func (e *Editor) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.saver.close()
		close(done)
	}()
	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
		e.logger.Warn("closing before pending save finished", "err", err)
	}
	if cerr := e.st.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Flush blocks until every queued save has been attempted.
func (e *Editor) Flush() { e.saver.flush() }

// Degraded reports whether the session runs without durable persistence
// because the configured store could not be loaded.
func (e *Editor) Degraded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.degraded
}

// SaveFailures returns how many background saves have failed.
func (e *Editor) SaveFailures() int { return e.saver.failures() }

// commit finishes an edit: it reports the operation and, when changed,
// records a snapshot and queues a save. Callers hold e.mu.
func (e *Editor) commit(ctx context.Context, op string, changed bool) bool {
	observability.Editor().OnMutation(ctx, op, changed)
	if !changed {
		e.logger.Debug("edit rejected", "op", op)
		return false
	}
	e.hist.Record(e.state)
	observability.Editor().OnHistorySize(ctx, e.hist.Len())
	e.persist()
	e.logger.Debug("edit applied", "op", op, "history", e.hist.Len())
	return true
}

// persist queues the working state for saving. Callers hold e.mu.
func (e *Editor) persist() {
	if e.closed {
		return
	}
	data, err := dialogue.Marshal(e.state)
	if err != nil {
		e.logger.Error("encode state", "err", err)
		return
	}
	e.saver.enqueue(data)
}

// dialogueOf returns the dialogue of character id, or nil.
func (e *Editor) dialogueOf(id string) *dialogue.Dialogue {
	if c := e.state.Character(id); c != nil {
		return c.Dialogue
	}
	return nil
}

// =============================================================================
// History
// =============================================================================

// Undo restores the previous snapshot. It returns false at the start of the
// timeline and once the editor is closed.
func (e *Editor) Undo(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		observability.Editor().OnUndo(ctx, false)
		return false
	}
	s, ok := e.hist.Undo()
	observability.Editor().OnUndo(ctx, ok)
	if !ok {
		return false
	}
	e.state = s
	e.persist()
	return true
}

// Redo restores the next snapshot. It returns false at the end of the
// timeline and once the editor is closed.
func (e *Editor) Redo(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		observability.Editor().OnRedo(ctx, false)
		return false
	}
	s, ok := e.hist.Redo()
	observability.Editor().OnRedo(ctx, ok)
	if !ok {
		return false
	}
	e.state = s
	e.persist()
	return true
}

// HistoryInfo describes the undo timeline.
type HistoryInfo struct {
	Cursor  int  `json:"cursor"`
	Len     int  `json:"len"`
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
}

// History returns the current position in the undo timeline.
func (e *Editor) History() HistoryInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return HistoryInfo{
		Cursor:  e.hist.Cursor(),
		Len:     e.hist.Len(),
		CanUndo: e.hist.CanUndo(),
		CanRedo: e.hist.CanRedo(),
	}
}

// =============================================================================
// Queries
// =============================================================================

// State returns a deep copy of the working state.
func (e *Editor) State() dialogue.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Character returns a deep copy of one character.
func (e *Editor) Character(id string) (*dialogue.Character, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.state.Character(id)
	if c == nil {
		return nil, errors.New(errors.ErrCodeCharacterNotFound, "no character %q", id)
	}
	return c.Clone(), nil
}

// Path returns the predecessor chain from node back to its root, starting
// with node itself.
func (e *Editor) Path(charID, node string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := e.dialogueOf(charID)
	if d == nil {
		return nil, errors.New(errors.ErrCodeCharacterNotFound, "no character %q", charID)
	}
	if d.Node(node) == nil {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "no node %q", node)
	}
	return dialogue.ReconstructPath(d, node), nil
}

// Replace swaps the whole working state, as an import does. It records a
// snapshot and saves like any other edit.
func (e *Editor) Replace(ctx context.Context, s dialogue.State) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s == nil {
		s = dialogue.NewState()
	}
	changed := !s.Equal(e.state)
	if changed {
		e.state = s.Clone()
	}
	return e.commit(ctx, "replace", changed)
}
