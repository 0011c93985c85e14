// Package history implements linear undo/redo over full editor snapshots.
//
// A [History] holds an ordered list of [dialogue.State] snapshots and a
// cursor pointing at the current one. Recording a new snapshot after an undo
// discards every snapshot past the cursor: there is one timeline, never a
// tree.
//
// Snapshots are deep copies on the way in and on the way out, so neither the
// caller's working state nor a returned state can alias what is stored.
//
//	h := history.New(initial, 0)
//	h.Record(afterEdit)
//	prev, ok := h.Undo()
//	next, ok := h.Redo()
//
// History is not safe for concurrent use.
package history

import "github.com/matzehuels/dialogtree/pkg/dialogue"

// History is a snapshot list plus a cursor.
type History struct {
	states []dialogue.State
	cursor int
	limit  int
}

// New creates a history whose only snapshot is initial, with the cursor on
// it. A limit greater than zero caps the number of stored snapshots; the
// oldest are dropped first. Zero means unbounded.
func New(initial dialogue.State, limit int) *History {
	if initial == nil {
		initial = dialogue.NewState()
	}
	if limit < 0 {
		limit = 0
	}
	return &History{
		states: []dialogue.State{initial.Clone()},
		cursor: 0,
		limit:  limit,
	}
}

// Record truncates everything after the cursor, appends a copy of s and
// moves the cursor onto it.
func (h *History) Record(s dialogue.State) {
	h.states = append(h.states[:h.cursor+1], s.Clone())
	h.cursor++

	if h.limit > 0 && len(h.states) > h.limit {
		drop := len(h.states) - h.limit
		h.states = append([]dialogue.State(nil), h.states[drop:]...)
		h.cursor -= drop
	}
}

// CanUndo reports whether there is a snapshot before the cursor.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether there is a snapshot after the cursor.
func (h *History) CanRedo() bool { return h.cursor < len(h.states)-1 }

// Undo moves the cursor back one step and returns a copy of the snapshot
// there. At the first snapshot it does nothing and returns false.
func (h *History) Undo() (dialogue.State, bool) {
	if !h.CanUndo() {
		return nil, false
	}
	h.cursor--
	return h.states[h.cursor].Clone(), true
}

// Redo moves the cursor forward one step and returns a copy of the snapshot
// there. At the last snapshot it does nothing and returns false.
func (h *History) Redo() (dialogue.State, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.cursor++
	return h.states[h.cursor].Clone(), true
}

// Current returns a copy of the snapshot under the cursor.
func (h *History) Current() dialogue.State {
	return h.states[h.cursor].Clone()
}

// Cursor returns the index of the current snapshot.
func (h *History) Cursor() int { return h.cursor }

// Len returns the number of stored snapshots.
func (h *History) Len() int { return len(h.states) }

// Reset discards all snapshots and starts over from initial.
func (h *History) Reset(initial dialogue.State) {
	if initial == nil {
		initial = dialogue.NewState()
	}
	h.states = []dialogue.State{initial.Clone()}
	h.cursor = 0
}
