package editor

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dialogtree/pkg/dialogue"
	"github.com/matzehuels/dialogtree/pkg/store"
)

// failingStore fails whichever operations are switched on and counts saves.
type failingStore struct {
	mu        sync.Mutex
	data      []byte
	loadErr   error
	saveErr   error
	saveCalls int
}

func (s *failingStore) Load(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data, s.loadErr
}

func (s *failingStore) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data = data
	return nil
}

func (s *failingStore) Clear(context.Context) error { return nil }
func (s *failingStore) Close() error                { return nil }

func (s *failingStore) saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCalls
}

func quietOptions() Options {
	return Options{Logger: log.New(io.Discard), Backend: "test"}
}

func openEditor(t *testing.T, st store.Store) *Editor {
	t.Helper()
	ed, err := Open(context.Background(), st, quietOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { ed.Close(context.Background()) })
	return ed
}

// stored decodes what st currently holds.
func stored(t *testing.T, st store.Store) dialogue.State {
	t.Helper()
	data, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s, err := dialogue.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return s
}

func TestOpenEmptyStore(t *testing.T) {
	ed := openEditor(t, store.NewMemoryStore())
	if len(ed.State()) != 0 {
		t.Error("empty store should open to an empty state")
	}
	if h := ed.History(); h.Len != 1 || h.Cursor != 0 || h.CanUndo {
		t.Errorf("History() = %+v", h)
	}
	if ed.Degraded() {
		t.Error("empty store is not a degraded session")
	}
}

func TestOpenLoadsSavedState(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	first := openEditor(t, st)
	bo, _ := first.CreateCharacter(ctx, "Bo", "#336699")
	first.CreateRoot(ctx, bo.ID, "Hello world", "", "")
	if err := first.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := openEditor(t, st)
	c, err := second.Character(bo.ID)
	if err != nil {
		t.Fatalf("Character: %v", err)
	}
	if c.Name != "Bo" || len(c.Dialogue.Nodes) != 1 {
		t.Errorf("reloaded character = %+v", c)
	}
	if second.History().CanUndo {
		t.Error("a loaded state is the start of a fresh timeline")
	}
}

func TestOpenDegrades(t *testing.T) {
	tests := []struct {
		name string
		st   *failingStore
	}{
		{"load error", &failingStore{loadErr: errors.New("connection refused")}},
		{"undecodable data", &failingStore{data: []byte("[not a state")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := openEditor(t, tt.st)
			if !ed.Degraded() {
				t.Error("Degraded() = false")
			}
			if len(ed.State()) != 0 {
				t.Error("degraded session should start empty")
			}
			if _, ok := ed.CreateCharacter(context.Background(), "Bo", ""); !ok {
				t.Fatal("editing should still work")
			}
			ed.Flush()
			if tt.st.saves() != 0 {
				t.Error("unreadable store must not be overwritten")
			}
		})
	}
}

func TestMutationsPersist(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	ed := openEditor(t, st)

	bo, _ := ed.CreateCharacter(ctx, "Bo", "#336699")
	root, _ := ed.CreateRoot(ctx, bo.ID, "Hello world", "greeting", "")
	ed.CreateOption(ctx, bo.ID, root.ID, "Wave", "Hi there", "", "")
	ed.BranchConnection(ctx, bo.ID, 0, "")
	ed.Flush()

	if got := stored(t, st); !got.Equal(ed.State()) {
		t.Error("stored state differs from working state")
	}
	if h := ed.History(); h.Len != 5 {
		t.Errorf("history len = %d, want 5", h.Len)
	}
}

func TestRejectedEditsAreInvisible(t *testing.T) {
	ctx := context.Background()
	st := &failingStore{}
	ed := openEditor(t, st)

	bo, _ := ed.CreateCharacter(ctx, "Bo", "")
	a, _ := ed.CreateRoot(ctx, bo.ID, "Hello", "", "")
	ed.CreateOption(ctx, bo.ID, a.ID, "Go", "There", "", "")
	ed.Flush()
	saves, size := st.saves(), ed.History().Len

	rejected := map[string]bool{
		"same label":         ed.EditConnectionLabel(ctx, bo.ID, 0, "Go"),
		"label out of range": ed.EditConnectionLabel(ctx, bo.ID, 5, "x"),
		"empty node text":    ed.EditNodeText(ctx, bo.ID, a.ID, "   ", ""),
		"unknown character":  ed.MoveCharacter(ctx, "char_missing", 1, 1),
		"root for nobody":    func() bool { _, ok := ed.CreateRoot(ctx, "char_missing", "x", "", ""); return ok }(),
		"empty root text":    func() bool { _, ok := ed.CreateRoot(ctx, bo.ID, "", "", ""); return ok }(),
		"delete nothing":     ed.DeleteNodes(ctx, bo.ID, []string{"node_missing"}),
		"empty name":         func() bool { _, ok := ed.CreateCharacter(ctx, "  ", ""); return ok }(),
	}
	for name, changed := range rejected {
		if changed {
			t.Errorf("%s: reported a change", name)
		}
	}

	ed.Flush()
	if st.saves() != saves {
		t.Errorf("rejected edits saved %d times", st.saves()-saves)
	}
	if ed.History().Len != size {
		t.Errorf("rejected edits grew history from %d to %d", size, ed.History().Len)
	}
}

func TestUndoRedoPersist(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	ed := openEditor(t, st)

	bo, _ := ed.CreateCharacter(ctx, "Bo", "")
	ed.EditCharacterInfo(ctx, bo.ID, "Bonnie", "🐝")
	latest := ed.State()

	if !ed.Undo(ctx) {
		t.Fatal("Undo failed")
	}
	ed.Flush()
	if got := stored(t, st)[bo.ID].Name; got != "Bo" {
		t.Errorf("stored name after undo = %q, want Bo", got)
	}

	if !ed.Redo(ctx) {
		t.Fatal("Redo failed")
	}
	ed.Flush()
	if !stored(t, st).Equal(latest) {
		t.Error("redo should persist the restored state")
	}

	ed.Undo(ctx)
	ed.Undo(ctx)
	if ed.Undo(ctx) {
		t.Error("Undo past the first snapshot should fail")
	}
	if len(ed.State()) != 0 {
		t.Error("first snapshot is the empty state")
	}
}

func TestEditAfterUndoDropsRedo(t *testing.T) {
	ctx := context.Background()
	ed := openEditor(t, store.NewMemoryStore())

	ed.CreateCharacter(ctx, "A", "")
	ed.CreateCharacter(ctx, "B", "")
	ed.Undo(ctx)
	ed.CreateCharacter(ctx, "C", "")

	h := ed.History()
	if h.Len != 3 || h.Cursor != 2 || h.CanRedo {
		t.Errorf("History() = %+v, want len 3 cursor 2 no redo", h)
	}
	if ed.Redo(ctx) {
		t.Error("Redo should be a no-op")
	}
}

func TestFailedSaveIsNotFatal(t *testing.T) {
	ctx := context.Background()
	st := &failingStore{saveErr: errors.New("disk full")}
	ed := openEditor(t, st)

	if _, ok := ed.CreateCharacter(ctx, "Bo", ""); !ok {
		t.Fatal("edit should succeed even though saving fails")
	}
	ed.Flush()
	if ed.SaveFailures() != 1 {
		t.Errorf("SaveFailures() = %d, want 1", ed.SaveFailures())
	}
	if len(ed.State()) != 1 {
		t.Error("working state should keep the edit")
	}
}

func TestConnectNodes(t *testing.T) {
	ctx := context.Background()
	ed := openEditor(t, store.NewMemoryStore())
	bo, _ := ed.CreateCharacter(ctx, "Bo", "")
	a, _ := ed.CreateRoot(ctx, bo.ID, "A", "", "")
	b, _ := ed.CreateRoot(ctx, bo.ID, "B", "", "")

	cancelled := []struct {
		name     string
		char     string
		from, to string
	}{
		{"dropped on nothing", bo.ID, a.ID, ""},
		{"dropped on itself", bo.ID, a.ID, a.ID},
		{"unknown target", bo.ID, a.ID, "node_missing"},
		{"unknown origin", bo.ID, "node_missing", b.ID},
		{"unknown character", "char_missing", a.ID, b.ID},
	}
	for _, tt := range cancelled {
		t.Run(tt.name, func(t *testing.T) {
			res, _ := ed.ConnectNodes(ctx, tt.char, tt.from, tt.to, "")
			if res != ConnectCancelled {
				t.Errorf("result = %v, want cancelled", res)
			}
		})
	}

	res, c := ed.ConnectNodes(ctx, bo.ID, a.ID, b.ID, "")
	if res != ConnectCreated {
		t.Fatalf("result = %v, want created", res)
	}
	if c.Text != dialogue.DefaultConnectionLabel || c.From != a.ID || c.To != b.ID || c.ID == "" {
		t.Errorf("connection = %+v", c)
	}
	got, _ := ed.Character(bo.ID)
	if len(got.Dialogue.Connections) != 1 {
		t.Errorf("connections = %d, want 1", len(got.Dialogue.Connections))
	}
}

func TestCreateInterruption(t *testing.T) {
	ctx := context.Background()
	ed := openEditor(t, store.NewMemoryStore())
	bo, _ := ed.CreateCharacter(ctx, "Bo", "")
	a, _ := ed.CreateRoot(ctx, bo.ID, "A", "", "")
	b, conn, _ := ed.CreateOption(ctx, bo.ID, a.ID, "", "B", "", "")
	x, _ := ed.CreateRoot(ctx, bo.ID, "X", "", "")

	if _, ok := ed.CreateInterruption(ctx, bo.ID, 0, "node_missing"); ok {
		t.Error("interruption to a missing node should be rejected")
	}
	in, ok := ed.CreateInterruption(ctx, bo.ID, 0, x.ID)
	if !ok {
		t.Fatal("CreateInterruption failed")
	}
	if in.Connection != conn.ID || in.From.FromNode != a.ID || in.From.ToNode != b.ID {
		t.Errorf("interruption = %+v", in)
	}
}

func TestPath(t *testing.T) {
	ctx := context.Background()
	ed := openEditor(t, store.NewMemoryStore())
	bo, _ := ed.CreateCharacter(ctx, "Bo", "")
	a, _ := ed.CreateRoot(ctx, bo.ID, "A", "", "")
	b, _, _ := ed.CreateOption(ctx, bo.ID, a.ID, "", "B", "", "")

	path, err := ed.Path(bo.ID, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(path) != 2 || path[0] != b.ID || path[1] != a.ID {
		t.Errorf("Path = %v", path)
	}
	if _, err := ed.Path("char_missing", b.ID); err == nil {
		t.Error("unknown character should error")
	}
	if _, err := ed.Path(bo.ID, "node_missing"); err == nil {
		t.Error("unknown node should error")
	}
}

func TestReplace(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	ed := openEditor(t, st)
	ed.CreateCharacter(ctx, "Old", "")

	imported := dialogue.NewState()
	dialogue.CreateCharacter(imported, "New", "")

	if !ed.Replace(ctx, imported) {
		t.Fatal("Replace reported no change")
	}
	if ed.Replace(ctx, imported) {
		t.Error("replacing with an equal state is not a change")
	}
	ed.Flush()
	if !stored(t, st).Equal(imported) {
		t.Error("replaced state not persisted")
	}
	ed.Undo(ctx)
	for _, c := range ed.State() {
		if c.Name != "Old" {
			t.Errorf("undo after replace = %q", c.Name)
		}
	}
}

func TestExampleScenario(t *testing.T) {
	ctx := context.Background()
	ed := openEditor(t, store.NewMemoryStore())

	bo, _ := ed.CreateCharacter(ctx, "Bo", "#336699")
	n1, ok := ed.CreateRoot(ctx, bo.ID, "Hello world", "", "")
	if !ok || n1.Text != "Hello" {
		t.Fatalf("CreateRoot = %+v, %v", n1, ok)
	}

	if res, _ := ed.ConnectNodes(ctx, bo.ID, n1.ID, n1.ID, "loop"); res != ConnectCancelled {
		t.Error("self-loop should be cancelled")
	}
	if !ed.DeleteNodes(ctx, bo.ID, []string{n1.ID}) {
		t.Fatal("DeleteNodes reported no change")
	}

	c, _ := ed.Character(bo.ID)
	if len(c.Dialogue.Nodes) != 0 || len(c.Dialogue.Connections) != 0 {
		t.Errorf("dialogue not empty: %d nodes, %d connections", len(c.Dialogue.Nodes), len(c.Dialogue.Connections))
	}
}

func TestConcurrentEdits(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	ed := openEditor(t, st)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ed.CreateCharacter(ctx, "C", "")
		}()
	}
	wg.Wait()
	ed.Flush()

	if n := len(ed.State()); n != 20 {
		t.Errorf("characters = %d, want 20", n)
	}
	if got := stored(t, st); len(got) != 20 {
		t.Errorf("stored characters = %d, want 20", len(got))
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	ed, err := Open(context.Background(), store.NewMemoryStore(), quietOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := ed.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := ed.Close(context.Background()); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestCreateOptionAtDropPoint(t *testing.T) {
	ctx := context.Background()
	ed := openEditor(t, store.NewMemoryStore())
	bo, _ := ed.CreateCharacter(ctx, "Bo", "")
	a, _ := ed.CreateRoot(ctx, bo.ID, "A", "", "")

	if res, _ := ed.ConnectNodes(ctx, bo.ID, a.ID, "", ""); res != ConnectCancelled {
		t.Fatalf("drop on nothing = %v, want cancelled", res)
	}
	before := ed.History().Len

	n, conn, ok := ed.CreateOptionAt(ctx, bo.ID, a.ID, "", 500, 40, "Over here", "", "")
	if !ok {
		t.Fatal("CreateOptionAt failed")
	}
	if n.X != 500 || n.Y != 40 {
		t.Errorf("node at (%v, %v), want (500, 40)", n.X, n.Y)
	}
	if conn.From != a.ID || conn.To != n.ID || conn.Text != dialogue.DefaultConnectionLabel {
		t.Errorf("connection = %+v", conn)
	}
	if got := ed.History().Len - before; got != 1 {
		t.Errorf("drop-point option recorded %d snapshots, want 1", got)
	}

	ed.Undo(ctx)
	got, _ := ed.Character(bo.ID)
	if got.Dialogue.Node(n.ID) != nil || len(got.Dialogue.Connections) != 0 {
		t.Error("one undo should remove both the node and its option")
	}

	if _, _, ok := ed.CreateOptionAt(ctx, bo.ID, "node_missing", "", 1, 1, "x", "", ""); ok {
		t.Error("option from a missing node should be rejected")
	}
}

func TestCreateNodeAt(t *testing.T) {
	ctx := context.Background()
	ed := openEditor(t, store.NewMemoryStore())
	bo, _ := ed.CreateCharacter(ctx, "Bo", "")

	n, ok := ed.CreateNode(ctx, bo.ID, "Seed", 320, 210, "Somewhere else", "", "")
	if !ok || n.X != 320 || n.Y != 210 || n.Text != "Somewhere" {
		t.Fatalf("node = %+v, ok = %v", n, ok)
	}
	if _, ok := ed.CreateNode(ctx, "char_missing", "", 0, 0, "x", "", ""); ok {
		t.Error("node for a missing character should be rejected")
	}
}

func TestCreateOptionDefaultsLabel(t *testing.T) {
	ctx := context.Background()
	ed := openEditor(t, store.NewMemoryStore())
	bo, _ := ed.CreateCharacter(ctx, "Bo", "")
	a, _ := ed.CreateRoot(ctx, bo.ID, "A", "", "")

	_, conn, _ := ed.CreateOption(ctx, bo.ID, a.ID, "", "B", "", "")
	if conn.Text != dialogue.DefaultConnectionLabel {
		t.Errorf("label = %q, want %q", conn.Text, dialogue.DefaultConnectionLabel)
	}
}

func TestEnsureStart(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	ed := openEditor(t, st)
	bo, _ := ed.CreateCharacter(ctx, "Bo", "")
	before := ed.History().Len

	if !ed.EnsureStart(ctx, bo.ID) {
		t.Fatal("empty dialogue should get a starting node")
	}
	got, _ := ed.Character(bo.ID)
	ids := got.Dialogue.NodeIDs()
	if len(ids) != 1 {
		t.Fatalf("nodes = %d, want 1", len(ids))
	}
	start := got.Dialogue.Nodes[ids[0]]
	if start.Text != dialogue.StartText || start.FullText != dialogue.StartFullText ||
		start.X != dialogue.StartX || start.Y != dialogue.StartY {
		t.Errorf("start node = %+v", start)
	}
	if got := ed.History().Len - before; got != 1 {
		t.Errorf("seeding recorded %d snapshots, want 1", got)
	}

	if ed.EnsureStart(ctx, bo.ID) {
		t.Error("a dialogue with nodes should be left alone")
	}
	if ed.EnsureStart(ctx, "char_missing") {
		t.Error("unknown character should be rejected")
	}

	ed.Flush()
	if n := len(stored(t, st)[bo.ID].Dialogue.Nodes); n != 1 {
		t.Errorf("stored nodes = %d, want 1", n)
	}
}

func TestUndoRedoAfterClose(t *testing.T) {
	ctx := context.Background()
	ed, err := Open(ctx, store.NewMemoryStore(), quietOptions())
	if err != nil {
		t.Fatal(err)
	}
	bo, _ := ed.CreateCharacter(ctx, "Bo", "")
	ed.CreateRoot(ctx, bo.ID, "A", "", "")
	ed.Undo(ctx)
	if err := ed.Close(ctx); err != nil {
		t.Fatal(err)
	}

	before := ed.State()
	if ed.Undo(ctx) {
		t.Error("Undo after Close should do nothing")
	}
	if ed.Redo(ctx) {
		t.Error("Redo after Close should do nothing")
	}
	if !ed.State().Equal(before) {
		t.Error("state changed after Close")
	}
}
