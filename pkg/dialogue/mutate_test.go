package dialogue

import (
	"strings"
	"testing"
)

func newTestDialogue(t *testing.T) (State, *Character) {
	t.Helper()
	s := NewState()
	c, ok := CreateCharacter(s, "Bo", "#336699")
	if !ok {
		t.Fatal("CreateCharacter rejected a valid name")
	}
	return s, c
}

func TestCreateCharacter(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		color     string
		wantOK    bool
		wantName  string
		wantColor string
	}{
		{"plain", "Bo", "#336699", true, "Bo", "#336699"},
		{"trimmed", "  Ada  ", "#000000", true, "Ada", "#000000"},
		{"default color", "Cy", "", true, "Cy", DefaultCharacterColor},
		{"empty", "", "#fff", false, "", ""},
		{"whitespace", "   ", "#fff", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			c, ok := CreateCharacter(s, tt.input, tt.color)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				if len(s) != 0 {
					t.Errorf("rejected create added %d characters", len(s))
				}
				return
			}
			if c.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", c.Name, tt.wantName)
			}
			if c.Color != tt.wantColor {
				t.Errorf("Color = %q, want %q", c.Color, tt.wantColor)
			}
			if c.Icon != DefaultIcon {
				t.Errorf("Icon = %q, want %q", c.Icon, DefaultIcon)
			}
			if !strings.HasPrefix(c.ID, CharacterPrefix) {
				t.Errorf("ID %q lacks prefix %q", c.ID, CharacterPrefix)
			}
			if s[c.ID] != c {
				t.Error("character not stored under its ID")
			}
			if c.Dialogue == nil || len(c.Dialogue.Nodes) != 0 || len(c.Dialogue.Connections) != 0 {
				t.Error("new character should own an empty dialogue")
			}
		})
	}
}

func TestIDsAreUniqueAndOrdered(t *testing.T) {
	prev := ""
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewNodeID()
		if seen[id] {
			t.Fatalf("duplicate ID %q", id)
		}
		if id <= prev {
			t.Fatalf("ID %q not after %q", id, prev)
		}
		seen[id] = true
		prev = id
	}
}

func TestEditCharacterInfo(t *testing.T) {
	s, c := newTestDialogue(t)

	if !EditCharacterInfo(s, c.ID, " Boris ", " 🐻 ") {
		t.Fatal("EditCharacterInfo returned false")
	}
	if c.Name != "Boris" || c.Icon != "🐻" {
		t.Errorf("got name=%q icon=%q", c.Name, c.Icon)
	}

	EditCharacterInfo(s, c.ID, "   ", "")
	if c.Name != DefaultCharacterName {
		t.Errorf("blank name = %q, want %q", c.Name, DefaultCharacterName)
	}
	if c.Icon != DefaultIcon {
		t.Errorf("blank icon = %q, want %q", c.Icon, DefaultIcon)
	}

	if EditCharacterInfo(s, "char_missing", "X", "Y") {
		t.Error("editing a missing character should report false")
	}
}

func TestRecolorAndMoveCharacters(t *testing.T) {
	s, a := newTestDialogue(t)
	b, _ := CreateCharacter(s, "Cy", "#111111")

	if !RecolorCharacters(s, []string{a.ID, b.ID, "char_missing"}, "#abcdef") {
		t.Fatal("RecolorCharacters returned false")
	}
	if a.Color != "#abcdef" || b.Color != "#abcdef" {
		t.Errorf("colors = %q, %q", a.Color, b.Color)
	}
	if RecolorCharacters(s, []string{"char_missing"}, "#000000") {
		t.Error("recoloring only missing characters should report false")
	}
	if RecolorCharacters(s, []string{a.ID}, " ") {
		t.Error("blank color should be rejected")
	}

	if !MoveCharacter(s, a.ID, -5, 40) {
		t.Fatal("MoveCharacter returned false")
	}
	if a.X != 0 || a.Y != 40 {
		t.Errorf("position = (%v, %v), want (0, 40)", a.X, a.Y)
	}
}

func TestDeleteCharacters(t *testing.T) {
	s, a := newTestDialogue(t)
	b, _ := CreateCharacter(s, "Cy", "")

	if !DeleteCharacters(s, []string{a.ID}) {
		t.Fatal("DeleteCharacters returned false")
	}
	if s.Character(a.ID) != nil || s.Character(b.ID) == nil {
		t.Error("wrong character deleted")
	}
	if DeleteCharacters(s, []string{a.ID}) {
		t.Error("deleting twice should report false")
	}
}

func TestShortText(t *testing.T) {
	tests := []struct {
		fullText, seed, want string
	}{
		{"Hello there", "", "Hello"},
		{"  leading spaces", "", "leading"},
		{"line\nbreak", "", "line"},
		{"   ", "Interrupt", "Interrupt"},
		{"", "", DefaultNodeText},
	}
	for _, tt := range tests {
		if got := ShortText(tt.fullText, tt.seed); got != tt.want {
			t.Errorf("ShortText(%q, %q) = %q, want %q", tt.fullText, tt.seed, got, tt.want)
		}
	}
}

func TestCreateNode(t *testing.T) {
	_, c := newTestDialogue(t)
	d := c.Dialogue

	n, ok := CreateNode(d, "", 50, 50, "Hello there", "", "")
	if !ok {
		t.Fatal("CreateNode rejected valid text")
	}
	if n.Text != "Hello" {
		t.Errorf("Text = %q, want Hello", n.Text)
	}
	if n.Color != DefaultNodeColor {
		t.Errorf("Color = %q, want %q", n.Color, DefaultNodeColor)
	}
	if d.Node(n.ID) != n {
		t.Error("node not stored")
	}

	if _, ok := CreateNode(d, "", 0, 0, "", "", ""); ok {
		t.Error("empty full text should be rejected")
	}
	if len(d.Nodes) != 1 {
		t.Errorf("nodes = %d, want 1", len(d.Nodes))
	}

	blank, ok := CreateNode(d, "", 0, 0, "   ", "", "")
	if !ok || blank.Text != DefaultNodeText {
		t.Errorf("whitespace text: ok=%v text=%q", ok, blank.Text)
	}

	if _, ok := CreateNode(nil, "", 0, 0, "Hi", "", ""); ok {
		t.Error("nil dialogue should be rejected")
	}
}

func TestCreateRootAndOption(t *testing.T) {
	_, c := newTestDialogue(t)
	d := c.Dialogue

	root, ok := CreateRoot(d, "Good morning", "opener", "#ff0000")
	if !ok {
		t.Fatal("CreateRoot failed")
	}
	if root.X != RootX || root.Y != RootY {
		t.Errorf("root at (%v, %v)", root.X, root.Y)
	}

	opt, conn, ok := CreateOption(d, root.ID, "Reply", "Morning to you", "", "")
	if !ok {
		t.Fatal("CreateOption failed")
	}
	if opt.X != root.X+OptionOffsetX || opt.Y != root.Y {
		t.Errorf("option at (%v, %v)", opt.X, opt.Y)
	}
	if conn.From != root.ID || conn.To != opt.ID || conn.Text != "Reply" {
		t.Errorf("connection = %+v", conn)
	}
	if len(d.Connections) != 1 {
		t.Errorf("connections = %d, want 1", len(d.Connections))
	}

	if _, _, ok := CreateOption(d, "node_missing", "x", "y", "", ""); ok {
		t.Error("option from a missing node should be rejected")
	}
	if _, _, ok := CreateOption(d, root.ID, "x", "", "", ""); ok {
		t.Error("option with empty text should be rejected")
	}
	if len(d.Nodes) != 2 || len(d.Connections) != 1 {
		t.Errorf("rejected options changed the graph: %d nodes, %d connections", len(d.Nodes), len(d.Connections))
	}
}

func TestEditNodeText(t *testing.T) {
	_, c := newTestDialogue(t)
	d := c.Dialogue
	n, _ := CreateRoot(d, "Hello world", "", "")

	if !EditNodeText(d, n.ID, "  Goodbye now ", " later ") {
		t.Fatal("EditNodeText returned false")
	}
	if n.FullText != "Goodbye now" || n.Text != "Goodbye" || n.Notes != "later" {
		t.Errorf("node = %+v", n)
	}

	if EditNodeText(d, n.ID, "   ", "notes") {
		t.Error("blank text should be rejected")
	}
	if n.FullText != "Goodbye now" || n.Notes != "later" {
		t.Error("rejected edit modified the node")
	}
}

func TestEditConnectionLabel(t *testing.T) {
	_, c := newTestDialogue(t)
	d := c.Dialogue
	a, _ := CreateRoot(d, "A", "", "")
	CreateOption(d, a.ID, "Option", "B", "", "")

	if EditConnectionLabel(d, 0, "Option") {
		t.Error("unchanged label should report false")
	}
	if !EditConnectionLabel(d, 0, "Ask") {
		t.Error("changed label should report true")
	}
	if d.Connections[0].Text != "Ask" {
		t.Errorf("label = %q", d.Connections[0].Text)
	}
	if EditConnectionLabel(d, 5, "x") || EditConnectionLabel(d, -1, "x") {
		t.Error("out-of-range index should report false")
	}
}

func TestCreateInterruptionAnchorsByEndpoints(t *testing.T) {
	_, c := newTestDialogue(t)
	d := c.Dialogue
	a, _ := CreateRoot(d, "A", "", "")
	b, conn, _ := CreateOption(d, a.ID, "go", "B", "", "")

	n, in, ok := BranchConnection(d, 0, "")
	if !ok {
		t.Fatal("BranchConnection failed")
	}
	if in.From.FromNode != a.ID || in.From.ToNode != b.ID || in.To != n.ID {
		t.Errorf("interruption = %+v", in)
	}
	if in.Connection != conn.ID {
		t.Errorf("anchor connection = %q, want %q", in.Connection, conn.ID)
	}
	if n.Text != InterruptText || n.FullText != InterruptFullText {
		t.Errorf("interrupt node = %+v", n)
	}
	mx, my := (a.X+b.X)/2, (a.Y+b.Y)/2
	if n.X != mx+BranchOffset || n.Y != my+BranchOffset {
		t.Errorf("interrupt node at (%v, %v)", n.X, n.Y)
	}

	// Prepending a connection shifts indices; the anchor must not move.
	d.Connections = append([]Connection{{ID: "conn_x", From: b.ID, To: a.ID}}, d.Connections...)
	if got := d.AnchorIndex(in); got != 1 {
		t.Errorf("AnchorIndex = %d, want 1", got)
	}

	if _, ok := CreateInterruption(d, 9, n.ID); ok {
		t.Error("out-of-range connection should be rejected")
	}
}

func TestAnchorIndexFallsBackToEndpoints(t *testing.T) {
	d := NewDialogue()
	d.Connections = []Connection{{ID: "c1", From: "a", To: "b"}}

	legacy := Interruption{From: Anchor{FromNode: "a", ToNode: "b"}, To: "x"}
	if got := d.AnchorIndex(legacy); got != 0 {
		t.Errorf("legacy AnchorIndex = %d, want 0", got)
	}
	orphan := Interruption{From: Anchor{FromNode: "b", ToNode: "a"}, To: "x"}
	if got := d.AnchorIndex(orphan); got != -1 {
		t.Errorf("orphan AnchorIndex = %d, want -1", got)
	}
}

func TestDeleteNodesCascades(t *testing.T) {
	_, c := newTestDialogue(t)
	d := c.Dialogue
	a, _ := CreateRoot(d, "A", "", "")
	b, _, _ := CreateOption(d, a.ID, "1", "B", "", "")
	cc, _, _ := CreateOption(d, b.ID, "2", "C", "", "")
	CreateConnection(d, a.ID, cc.ID, "skip")
	BranchConnection(d, 0, "") // interrupts a→b
	BranchConnection(d, 1, "") // interrupts b→c

	for _, victim := range []string{a.ID, b.ID, cc.ID} {
		t.Run(d.Node(victim).Text, func(t *testing.T) {
			g := d.Clone()
			if !DeleteNodes(g, []string{victim}) {
				t.Fatal("DeleteNodes returned false")
			}
			if g.Node(victim) != nil {
				t.Error("node still present")
			}
			for _, conn := range g.Connections {
				if conn.From == victim || conn.To == victim {
					t.Errorf("connection %+v references deleted node", conn)
				}
			}
			for _, in := range g.Interruptions {
				if in.From.FromNode == victim || in.From.ToNode == victim || in.To == victim {
					t.Errorf("interruption %+v references deleted node", in)
				}
			}
		})
	}

	if DeleteNodes(d, nil) {
		t.Error("empty selection should report false")
	}
	if DeleteNodes(d, []string{"node_missing"}) {
		t.Error("deleting an unknown node should report false")
	}
}

func TestDeleteInterruptTargetKeepsConnection(t *testing.T) {
	_, c := newTestDialogue(t)
	d := c.Dialogue
	a, _ := CreateRoot(d, "A", "", "")
	CreateOption(d, a.ID, "1", "B", "", "")
	n, _, _ := BranchConnection(d, 0, "")

	DeleteNodes(d, []string{n.ID})
	if len(d.Connections) != 1 {
		t.Errorf("connections = %d, want 1", len(d.Connections))
	}
	if len(d.Interruptions) != 0 {
		t.Errorf("interruptions = %d, want 0", len(d.Interruptions))
	}
}

func TestRecolorAndMoveNodes(t *testing.T) {
	_, c := newTestDialogue(t)
	d := c.Dialogue
	a, _ := CreateRoot(d, "A", "", "")
	b, _ := CreateRoot(d, "B", "", "")

	if !RecolorNodes(d, []string{a.ID, b.ID}, "#123456") {
		t.Fatal("RecolorNodes returned false")
	}
	if a.Color != "#123456" || b.Color != "#123456" {
		t.Error("nodes not recolored")
	}
	if RecolorNodes(d, []string{"node_missing"}, "#000000") {
		t.Error("recoloring missing nodes should report false")
	}

	if !MoveNode(d, a.ID, 10, -10) || a.X != 10 || a.Y != 0 {
		t.Errorf("MoveNode: (%v, %v)", a.X, a.Y)
	}
	if MoveNode(d, "node_missing", 1, 1) {
		t.Error("moving a missing node should report false")
	}
}

func TestExampleScenario(t *testing.T) {
	s := NewState()
	bo, ok := CreateCharacter(s, "Bo", "#336699")
	if !ok {
		t.Fatal("create character")
	}
	d := bo.Dialogue
	n1, ok := CreateNode(d, "", 50, 50, "Hello world", "", "")
	if !ok {
		t.Fatal("create node")
	}
	DeleteNodes(d, []string{n1.ID})

	if len(d.Nodes) != 0 || len(d.Connections) != 0 {
		t.Errorf("nodes=%d connections=%d, want 0 and 0", len(d.Nodes), len(d.Connections))
	}
}

func TestCreateOptionAt(t *testing.T) {
	_, c := newTestDialogue(t)
	d := c.Dialogue
	root, _ := CreateRoot(d, "Hi", "", "")

	n, conn, ok := CreateOptionAt(d, root.ID, "Drop", 480, 20, "Dropped here", "", "")
	if !ok {
		t.Fatal("CreateOptionAt failed")
	}
	if n.X != 480 || n.Y != 20 {
		t.Errorf("node at (%v, %v)", n.X, n.Y)
	}
	if conn.From != root.ID || conn.To != n.ID || conn.Text != "Drop" {
		t.Errorf("connection = %+v", conn)
	}
	if _, _, ok := CreateOptionAt(d, root.ID, "x", 1, 1, "", "", ""); ok {
		t.Error("empty text should be rejected")
	}
	if len(d.Nodes) != 2 || len(d.Connections) != 1 {
		t.Errorf("graph has %d nodes, %d connections", len(d.Nodes), len(d.Connections))
	}
}

func TestSeedDialogue(t *testing.T) {
	_, c := newTestDialogue(t)
	d := c.Dialogue

	n, ok := SeedDialogue(d)
	if !ok {
		t.Fatal("empty dialogue was not seeded")
	}
	if n.Text != StartText || n.FullText != StartFullText || n.X != StartX || n.Y != StartY || n.Color != DefaultNodeColor {
		t.Errorf("start node = %+v", n)
	}
	if _, ok := SeedDialogue(d); ok {
		t.Error("seeding twice should be rejected")
	}
	if _, ok := SeedDialogue(nil); ok {
		t.Error("nil dialogue should be rejected")
	}
	if len(d.Nodes) != 1 {
		t.Errorf("nodes = %d, want 1", len(d.Nodes))
	}
}
