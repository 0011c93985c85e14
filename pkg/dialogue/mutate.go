package dialogue

import (
	"math"
	"slices"
	"strings"
)

// Every mutator edits its argument in place and reports whether anything
// changed. A false result means the input was rejected or was a no-op; the
// caller must then skip recording history and persisting.

// =============================================================================
// Characters
// =============================================================================

// CreateCharacter adds a character named name with an empty dialogue.
// The name is trimmed; an empty name is rejected.
func CreateCharacter(s State, name, color string) (*Character, bool) {
	name = strings.TrimSpace(name)
	if s == nil || name == "" {
		return nil, false
	}
	c := &Character{
		ID:       NewCharacterID(),
		Name:     name,
		Icon:     DefaultIcon,
		Color:    orDefault(color, DefaultCharacterColor),
		X:        RootX,
		Y:        RootY,
		Dialogue: NewDialogue(),
	}
	s[c.ID] = c
	return c, true
}

// EditCharacterInfo sets a character's name and icon. Blank values fall back
// to DefaultCharacterName and DefaultIcon.
func EditCharacterInfo(s State, id, name, icon string) bool {
	c := s.Character(id)
	if c == nil {
		return false
	}
	c.Name = orDefault(name, DefaultCharacterName)
	c.Icon = orDefault(icon, DefaultIcon)
	return true
}

// RecolorCharacters sets the color of every listed character that exists.
func RecolorCharacters(s State, ids []string, color string) bool {
	color = strings.TrimSpace(color)
	if color == "" {
		return false
	}
	changed := false
	for _, id := range ids {
		if c := s.Character(id); c != nil {
			c.Color = color
			changed = true
		}
	}
	return changed
}

// MoveCharacter places a character on the overview canvas. Negative
// coordinates are clamped to zero.
func MoveCharacter(s State, id string, x, y float64) bool {
	c := s.Character(id)
	if c == nil {
		return false
	}
	c.X, c.Y = clamp(x), clamp(y)
	return true
}

// DeleteCharacters removes the listed characters together with their
// dialogues.
func DeleteCharacters(s State, ids []string) bool {
	changed := false
	for _, id := range ids {
		if _, ok := s[id]; ok {
			delete(s, id)
			changed = true
		}
	}
	return changed
}

// =============================================================================
// Nodes
// =============================================================================

// ShortText derives a node's label from its full text: the first
// whitespace-delimited word, else seed, else DefaultNodeText.
func ShortText(fullText, seed string) string {
	if f := strings.Fields(fullText); len(f) > 0 {
		return f[0]
	}
	return orDefault(seed, DefaultNodeText)
}

// CreateNode adds a node at (x, y). An empty fullText is rejected, as is a
// nil dialogue (no dialogue is being edited).
func CreateNode(d *Dialogue, seed string, x, y float64, fullText, notes, color string) (*Node, bool) {
	if d == nil || fullText == "" {
		return nil, false
	}
	if d.Nodes == nil {
		d.Nodes = map[string]*Node{}
	}
	n := &Node{
		ID:       NewNodeID(),
		Text:     ShortText(fullText, seed),
		FullText: fullText,
		Notes:    notes,
		X:        clamp(x),
		Y:        clamp(y),
		Color:    orDefault(color, DefaultNodeColor),
	}
	d.Nodes[n.ID] = n
	return n, true
}

// CreateRoot adds a starting node at the default root position.
func CreateRoot(d *Dialogue, fullText, notes, color string) (*Node, bool) {
	return CreateNode(d, "", RootX, RootY, fullText, notes, color)
}

// CreateOption adds a node to the right of from and connects from to it with
// the given label. Both the node and the connection are created or neither.
func CreateOption(d *Dialogue, from, label, fullText, notes, color string) (*Node, Connection, bool) {
	src := d.Node(from)
	if src == nil {
		return nil, Connection{}, false
	}
	return CreateOptionAt(d, from, label, src.X+OptionOffsetX, src.Y, fullText, notes, color)
}

// CreateOptionAt is CreateOption with the new node placed at (x, y), where a
// connect gesture was dropped.
func CreateOptionAt(d *Dialogue, from, label string, x, y float64, fullText, notes, color string) (*Node, Connection, bool) {
	if d.Node(from) == nil || fullText == "" {
		return nil, Connection{}, false
	}
	n, ok := CreateNode(d, "", x, y, fullText, notes, color)
	if !ok {
		return nil, Connection{}, false
	}
	c, _ := CreateConnection(d, from, n.ID, label)
	return n, c, true
}

// SeedDialogue gives an empty dialogue its starting node. A dialogue that
// already has nodes is left alone.
func SeedDialogue(d *Dialogue) (*Node, bool) {
	if d == nil || len(d.Nodes) > 0 {
		return nil, false
	}
	n, ok := CreateNode(d, StartText, StartX, StartY, StartFullText, "", "")
	if !ok {
		return nil, false
	}
	n.Text = StartText
	return n, true
}

// EditNodeText replaces a node's full text and notes and re-derives its
// short text. Both inputs are trimmed; an empty full text is rejected.
func EditNodeText(d *Dialogue, id, fullText, notes string) bool {
	n := d.Node(id)
	fullText = strings.TrimSpace(fullText)
	if n == nil || fullText == "" {
		return false
	}
	n.FullText = fullText
	n.Notes = strings.TrimSpace(notes)
	n.Text = ShortText(fullText, "")
	return true
}

// RecolorNodes sets the color of every listed node that exists.
func RecolorNodes(d *Dialogue, ids []string, color string) bool {
	color = strings.TrimSpace(color)
	if color == "" {
		return false
	}
	changed := false
	for _, id := range ids {
		if n := d.Node(id); n != nil {
			n.Color = color
			changed = true
		}
	}
	return changed
}

// MoveNode places a node on the dialogue canvas. Negative coordinates are
// clamped to zero.
func MoveNode(d *Dialogue, id string, x, y float64) bool {
	n := d.Node(id)
	if n == nil {
		return false
	}
	n.X, n.Y = clamp(x), clamp(y)
	return true
}

// DeleteNodes removes every listed node and, in the same edit, every
// connection touching one of them and every interruption whose anchor
// endpoints or target is one of them. Nothing referring to a deleted node
// survives.
func DeleteNodes(d *Dialogue, ids []string) bool {
	if d == nil || len(ids) == 0 {
		return false
	}
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
	}

	before := len(d.Nodes) + len(d.Connections) + len(d.Interruptions)
	for id := range gone {
		delete(d.Nodes, id)
	}
	d.Connections = slices.DeleteFunc(d.Connections, func(c Connection) bool {
		return gone[c.From] || gone[c.To]
	})
	d.Interruptions = slices.DeleteFunc(d.Interruptions, func(in Interruption) bool {
		return gone[in.From.FromNode] || gone[in.From.ToNode] || gone[in.To]
	})
	return len(d.Nodes)+len(d.Connections)+len(d.Interruptions) != before
}

// =============================================================================
// Connections & Interruptions
// =============================================================================

// CreateConnection appends a connection from → to. Endpoints are not
// validated here; in particular rejecting self-loops is the caller's job.
func CreateConnection(d *Dialogue, from, to, label string) (Connection, bool) {
	if d == nil {
		return Connection{}, false
	}
	c := Connection{ID: NewConnectionID(), From: from, To: to, Text: label}
	d.Connections = append(d.Connections, c)
	return c, true
}

// EditConnectionLabel sets the label of the connection at index. It reports
// false when the index is out of range or the label is unchanged.
func EditConnectionLabel(d *Dialogue, index int, text string) bool {
	if d == nil || index < 0 || index >= len(d.Connections) {
		return false
	}
	if d.Connections[index].Text == text {
		return false
	}
	d.Connections[index].Text = text
	return true
}

// CreateInterruption anchors an interruption leading to node on the
// connection at index. The anchor records the connection's current endpoints
// and ID, not its index, so later reordering does not move it.
func CreateInterruption(d *Dialogue, index int, node string) (Interruption, bool) {
	if d == nil || index < 0 || index >= len(d.Connections) || node == "" {
		return Interruption{}, false
	}
	c := d.Connections[index]
	in := Interruption{
		From:       Anchor{FromNode: c.From, ToNode: c.To},
		To:         node,
		Connection: c.ID,
	}
	d.Interruptions = append(d.Interruptions, in)
	return in, true
}

// BranchConnection interrupts the connection at index: it creates an
// "Interrupt" node offset from the connection's midpoint and anchors an
// interruption to it.
func BranchConnection(d *Dialogue, index int, color string) (*Node, Interruption, bool) {
	if d == nil || index < 0 || index >= len(d.Connections) {
		return nil, Interruption{}, false
	}
	mx, my := d.Midpoint(d.Connections[index])
	n, ok := CreateNode(d, InterruptText, mx+BranchOffset, my+BranchOffset, InterruptFullText, "", color)
	if !ok {
		return nil, Interruption{}, false
	}
	in, _ := CreateInterruption(d, index, n.ID)
	return n, in, true
}

// =============================================================================
// Helpers
// =============================================================================

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, v)
}
