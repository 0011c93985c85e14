package editor

import (
	"context"

	"github.com/matzehuels/dialogtree/pkg/dialogue"
)

// =============================================================================
// Characters
// =============================================================================

// CreateCharacter adds a character with an empty dialogue and returns a copy
// of it.
func (e *Editor) CreateCharacter(ctx context.Context, name, color string) (*dialogue.Character, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := dialogue.CreateCharacter(e.state, name, color)
	if !e.commit(ctx, "create_character", ok) {
		return nil, false
	}
	return c.Clone(), true
}

// EditCharacterInfo renames a character and sets its icon.
func (e *Editor) EditCharacterInfo(ctx context.Context, id, name, icon string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commit(ctx, "edit_character", dialogue.EditCharacterInfo(e.state, id, name, icon))
}

// RecolorCharacters sets the color of every listed character.
func (e *Editor) RecolorCharacters(ctx context.Context, ids []string, color string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commit(ctx, "recolor_characters", dialogue.RecolorCharacters(e.state, ids, color))
}

// MoveCharacter moves a character's card.
func (e *Editor) MoveCharacter(ctx context.Context, id string, x, y float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commit(ctx, "move_character", dialogue.MoveCharacter(e.state, id, x, y))
}

// DeleteCharacters removes the listed characters and their dialogues.
func (e *Editor) DeleteCharacters(ctx context.Context, ids []string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commit(ctx, "delete_characters", dialogue.DeleteCharacters(e.state, ids))
}

// =============================================================================
// Nodes
// =============================================================================

// CreateRoot adds a starting node to a character's dialogue.
func (e *Editor) CreateRoot(ctx context.Context, charID, fullText, notes, color string) (dialogue.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := dialogue.CreateRoot(e.dialogueOf(charID), fullText, notes, color)
	if !e.commit(ctx, "create_root", ok) {
		return dialogue.Node{}, false
	}
	return *n, true
}

// CreateNode adds a node at (x, y). The label is the first word of fullText,
// else seed.
func (e *Editor) CreateNode(ctx context.Context, charID, seed string, x, y float64, fullText, notes, color string) (dialogue.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := dialogue.CreateNode(e.dialogueOf(charID), seed, x, y, fullText, notes, color)
	if !e.commit(ctx, "create_node", ok) {
		return dialogue.Node{}, false
	}
	return *n, true
}

// CreateOption adds a node after from, connected by a labelled option. An
// empty label becomes dialogue.DefaultConnectionLabel.
func (e *Editor) CreateOption(ctx context.Context, charID, from, label, fullText, notes, color string) (dialogue.Node, dialogue.Connection, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, c, ok := dialogue.CreateOption(e.dialogueOf(charID), from, orDefaultLabel(label), fullText, notes, color)
	if !e.commit(ctx, "create_option", ok) {
		return dialogue.Node{}, dialogue.Connection{}, false
	}
	return *n, c, true
}

// CreateOptionAt is CreateOption with the node placed at (x, y). It finishes
// a cancelled connect gesture in a single edit.
func (e *Editor) CreateOptionAt(ctx context.Context, charID, from, label string, x, y float64, fullText, notes, color string) (dialogue.Node, dialogue.Connection, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, c, ok := dialogue.CreateOptionAt(e.dialogueOf(charID), from, orDefaultLabel(label), x, y, fullText, notes, color)
	if !e.commit(ctx, "create_option", ok) {
		return dialogue.Node{}, dialogue.Connection{}, false
	}
	return *n, c, true
}

// EnsureStart gives a character's empty dialogue its starting node, as
// opening it in the editor does. It returns false when the dialogue already
// has nodes or the character does not exist.
func (e *Editor) EnsureStart(ctx context.Context, charID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := e.dialogueOf(charID)
	if d == nil || len(d.Nodes) > 0 {
		return false
	}
	_, ok := dialogue.SeedDialogue(d)
	return e.commit(ctx, "seed_dialogue", ok)
}

// EditNodeText replaces a node's text and notes.
func (e *Editor) EditNodeText(ctx context.Context, charID, node, fullText, notes string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commit(ctx, "edit_node", dialogue.EditNodeText(e.dialogueOf(charID), node, fullText, notes))
}

// RecolorNodes sets the color of every listed node.
func (e *Editor) RecolorNodes(ctx context.Context, charID string, ids []string, color string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commit(ctx, "recolor_nodes", dialogue.RecolorNodes(e.dialogueOf(charID), ids, color))
}

// MoveNode moves one node.
func (e *Editor) MoveNode(ctx context.Context, charID, node string, x, y float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commit(ctx, "move_node", dialogue.MoveNode(e.dialogueOf(charID), node, x, y))
}

// DeleteNodes removes nodes together with every connection and interruption
// that references them.
func (e *Editor) DeleteNodes(ctx context.Context, charID string, ids []string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commit(ctx, "delete_nodes", dialogue.DeleteNodes(e.dialogueOf(charID), ids))
}

// =============================================================================
// Connections
// =============================================================================

// ConnectResult is the outcome of a connect gesture.
type ConnectResult int

const (
	// ConnectCancelled means nothing was created: the gesture ended on no
	// node, on its own origin, or on a node that does not exist. Callers
	// typically follow up with CreateOptionAt at the drop point.
	ConnectCancelled ConnectResult = iota
	// ConnectCreated means a new connection was added.
	ConnectCreated
)

func (r ConnectResult) String() string {
	if r == ConnectCreated {
		return "created"
	}
	return "cancelled"
}

// ConnectNodes completes a drag from node from onto node to. An empty label
// becomes "Option".
func (e *Editor) ConnectNodes(ctx context.Context, charID, from, to, label string) (ConnectResult, dialogue.Connection) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := e.dialogueOf(charID)
	if to == "" || to == from || d.Node(from) == nil || d.Node(to) == nil {
		e.commit(ctx, "connect", false)
		return ConnectCancelled, dialogue.Connection{}
	}
	c, ok := dialogue.CreateConnection(d, from, to, orDefaultLabel(label))
	if !e.commit(ctx, "connect", ok) {
		return ConnectCancelled, dialogue.Connection{}
	}
	return ConnectCreated, c
}

// EditConnectionLabel relabels the connection at index. Setting the label it
// already has is not an edit.
func (e *Editor) EditConnectionLabel(ctx context.Context, charID string, index int, text string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commit(ctx, "edit_label", dialogue.EditConnectionLabel(e.dialogueOf(charID), index, text))
}

// CreateInterruption branches the connection at index off to an existing
// node.
func (e *Editor) CreateInterruption(ctx context.Context, charID string, index int, node string) (dialogue.Interruption, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := e.dialogueOf(charID)
	if d.Node(node) == nil {
		return dialogue.Interruption{}, e.commit(ctx, "interrupt", false)
	}
	in, ok := dialogue.CreateInterruption(d, index, node)
	return in, e.commit(ctx, "interrupt", ok)
}

// BranchConnection interrupts the connection at index with a fresh
// "Interrupt" node.
func (e *Editor) BranchConnection(ctx context.Context, charID string, index int, color string) (dialogue.Node, dialogue.Interruption, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, in, ok := dialogue.BranchConnection(e.dialogueOf(charID), index, color)
	if !e.commit(ctx, "branch", ok) {
		return dialogue.Node{}, dialogue.Interruption{}, false
	}
	return *n, in, true
}

func orDefaultLabel(label string) string {
	if label == "" {
		return dialogue.DefaultConnectionLabel
	}
	return label
}
