package dialogue

import (
	"maps"
	"reflect"
	"slices"
)

// =============================================================================
// Defaults
// =============================================================================

// Default values applied by the mutators when the caller leaves a field blank.
const (
	DefaultIcon            = "👤"
	DefaultCharacterName   = "Char"
	DefaultCharacterColor  = "#4a90e2"
	DefaultNodeColor       = "#ffffff"
	DefaultNodeText        = "Node"
	DefaultConnectionLabel = "Option"
)

// Placement offsets used when the editor positions new nodes on its own.
const (
	RootX         = 100.0
	RootY         = 100.0
	OptionOffsetX = 250.0
	BranchOffset  = 50.0
)

// The node an empty dialogue starts with.
const (
	StartText     = "Talk"
	StartFullText = "Start of the conversation"
	StartX        = 50.0
	StartY        = 50.0
)

// Labels of the node created when a connection is interrupted.
const (
	InterruptText     = "Interrupt"
	InterruptFullText = "Interrupt Dialogue"
)

// =============================================================================
// State - All Characters
// =============================================================================

// State is the complete editor content: every character keyed by its ID.
// It is the unit of history snapshots and persistence.
type State map[string]*Character

// NewState returns an empty state.
func NewState() State { return State{} }

// Character returns the character with the given ID, or nil.
func (s State) Character(id string) *Character {
	if s == nil {
		return nil
	}
	return s[id]
}

// IDs returns the character IDs in ascending order. Generated IDs are
// time-ordered, so this is also creation order.
func (s State) IDs() []string {
	return slices.Sorted(maps.Keys(s))
}

// Equal reports whether two states hold identical content.
func (s State) Equal(o State) bool {
	if len(s) == 0 && len(o) == 0 {
		return true
	}
	return reflect.DeepEqual(s, o)
}

// =============================================================================
// Character
// =============================================================================

// Character owns exactly one dialogue graph. X and Y are the character's
// position on the overview canvas.
type Character struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Icon     string    `json:"icon"`
	Color    string    `json:"color"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Dialogue *Dialogue `json:"dialogue"`
}

// =============================================================================
// Dialogue Graph
// =============================================================================

// Dialogue is a character's graph of dialogue nodes. Connections and
// interruptions are ordered edge lists; duplicates are allowed.
type Dialogue struct {
	Nodes         map[string]*Node `json:"nodes"`
	Connections   []Connection     `json:"connections"`
	Interruptions []Interruption   `json:"interruptions"`
}

// NewDialogue returns an empty dialogue with non-nil collections.
func NewDialogue() *Dialogue {
	return &Dialogue{
		Nodes:         map[string]*Node{},
		Connections:   []Connection{},
		Interruptions: []Interruption{},
	}
}

// Node is a single line of dialogue. Text is the short label derived from
// the first word of FullText whenever FullText is written.
type Node struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	FullText string  `json:"fullText"`
	Notes    string  `json:"notes"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Color    string  `json:"color"`
}

// Connection is a directed, labeled dialogue option from one node to another.
// ID is stable for the lifetime of the connection and is what interruptions
// anchor to.
type Connection struct {
	ID   string `json:"id,omitempty"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

// Anchor identifies the connection an interruption branches off, by its
// endpoints.
type Anchor struct {
	FromNode string `json:"fromNode"`
	ToNode   string `json:"toNode"`
}

// Interruption is a secondary branch that leaves an existing connection and
// leads to node To. Connection holds the anchoring connection's ID when it
// was known at creation; From holds its endpoints.
type Interruption struct {
	From       Anchor `json:"from"`
	To         string `json:"to"`
	Connection string `json:"connection,omitempty"`
}

// =============================================================================
// Queries
// =============================================================================

// Node returns the node with the given ID, or nil.
func (d *Dialogue) Node(id string) *Node {
	if d == nil {
		return nil
	}
	return d.Nodes[id]
}

// NodeIDs returns node IDs in ascending (creation) order.
func (d *Dialogue) NodeIDs() []string {
	if d == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(d.Nodes))
}

// Live reports whether both endpoints of c exist. Connections with dangling
// endpoints are inert: they are kept but neither drawn nor traversed.
func (d *Dialogue) Live(c Connection) bool {
	return d.Node(c.From) != nil && d.Node(c.To) != nil
}

// AnchorIndex returns the index of the connection an interruption branches
// off, or -1 when no such connection exists (the interruption is inert).
// The stable connection ID is preferred; the endpoint pair is the fallback
// for interruptions recorded without one.
func (d *Dialogue) AnchorIndex(in Interruption) int {
	if d == nil {
		return -1
	}
	if in.Connection != "" {
		for i, c := range d.Connections {
			if c.ID == in.Connection {
				return i
			}
		}
	}
	for i, c := range d.Connections {
		if c.From == in.From.FromNode && c.To == in.From.ToNode {
			return i
		}
	}
	return -1
}

// Outgoing returns the indices of connections leaving node id, in order.
func (d *Dialogue) Outgoing(id string) []int {
	if d == nil {
		return nil
	}
	var out []int
	for i, c := range d.Connections {
		if c.From == id {
			out = append(out, i)
		}
	}
	return out
}

// Midpoint returns the point halfway between the endpoints of connection c.
// A missing endpoint is treated as sitting on the other one.
func (d *Dialogue) Midpoint(c Connection) (x, y float64) {
	from, to := d.Node(c.From), d.Node(c.To)
	switch {
	case from != nil && to != nil:
		return (from.X + to.X) / 2, (from.Y + to.Y) / 2
	case from != nil:
		return from.X, from.Y
	case to != nil:
		return to.X, to.Y
	}
	return 0, 0
}
