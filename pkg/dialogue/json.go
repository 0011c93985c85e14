package dialogue

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Marshal encodes a state in the snapshot wire format:
//
//	{ "<charId>": { "id", "name", "icon", "color", "x", "y",
//	    "dialogue": { "nodes": { "<nodeId>": Node }, "connections": [...], "interruptions": [...] } } }
//
// Map keys are emitted in sorted order, so equal states produce identical
// bytes.
func Marshal(s State) ([]byte, error) {
	if s == nil {
		s = State{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// MarshalIndent is Marshal with two-space indentation, for files meant to be
// read by people.
func MarshalIndent(s State) ([]byte, error) {
	data, err := Marshal(s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, fmt.Errorf("indent state: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Unmarshal decodes a snapshot produced by Marshal (or by older editors that
// did not record connection IDs). The result is normalized; see Normalize.
// A JSON null decodes to an empty state.
func Unmarshal(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if s == nil {
		s = State{}
	}
	s.Normalize()
	return s, nil
}

// Normalize repairs a decoded state in place: missing dialogues and nil
// collections become empty, map keys fill missing IDs, connections without
// an ID get one, and interruptions anchored only by endpoints are linked to
// the matching connection's ID. Nil entries are dropped.
func (s State) Normalize() {
	for id, c := range s {
		if c == nil {
			delete(s, id)
			continue
		}
		if c.ID == "" {
			c.ID = id
		}
		if c.Dialogue == nil {
			c.Dialogue = NewDialogue()
		}
		c.Dialogue.normalize()
	}
}

func (d *Dialogue) normalize() {
	if d.Nodes == nil {
		d.Nodes = map[string]*Node{}
	}
	if d.Connections == nil {
		d.Connections = []Connection{}
	}
	if d.Interruptions == nil {
		d.Interruptions = []Interruption{}
	}
	for id, n := range d.Nodes {
		if n == nil {
			delete(d.Nodes, id)
			continue
		}
		if n.ID == "" {
			n.ID = id
		}
	}
	for i := range d.Connections {
		if d.Connections[i].ID == "" {
			d.Connections[i].ID = NewConnectionID()
		}
	}
	for i, in := range d.Interruptions {
		if in.Connection != "" {
			continue
		}
		if idx := d.AnchorIndex(in); idx >= 0 {
			d.Interruptions[i].Connection = d.Connections[idx].ID
		}
	}
}
