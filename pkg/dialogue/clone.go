package dialogue

// Clone returns a deep copy of the state. The copy shares no maps, slices or
// pointers with s, so later edits to either side are never visible in the
// other. History snapshots rely on this.
func (s State) Clone() State {
	if s == nil {
		return nil
	}
	out := make(State, len(s))
	for id, c := range s {
		out[id] = c.Clone()
	}
	return out
}

// Clone returns a deep copy of the character and its dialogue.
func (c *Character) Clone() *Character {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Dialogue = c.Dialogue.Clone()
	return &cp
}

// Clone returns a deep copy of the dialogue. Nil collections stay nil.
func (d *Dialogue) Clone() *Dialogue {
	if d == nil {
		return nil
	}
	cp := &Dialogue{}
	if d.Nodes != nil {
		cp.Nodes = make(map[string]*Node, len(d.Nodes))
		for id, n := range d.Nodes {
			if n == nil {
				cp.Nodes[id] = nil
				continue
			}
			nn := *n
			cp.Nodes[id] = &nn
		}
	}
	if d.Connections != nil {
		cp.Connections = append(make([]Connection, 0, len(d.Connections)), d.Connections...)
	}
	if d.Interruptions != nil {
		cp.Interruptions = append(make([]Interruption, 0, len(d.Interruptions)), d.Interruptions...)
	}
	return cp
}
