package dialogue

// ReconstructPath returns the ancestry chain of target: target first, then
// its predecessor, and so on back to a node with no incoming connection.
//
// Predecessors come from a single scan of the connection list in which
// predecessor[c.To] = c.From. When several connections lead to the same
// node the last one in the list wins, so the chain follows that branch
// only. The walk stops at the first repeated node, so cycles terminate.
//
// The result is meant for highlighting and is never empty for a non-empty
// target, even when target is not a node of d.
func ReconstructPath(d *Dialogue, target string) []string {
	if target == "" {
		return nil
	}
	pred := make(map[string]string)
	if d != nil {
		for _, c := range d.Connections {
			pred[c.To] = c.From
		}
	}

	path := []string{target}
	seen := map[string]bool{target: true}
	for cur := target; ; {
		prev, ok := pred[cur]
		if !ok || prev == "" || seen[prev] {
			return path
		}
		path = append(path, prev)
		seen[prev] = true
		cur = prev
	}
}
