package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/dialogtree/pkg/dialogue"
	"github.com/matzehuels/dialogtree/pkg/errors"
)

// ReadJSON decodes a snapshot from r.
//
// ReadJSON returns a DECODE_FAILED error if the input is not a JSON object
// of characters. It does not close r.
func ReadJSON(r io.Reader) (dialogue.State, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	s, err := dialogue.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailed, err, "not a dialogue snapshot")
	}
	return s, nil
}

// ImportJSON reads a snapshot file at path.
func ImportJSON(path string) (dialogue.State, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "no file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// Check returns one message per reference in s that does not resolve:
// connections with a missing endpoint and interruptions whose anchor
// connection or target node is gone. Messages are ordered by character,
// then by position.
func Check(s dialogue.State) []string {
	var problems []string
	for _, cid := range s.IDs() {
		d := s[cid].Dialogue
		if d == nil {
			continue
		}
		for i, c := range d.Connections {
			if !d.Live(c) {
				problems = append(problems, fmt.Sprintf("%s: connection %d (%s -> %s) has a missing endpoint", cid, i, c.From, c.To))
			}
		}
		for i, in := range d.Interruptions {
			if d.AnchorIndex(in) < 0 {
				problems = append(problems, fmt.Sprintf("%s: interruption %d is anchored on a missing connection", cid, i))
			}
			if d.Node(in.To) == nil {
				problems = append(problems, fmt.Sprintf("%s: interruption %d leads to missing node %s", cid, i, in.To))
			}
		}
	}
	return problems
}
