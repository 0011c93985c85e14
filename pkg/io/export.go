package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/dialogtree/pkg/dialogue"
	"github.com/matzehuels/dialogtree/pkg/errors"
)

// WriteJSON encodes s as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(s dialogue.State, w io.Writer) error {
	data, err := dialogue.MarshalIndent(s)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ExportJSON writes s to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(s dialogue.State, path string) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(s, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Subset returns a copy of s holding only the listed characters. Unknown
// IDs are skipped.
func Subset(s dialogue.State, ids []string) dialogue.State {
	out := dialogue.NewState()
	for _, id := range ids {
		if c := s.Character(id); c != nil {
			out[id] = c.Clone()
		}
	}
	return out
}
