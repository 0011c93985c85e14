package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/dialogtree/pkg/dialogue"
	"github.com/matzehuels/dialogtree/pkg/errors"
)

func sample() dialogue.State {
	s := dialogue.NewState()
	bo, _ := dialogue.CreateCharacter(s, "Bo", "#336699")
	a, _ := dialogue.CreateRoot(bo.Dialogue, "Hello world", "", "")
	dialogue.CreateOption(bo.Dialogue, a.ID, "Wave", "Hi", "", "")
	dialogue.BranchConnection(bo.Dialogue, 0, "")
	dialogue.CreateCharacter(s, "Cy", "")
	return s
}

func TestExportImportRoundTrip(t *testing.T) {
	s := sample()
	path := filepath.Join(t.TempDir(), "story.json")

	if err := ExportJSON(s, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if !got.Equal(s) {
		t.Error("round trip changed the state")
	}

	raw, _ := os.ReadFile(path)
	if !bytes.HasSuffix(raw, []byte("}\n")) {
		t.Error("export should end with a newline")
	}
}

func TestWriteJSONIndents(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sample(), &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\n  \"char_") {
		t.Errorf("output is not indented:\n%s", buf.String())
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"array", `[1, 2, 3]`},
		{"truncated", `{"char_1": {`},
		{"wrong field type", `{"char_1": {"name": 5}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if !errors.Is(err, errors.ErrCodeDecodeFailed) {
				t.Errorf("error = %v, want DECODE_FAILED", err)
			}
		})
	}
}

func TestImportJSONMissingFile(t *testing.T) {
	_, err := ImportJSON(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := ImportJSON(""); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("empty path error = %v, want INVALID_PATH", err)
	}
}

func TestCheck(t *testing.T) {
	s := sample()
	if p := Check(s); len(p) != 0 {
		t.Fatalf("clean state reported problems: %v", p)
	}

	for _, c := range s {
		if len(c.Dialogue.Connections) == 0 {
			continue
		}
		// Break references the way a hand edit would.
		c.Dialogue.Connections[0].To = "node_gone"
		c.Dialogue.Interruptions[0].To = "node_gone_too"
		c.Dialogue.Interruptions[0].Connection = "conn_gone"
	}

	problems := Check(s)
	if len(problems) != 3 {
		t.Fatalf("problems = %v, want 3", problems)
	}
	if !strings.Contains(problems[0], "missing endpoint") {
		t.Errorf("first problem = %q", problems[0])
	}
}

func TestSubset(t *testing.T) {
	s := sample()
	ids := s.IDs()

	got := Subset(s, []string{ids[0], "char_missing"})
	if len(got) != 1 || got[ids[0]] == nil {
		t.Fatalf("Subset = %v", got.IDs())
	}
	got[ids[0]].Name = "changed"
	if s[ids[0]].Name == "changed" {
		t.Error("Subset should copy characters")
	}
}
