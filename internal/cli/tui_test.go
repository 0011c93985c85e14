package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/dialogtree/pkg/dialogue"
)

func press(m BrowseModel, key string) BrowseModel {
	var msg tea.KeyMsg
	switch key {
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(BrowseModel)
}

func TestBrowseModelNavigation(t *testing.T) {
	s := dialogue.NewState()
	bo, _ := dialogue.CreateCharacter(s, "Bo", "")
	root, _ := dialogue.CreateRoot(bo.Dialogue, "Hello", "", "")
	opt, _, _ := dialogue.CreateOption(bo.Dialogue, root.ID, "Ask", "Where to?", "", "")
	cy, _ := dialogue.CreateCharacter(s, "Cy", "")

	m := NewBrowseModel(s)
	m.SelectCharacter(bo.ID)
	if m.Selected() != root.ID {
		t.Fatalf("selected %q, want the first node", m.Selected())
	}

	m = press(m, "j")
	if m.Selected() != opt.ID {
		t.Fatalf("after down: selected %q", m.Selected())
	}
	if got := m.Path(); len(got) != 2 || got[0] != opt.ID || got[1] != root.ID {
		t.Errorf("path = %v", got)
	}
	view := m.View()
	if !strings.Contains(view, "Where to?") || !strings.Contains(view, "Ask") {
		t.Errorf("view misses the selected node:\n%s", view)
	}

	m = press(m, "down")
	if m.Cursor != 1 {
		t.Errorf("cursor moved past the last node: %d", m.Cursor)
	}
	m = press(m, "up")
	if m.Cursor != 0 {
		t.Errorf("cursor = %d after up", m.Cursor)
	}

	m = press(m, "tab")
	if m.Characters[m.Char] != cy.ID || m.Selected() != "" {
		t.Errorf("tab should switch to the empty character")
	}
	if !strings.Contains(m.View(), "no nodes") {
		t.Error("empty character view")
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q should quit")
	}
}

func TestBrowseModelResize(t *testing.T) {
	m := NewBrowseModel(dialogue.NewState())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	if got := next.(BrowseModel).Height; got != 5 {
		t.Errorf("height = %d, want the minimum 5", got)
	}
	if !strings.Contains(m.View(), "No characters") {
		t.Error("empty state view")
	}
}
