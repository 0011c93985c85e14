package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dialogtree/pkg/dialogue"
	"github.com/matzehuels/dialogtree/pkg/editor"
)

// List styles
var (
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

func (c *CLI) browseCommand() *cobra.Command {
	var character string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse dialogues in the terminal",
		Long: `Browse dialogues in the terminal. Moving through the node list highlights
the path that leads to the selected node.

The character opened first gets its starting node if its dialogue is empty.

Keys: ↑/↓ or j/k move, tab switches character, q quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				s := ed.State()
				if len(s) == 0 {
					printInfo("No characters yet")
					printNextStep("Create one", appName+" character add <name>")
					return nil
				}
				open := s.IDs()[0]
				if character != "" {
					ch, err := resolveCharacter(s, character)
					if err != nil {
						return err
					}
					open = ch.ID
				}
				if ed.EnsureStart(cmd.Context(), open) {
					s = ed.State()
				}
				m := NewBrowseModel(s)
				m.SelectCharacter(open)
				_, err := tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
				return err
			})
		},
	}

	c.characterFlag(cmd, &character)
	return cmd
}

// =============================================================================
// BrowseModel - Node list with path highlighting
// =============================================================================

// BrowseModel is the bubbletea model behind the browse command. It works on
// a snapshot and never edits.
type BrowseModel struct {
	State      dialogue.State
	Characters []string // character IDs in display order
	Char       int      // index into Characters
	Cursor     int      // index into the current node list
	Offset     int
	Height     int
}

// NewBrowseModel creates a browser positioned on the first character.
func NewBrowseModel(s dialogue.State) BrowseModel {
	return BrowseModel{
		State:      s,
		Characters: s.IDs(),
		Height:     15,
	}
}

// SelectCharacter moves the browser to character id.
func (m *BrowseModel) SelectCharacter(id string) {
	for i, cid := range m.Characters {
		if cid == id {
			m.Char, m.Cursor, m.Offset = i, 0, 0
			return
		}
	}
}

func (m BrowseModel) character() *dialogue.Character {
	if len(m.Characters) == 0 {
		return nil
	}
	return m.State[m.Characters[m.Char]]
}

func (m BrowseModel) nodes() []string {
	if ch := m.character(); ch != nil {
		return ch.Dialogue.NodeIDs()
	}
	return nil
}

// Selected returns the node under the cursor, or "".
func (m BrowseModel) Selected() string {
	ids := m.nodes()
	if m.Cursor < len(ids) {
		return ids[m.Cursor]
	}
	return ""
}

// Path returns the highlighted path: the selected node back to its root.
func (m BrowseModel) Path() []string {
	ch := m.character()
	if ch == nil {
		return nil
	}
	return dialogue.ReconstructPath(ch.Dialogue, m.Selected())
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.nodes())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "tab":
			if len(m.Characters) > 0 {
				m.Char = (m.Char + 1) % len(m.Characters)
				m.Cursor, m.Offset = 0, 0
			}
		case "shift+tab":
			if len(m.Characters) > 0 {
				m.Char = (m.Char + len(m.Characters) - 1) % len(m.Characters)
				m.Cursor, m.Offset = 0, 0
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m BrowseModel) View() string {
	var b strings.Builder

	ch := m.character()
	if ch == nil {
		return "No characters\n"
	}
	d := ch.Dialogue

	b.WriteString(StyleTitle.Render(ch.Icon + " " + ch.Name))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Char+1, len(m.Characters))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab character  q quit"))
	b.WriteString("\n\n")

	ids := d.NodeIDs()
	if len(ids) == 0 {
		b.WriteString(listDimStyle.Render("  no nodes"))
		b.WriteString("\n")
		return b.String()
	}

	onPath := make(map[string]int)
	path := m.Path()
	for i, id := range path {
		onPath[id] = len(path) - i
	}

	end := min(m.Offset+m.Height, len(ids))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := d.Nodes[ids[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		step := ""
		if depth, ok := onPath[n.ID]; ok {
			step = fmt.Sprint(depth)
		}
		rows = append(rows, []string{cursor, step, n.Text, truncate(n.FullText, 40), fmt.Sprint(len(d.Outgoing(n.ID)))})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Step", "Label", "Text", "Out").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(ids) {
				return lipgloss.NewStyle()
			}
			_, highlighted := onPath[ids[idx]]
			switch {
			case idx == m.Cursor:
				return StylePath
			case highlighted:
				return lipgloss.NewStyle().Foreground(colorOrange)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(m.detail(d))
	return b.String()
}

// detail renders the selected node's text and options.
func (m BrowseModel) detail(d *dialogue.Dialogue) string {
	n := d.Node(m.Selected())
	if n == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(StyleHighlight.Render(n.FullText))
	if n.Notes != "" {
		b.WriteString("\n" + StyleDim.Render(n.Notes))
	}
	for _, i := range d.Outgoing(n.ID) {
		conn := d.Connections[i]
		target := "(missing)"
		if t := d.Node(conn.To); t != nil {
			target = t.Text
		}
		fmt.Fprintf(&b, "\n%s %s %s", StyleValue.Render(conn.Text), iconArrow, target)
	}
	return detailBoxStyle.Render(b.String())
}
