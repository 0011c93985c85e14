package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dialogtree/pkg/dialogue"
	"github.com/matzehuels/dialogtree/pkg/editor"
)

func (c *CLI) pathCommand() *cobra.Command {
	var character string

	cmd := &cobra.Command{
		Use:   "path <node>",
		Short: "Show the chain of nodes leading to a node",
		Long: `Show the chain of nodes leading to <node>, from the start of the
dialogue down to the node itself.

When several options lead into a node, the one added last is followed.
Cycles stop the walk at the first repeated node.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				ch, err := c.characterIn(ed, character)
				if err != nil {
					return err
				}
				id, err := resolveNode(ch.Dialogue, args[0])
				if err != nil {
					return err
				}
				path, err := ed.Path(ch.ID, id)
				if err != nil {
					return err
				}
				printPath(ch.Dialogue, path)
				return nil
			})
		},
	}

	c.characterFlag(cmd, &character)
	return cmd
}

// printPath prints a target-to-root path top down.
func printPath(d *dialogue.Dialogue, path []string) {
	printInfo("%d node(s) on the path", len(path))
	for i, id := range slices.Backward(path) {
		depth := len(path) - 1 - i
		prefix := strings.Repeat("  ", depth)
		if depth > 0 {
			prefix += iconArrow + " "
		}
		label := "(missing)"
		if n := d.Node(id); n != nil {
			label = n.Text
		}
		fmt.Fprintf(stdout, "%s%s %s\n", prefix, StylePath.Render(label), StyleDim.Render(shortID(id)))
	}
}

func (c *CLI) showCommand() *cobra.Command {
	var character string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a dialogue, or all characters",
		Long: `Show one character's dialogue: every node with its outgoing options and
the interruptions branching off them. Connection indices are the ones
"label", "branch" and "interrupt" take.

An empty dialogue gets its starting node, "`+dialogue.StartText+`", when shown.
Without a character, every character is summarized.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				if character == "" && c.current == "" {
					showAll(ed.State())
					return nil
				}
				ch, err := c.characterIn(ed, character)
				if err != nil {
					return err
				}
				if ed.EnsureStart(cmd.Context(), ch.ID) {
					if ch, err = ed.Character(ch.ID); err != nil {
						return err
					}
				}
				showCharacter(ch)
				return nil
			})
		},
	}

	c.characterFlag(cmd, &character)
	return cmd
}

func showAll(s dialogue.State) {
	if len(s) == 0 {
		printInfo("No characters yet")
		return
	}
	for _, id := range s.IDs() {
		ch := s[id]
		fmt.Fprintln(stdout, StyleTitle.Render(ch.Icon+" "+ch.Name)+" "+StyleDim.Render(shortID(id)))
		d := ch.Dialogue
		printCounts(len(d.Nodes), len(d.Connections), len(d.Interruptions))
	}
}

func showCharacter(ch *dialogue.Character) {
	d := ch.Dialogue
	fmt.Fprintln(stdout, StyleTitle.Render(ch.Icon+" "+ch.Name)+" "+StyleDim.Render(ch.ID))
	printCounts(len(d.Nodes), len(d.Connections), len(d.Interruptions))
	printNewline()

	// Interruptions grouped by the connection they branch off.
	branches := make(map[int][]string)
	for _, in := range d.Interruptions {
		if i := d.AnchorIndex(in); i >= 0 && d.Node(in.To) != nil {
			branches[i] = append(branches[i], in.To)
		}
	}

	for _, id := range d.NodeIDs() {
		n := d.Nodes[id]
		fmt.Fprintf(stdout, "%s %s %s\n", StyleHighlight.Render(n.Text), StyleDim.Render(shortID(id)), truncate(n.FullText, 60))
		if n.Notes != "" {
			printDetail("notes: %s", truncate(n.Notes, 60))
		}
		for _, i := range d.Outgoing(id) {
			conn := d.Connections[i]
			target := "(missing)"
			if t := d.Node(conn.To); t != nil {
				target = t.Text + " " + StyleDim.Render(shortID(conn.To))
			}
			fmt.Fprintf(stdout, "  [%d] %q %s %s\n", i, conn.Text, iconArrow, target)
			for _, to := range branches[i] {
				fmt.Fprintf(stdout, "      %s %s %s\n", StyleWarning.Render("interrupt"), d.Node(to).Text, StyleDim.Render(shortID(to)))
			}
		}
	}
}
