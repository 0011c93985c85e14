package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dialogtree/pkg/dialogue"
	"github.com/matzehuels/dialogtree/pkg/editor"
	"github.com/matzehuels/dialogtree/pkg/errors"
)

// nodeCommand creates the node management command.
func (c *CLI) nodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage dialogue nodes",
		Long: `Manage the nodes of one character's dialogue.

The character is chosen with --character (or "use" in the shell). Nodes can
be referenced by id or by a unique prefix or suffix of the id; listings show
the last 8 characters.`,
	}

	cmd.AddCommand(c.nodeRootCommand())
	cmd.AddCommand(c.nodeOptionCommand())
	cmd.AddCommand(c.nodeEditCommand())
	cmd.AddCommand(c.nodeColorCommand())
	cmd.AddCommand(c.nodeMoveCommand())
	cmd.AddCommand(c.nodeRemoveCommand())
	cmd.AddCommand(c.nodeListCommand())

	return cmd
}

// nodeFields holds the flags shared by node creation commands.
type nodeFields struct {
	character string
	notes     string
	color     string
	x, y      float64
}

func (f *nodeFields) register(c *CLI, cmd *cobra.Command) {
	c.characterFlag(cmd, &f.character)
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&f.color, "color", "", "node color as #rgb or #rrggbb (default "+dialogue.DefaultNodeColor+")")
	cmd.Flags().Float64Var(&f.x, "x", 0, "place the node at this x (with --y)")
	cmd.Flags().Float64Var(&f.y, "y", 0, "place the node at this y (with --x)")
	cmd.MarkFlagsRequiredTogether("x", "y")
}

// placed reports whether --x and --y were given.
func (f *nodeFields) placed(cmd *cobra.Command) (bool, error) {
	if !cmd.Flags().Changed("x") {
		return false, nil
	}
	return true, errors.ValidatePosition(f.x, f.y)
}

func (c *CLI) nodeRootCommand() *cobra.Command {
	var f nodeFields

	cmd := &cobra.Command{
		Use:   "root <text>",
		Short: "Add a starting node",
		Long: `Add a starting node at the default root position, or at --x/--y.

The node label is the first word of the text.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateColor(f.color); err != nil {
				return err
			}
			placed, err := f.placed(cmd)
			if err != nil {
				return err
			}
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				ch, err := c.characterIn(ed, f.character)
				if err != nil {
					return err
				}
				var (
					n  dialogue.Node
					ok bool
				)
				if placed {
					n, ok = ed.CreateNode(cmd.Context(), ch.ID, "", f.x, f.y, args[0], f.notes, f.color)
				} else {
					n, ok = ed.CreateRoot(cmd.Context(), ch.ID, args[0], f.notes, f.color)
				}
				if !ok {
					printUnchanged("create root")
					return nil
				}
				printNodeCreated(n)
				return nil
			})
		},
	}

	f.register(c, cmd)
	return cmd
}

func (c *CLI) nodeOptionCommand() *cobra.Command {
	var (
		f     nodeFields
		label string
	)

	cmd := &cobra.Command{
		Use:   "option <from> <text>",
		Short: "Add a node reached from another by an option",
		Long: `Add a node connected to <from> by an option. The node goes to the right
of <from>, or to --x/--y.

The option label defaults to "` + dialogue.DefaultConnectionLabel + `".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateColor(f.color); err != nil {
				return err
			}
			placed, err := f.placed(cmd)
			if err != nil {
				return err
			}
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				ch, err := c.characterIn(ed, f.character)
				if err != nil {
					return err
				}
				from, err := resolveNode(ch.Dialogue, args[0])
				if err != nil {
					return err
				}
				var (
					n    dialogue.Node
					conn dialogue.Connection
					ok   bool
				)
				if placed {
					n, conn, ok = ed.CreateOptionAt(cmd.Context(), ch.ID, from, label, f.x, f.y, args[1], f.notes, f.color)
				} else {
					n, conn, ok = ed.CreateOption(cmd.Context(), ch.ID, from, label, args[1], f.notes, f.color)
				}
				if !ok {
					printUnchanged("create option")
					return nil
				}
				printNodeCreated(n)
				printDetail("option %q from %s", conn.Text, shortID(from))
				return nil
			})
		},
	}

	f.register(c, cmd)
	cmd.Flags().StringVarP(&label, "label", "l", "", "option label")
	return cmd
}

func (c *CLI) nodeEditCommand() *cobra.Command {
	var character, notes string

	cmd := &cobra.Command{
		Use:   "edit <node> <text>",
		Short: "Replace a node's text",
		Long: `Replace a node's text and, with --notes, its notes.

The label is re-derived from the first word of the new text.`,
		Args: cobra.ExactArgs(2),
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
				newNotes := ch.Dialogue.Node(id).Notes
				if cmd.Flags().Changed("notes") {
					newNotes = notes
				}
				if !ed.EditNodeText(cmd.Context(), ch.ID, id, args[1], newNotes) {
					printUnchanged("edit node")
					return nil
				}
				printSuccess("Updated node %s", StyleHighlight.Render(shortID(id)))
				return nil
			})
		},
	}

	c.characterFlag(cmd, &character)
	cmd.Flags().StringVar(&notes, "notes", "", "replace the notes")
	return cmd
}

func (c *CLI) nodeColorCommand() *cobra.Command {
	var character, color string

	cmd := &cobra.Command{
		Use:   "color <node>...",
		Short: "Recolor nodes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateColor(color); err != nil {
				return err
			}
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				ch, err := c.characterIn(ed, character)
				if err != nil {
					return err
				}
				ids, err := resolveNodes(ch.Dialogue, args)
				if err != nil {
					return err
				}
				if !ed.RecolorNodes(cmd.Context(), ch.ID, ids, color) {
					printUnchanged("recolor nodes")
					return nil
				}
				printSuccess("Recolored %d node(s) to %s", len(ids), color)
				return nil
			})
		},
	}

	c.characterFlag(cmd, &character)
	cmd.Flags().StringVar(&color, "color", "", "color as #rgb or #rrggbb")
	_ = cmd.MarkFlagRequired("color")
	return cmd
}

func (c *CLI) nodeMoveCommand() *cobra.Command {
	var character string

	cmd := &cobra.Command{
		Use:   "move <node> <x> <y>",
		Short: "Move a node on the canvas",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := parsePoint(args[1], args[2])
			if err != nil {
				return err
			}
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				ch, err := c.characterIn(ed, character)
				if err != nil {
					return err
				}
				id, err := resolveNode(ch.Dialogue, args[0])
				if err != nil {
					return err
				}
				if !ed.MoveNode(cmd.Context(), ch.ID, id, x, y) {
					printUnchanged("move node")
					return nil
				}
				printSuccess("Moved node %s to %s", StyleHighlight.Render(shortID(id)), formatPoint(x, y))
				return nil
			})
		},
	}

	c.characterFlag(cmd, &character)
	return cmd
}

func (c *CLI) nodeRemoveCommand() *cobra.Command {
	var character string

	cmd := &cobra.Command{
		Use:     "rm <node>...",
		Aliases: []string{"delete"},
		Short:   "Delete nodes",
		Long: `Delete nodes together with every connection touching them and every
interruption that starts on, ends at or leads to them.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				ch, err := c.characterIn(ed, character)
				if err != nil {
					return err
				}
				ids, err := resolveNodes(ch.Dialogue, args)
				if err != nil {
					return err
				}
				before := ch.Dialogue
				if !ed.DeleteNodes(cmd.Context(), ch.ID, ids) {
					printUnchanged("delete nodes")
					return nil
				}
				after, _ := ed.Character(ch.ID)
				printSuccess("Deleted %d node(s)", len(ids))
				printDetail("removed %d connection(s), %d interruption(s)",
					len(before.Connections)-len(after.Dialogue.Connections),
					len(before.Interruptions)-len(after.Dialogue.Interruptions))
				return nil
			})
		},
	}

	c.characterFlag(cmd, &character)
	return cmd
}

func (c *CLI) nodeListCommand() *cobra.Command {
	var character string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List a character's nodes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				ch, err := c.characterIn(ed, character)
				if err != nil {
					return err
				}
				d := ch.Dialogue
				if len(d.Nodes) == 0 {
					printInfo("%s has no nodes yet", ch.Name)
					printNextStep("Add one", appName+" node root <text> -c "+shortID(ch.ID))
					return nil
				}
				rows := make([][]string, 0, len(d.Nodes))
				for _, id := range d.NodeIDs() {
					n := d.Nodes[id]
					rows = append(rows, []string{
						shortID(id),
						n.Text,
						truncate(n.FullText, 40),
						n.Color,
						formatPoint(n.X, n.Y),
						strconv.Itoa(len(d.Outgoing(id))),
					})
				}
				printTable([]string{"ID", "Label", "Text", "Color", "Position", "Out"}, rows)
				return nil
			})
		},
	}

	c.characterFlag(cmd, &character)
	return cmd
}

// =============================================================================
// Helpers
// =============================================================================

func printNodeCreated(n dialogue.Node) {
	printSuccess("Created node %s %s", StyleHighlight.Render(n.Text), StyleDim.Render(shortID(n.ID)))
	printDetail("at %s", formatPoint(n.X, n.Y))
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
