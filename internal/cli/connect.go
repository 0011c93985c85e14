package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dialogtree/pkg/dialogue"
	"github.com/matzehuels/dialogtree/pkg/editor"
	"github.com/matzehuels/dialogtree/pkg/errors"
)

// connectCommand creates the connect command, the CLI form of dragging an
// option from one node onto another.
func (c *CLI) connectCommand() *cobra.Command {
	var character, label string

	cmd := &cobra.Command{
		Use:   "connect <from> <to>",
		Short: "Connect two existing nodes with an option",
		Long: `Connect two existing nodes with an option.

Connecting a node to itself, or to a node that does not exist, is cancelled
and changes nothing; use "node option" to create the target instead.
Duplicate connections are allowed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				ch, err := c.characterIn(ed, character)
				if err != nil {
					return err
				}
				from, err := resolveNode(ch.Dialogue, args[0])
				if err != nil {
					return err
				}
				// An unknown target cancels the gesture rather than failing.
				to, _ := resolveNode(ch.Dialogue, args[1])

				res, conn := ed.ConnectNodes(cmd.Context(), ch.ID, from, to, label)
				if res == editor.ConnectCancelled {
					printInfo("Connect cancelled")
					printNextStep("Create the target instead", appName+" node option "+shortID(from)+" <text> --x <x> --y <y>")
					return nil
				}
				printSuccess("Connected %s %s %s with %q", shortID(from), iconArrow, shortID(to), conn.Text)
				printDetail("connection %d", len(ch.Dialogue.Connections))
				return nil
			})
		},
	}

	c.characterFlag(cmd, &character)
	cmd.Flags().StringVarP(&label, "label", "l", "", "option label (default \""+dialogue.DefaultConnectionLabel+"\")")
	return cmd
}

func (c *CLI) labelCommand() *cobra.Command {
	var character string

	cmd := &cobra.Command{
		Use:   "label <index> <text>",
		Short: "Relabel a connection",
		Long: `Relabel the connection at <index>, as listed by "show".

Setting the label a connection already has changes nothing.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				ch, err := c.characterIn(ed, character)
				if err != nil {
					return err
				}
				if err := checkIndex(ch.Dialogue, index); err != nil {
					return err
				}
				if !ed.EditConnectionLabel(cmd.Context(), ch.ID, index, args[1]) {
					printUnchanged("relabel connection")
					return nil
				}
				printSuccess("Connection %d is now %q", index, args[1])
				return nil
			})
		},
	}

	c.characterFlag(cmd, &character)
	return cmd
}

func (c *CLI) branchCommand() *cobra.Command {
	var character, color string

	cmd := &cobra.Command{
		Use:   "branch <index>",
		Short: "Interrupt a connection with a new node",
		Long: `Interrupt the connection at <index> with a new "` + dialogue.InterruptText + `" node placed
below the connection's midpoint.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			if err := validateColor(color); err != nil {
				return err
			}
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				ch, err := c.characterIn(ed, character)
				if err != nil {
					return err
				}
				if err := checkIndex(ch.Dialogue, index); err != nil {
					return err
				}
				n, _, ok := ed.BranchConnection(cmd.Context(), ch.ID, index, color)
				if !ok {
					printUnchanged("branch connection")
					return nil
				}
				printSuccess("Branched connection %d", index)
				printNodeCreated(n)
				return nil
			})
		},
	}

	c.characterFlag(cmd, &character)
	cmd.Flags().StringVar(&color, "color", "", "color of the new node")
	return cmd
}

func (c *CLI) interruptCommand() *cobra.Command {
	var character string

	cmd := &cobra.Command{
		Use:   "interrupt <index> <node>",
		Short: "Interrupt a connection towards an existing node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				ch, err := c.characterIn(ed, character)
				if err != nil {
					return err
				}
				if err := checkIndex(ch.Dialogue, index); err != nil {
					return err
				}
				node, err := resolveNode(ch.Dialogue, args[1])
				if err != nil {
					return err
				}
				if _, ok := ed.CreateInterruption(cmd.Context(), ch.ID, index, node); !ok {
					printUnchanged("interrupt connection")
					return nil
				}
				printSuccess("Connection %d now branches to %s", index, shortID(node))
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

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "connection index must be a non-negative integer, got %q", s)
	}
	return i, nil
}

func checkIndex(d *dialogue.Dialogue, index int) error {
	if index >= len(d.Connections) {
		return errors.New(errors.ErrCodeConnectionNotFound, "no connection %d (dialogue has %d)", index, len(d.Connections))
	}
	return nil
}
