package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dialogtree/pkg/dialogue"
	"github.com/matzehuels/dialogtree/pkg/editor"
	"github.com/matzehuels/dialogtree/pkg/errors"
)

// characterCommand creates the character management command.
func (c *CLI) characterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "character",
		Aliases: []string{"char"},
		Short:   "Manage characters",
		Long: `Manage characters. Each character owns one dialogue.

Characters can be referenced by id, by a unique prefix or suffix of the id,
or by name.`,
	}

	cmd.AddCommand(c.characterAddCommand())
	cmd.AddCommand(c.characterListCommand())
	cmd.AddCommand(c.characterEditCommand())
	cmd.AddCommand(c.characterColorCommand())
	cmd.AddCommand(c.characterMoveCommand())
	cmd.AddCommand(c.characterRemoveCommand())

	return cmd
}

func (c *CLI) characterAddCommand() *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateColor(color); err != nil {
				return err
			}
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				ch, ok := ed.CreateCharacter(cmd.Context(), args[0], color)
				if !ok {
					printUnchanged("create character")
					return nil
				}
				printSuccess("Created character %s", StyleHighlight.Render(ch.Name))
				printDetail("%s  %s", ch.ID, ch.Color)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "color as #rgb or #rrggbb (default "+dialogue.DefaultCharacterColor+")")
	return cmd
}

func (c *CLI) characterListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List characters",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				s := ed.State()
				if len(s) == 0 {
					printInfo("No characters yet")
					printNextStep("Create one", appName+" character add <name>")
					return nil
				}
				rows := make([][]string, 0, len(s))
				for _, id := range s.IDs() {
					ch := s[id]
					marker := ""
					if id == c.current {
						marker = "*"
					}
					rows = append(rows, []string{
						marker,
						shortID(id),
						ch.Icon + " " + ch.Name,
						ch.Color,
						formatPoint(ch.X, ch.Y),
						strconv.Itoa(len(ch.Dialogue.Nodes)),
					})
				}
				printTable([]string{"", "ID", "Name", "Color", "Position", "Nodes"}, rows)
				return nil
			})
		},
	}
}

func (c *CLI) characterEditCommand() *cobra.Command {
	var name, icon string

	cmd := &cobra.Command{
		Use:   "edit <character>",
		Short: "Rename a character or change its icon",
		Long: `Rename a character or change its icon.

A flag that is not given keeps the current value. A blank name or icon
falls back to the default ("`+dialogue.DefaultCharacterName+`" and `+dialogue.DefaultIcon+`).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				ch, err := resolveCharacter(ed.State(), args[0])
				if err != nil {
					return err
				}
				newName, newIcon := ch.Name, ch.Icon
				if cmd.Flags().Changed("name") {
					newName = name
				}
				if cmd.Flags().Changed("icon") {
					newIcon = icon
				}
				if !ed.EditCharacterInfo(cmd.Context(), ch.ID, newName, newIcon) {
					printUnchanged("edit character")
					return nil
				}
				printSuccess("Updated %s", StyleHighlight.Render(newIcon+" "+newName))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&icon, "icon", "", "new icon")
	return cmd
}

func (c *CLI) characterColorCommand() *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "color <character>...",
		Short: "Recolor characters",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateColor(color); err != nil {
				return err
			}
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				ids, err := resolveCharacters(ed.State(), args)
				if err != nil {
					return err
				}
				if !ed.RecolorCharacters(cmd.Context(), ids, color) {
					printUnchanged("recolor characters")
					return nil
				}
				printSuccess("Recolored %d character(s) to %s", len(ids), color)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "color as #rgb or #rrggbb")
	_ = cmd.MarkFlagRequired("color")
	return cmd
}

func (c *CLI) characterMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <character> <x> <y>",
		Short: "Move a character on the canvas",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := parsePoint(args[1], args[2])
			if err != nil {
				return err
			}
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				ch, err := resolveCharacter(ed.State(), args[0])
				if err != nil {
					return err
				}
				if !ed.MoveCharacter(cmd.Context(), ch.ID, x, y) {
					printUnchanged("move character")
					return nil
				}
				printSuccess("Moved %s to %s", StyleHighlight.Render(ch.Name), formatPoint(x, y))
				return nil
			})
		},
	}
}

func (c *CLI) characterRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <character>...",
		Aliases: []string{"delete"},
		Short:   "Delete characters and their dialogues",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				ids, err := resolveCharacters(ed.State(), args)
				if err != nil {
					return err
				}
				if !ed.DeleteCharacters(cmd.Context(), ids) {
					printUnchanged("delete characters")
					return nil
				}
				for _, id := range ids {
					if id == c.current {
						c.current = ""
					}
				}
				printSuccess("Deleted %d character(s)", len(ids))
				return nil
			})
		},
	}
}

// =============================================================================
// Helpers
// =============================================================================

func resolveCharacters(s dialogue.State, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ch, err := resolveCharacter(s, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, ch.ID)
	}
	return ids, nil
}

// validateColor accepts an empty color (use the default) or a hex color.
func validateColor(color string) error {
	if color == "" {
		return nil
	}
	return errors.ValidateColor(color)
}

func parsePoint(xs, ys string) (float64, float64, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "x is not a number: %q", xs)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "y is not a number: %q", ys)
	}
	if err := errors.ValidatePosition(x, y); err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func formatPoint(x, y float64) string {
	return fmt.Sprintf("(%g, %g)", x, y)
}
