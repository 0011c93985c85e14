package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dialogtree/pkg/editor"
	"github.com/matzehuels/dialogtree/pkg/errors"
)

const shellHelp = `Shell commands:
  use <character>   select the character node commands work on
  undo, redo        step through this session's history
  history           show the history position
  help              show this help, or "help <command>"
  exit, quit        leave the shell

Every other line runs a dialogtree command, e.g.
  character add Bo
  node root "Hello there" --notes "first meeting"
  connect 1a2b3c4d 5e6f7a8b --label Wave`

func (c *CLI) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Edit interactively with undo and redo",
		Long: `Start an interactive session. All commands share one editing session, so
undo and redo step back and forth through every change made in it. Each
change is still saved as it happens.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, _, err := c.openEditor(cmd.Context())
			if err != nil {
				return err
			}
			c.session = ed
			defer func() {
				c.session = nil
				c.current = ""
			}()

			runErr := c.runShell(cmd.Context(), cmd.InOrStdin())
			if err := ed.Close(context.WithoutCancel(cmd.Context())); err != nil && runErr == nil {
				runErr = err
			}
			return runErr
		},
	}
}

// runShell reads commands from in until EOF, "exit" or cancellation.
func (c *CLI) runShell(ctx context.Context, in io.Reader) error {
	printInfo("dialogtree shell; type %s for commands", styleCommand.Render("help"))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(stdout, c.prompt())
		if !scanner.Scan() {
			fmt.Fprintln(stdout)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		args, err := shellwords.Parse(scanner.Text())
		if err != nil {
			printError("%v", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if done := c.shellLine(ctx, args); done {
			return nil
		}
	}
}

// shellLine runs one parsed line and reports whether the shell should end.
func (c *CLI) shellLine(ctx context.Context, args []string) bool {
	ed := c.session
	switch args[0] {
	case "exit", "quit":
		return true
	case "help", "?":
		if len(args) == 1 {
			fmt.Fprintln(stdout, shellHelp)
			return false
		}
	case "undo":
		if !ed.Undo(ctx) {
			printInfo("Nothing to undo")
			return false
		}
		printSuccess("Undone")
		c.dropStaleSelection(ed)
		printHistory(ed.History())
		return false
	case "redo":
		if !ed.Redo(ctx) {
			printInfo("Nothing to redo")
			return false
		}
		printSuccess("Redone")
		c.dropStaleSelection(ed)
		printHistory(ed.History())
		return false
	case "history":
		printHistory(ed.History())
		return false
	case "use":
		if len(args) != 2 {
			printError("usage: use <character>")
			return false
		}
		ch, err := resolveCharacter(ed.State(), args[1])
		if err != nil {
			printError("%s", errors.UserMessage(err))
			return false
		}
		c.current = ch.ID
		printSuccess("Using %s", StyleHighlight.Render(ch.Icon+" "+ch.Name))
		return false
	}

	root := c.shellRoot()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		printError("%s", errors.UserMessage(err))
	}
	return false
}

// shellRoot builds a fresh command tree for one shell line, so flag values
// never leak from one line into the next.
func (c *CLI) shellRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stdout)
	root.CompletionOptions.DisableDefaultCmd = true
	c.addCommands(root)
	return root
}

func (c *CLI) prompt() string {
	name := appName
	if c.current != "" {
		if ch, err := c.session.Character(c.current); err == nil {
			name = ch.Name
		}
	}
	return StyleTitle.Render(name) + StyleDim.Render("> ")
}

// dropStaleSelection forgets the selected character when undo or redo
// removed it.
func (c *CLI) dropStaleSelection(ed *editor.Editor) {
	if c.current == "" {
		return
	}
	if _, err := ed.Character(c.current); err != nil {
		c.current = ""
	}
}

func printHistory(h editor.HistoryInfo) {
	printDetail("step %d of %d", h.Cursor+1, h.Len)
}
