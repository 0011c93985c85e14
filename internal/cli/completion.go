package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dialogtree/pkg/dialogue"
	"github.com/matzehuels/dialogtree/pkg/store"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for dialogtree.

Completions include the names of saved characters for --character.

Bash:
  $ source <(dialogtree completion bash)

Zsh:
  $ dialogtree completion zsh > "${fpath[1]}/_dialogtree"

Fish:
  $ dialogtree completion fish > ~/.config/fish/completions/dialogtree.fish

PowerShell:
  PS> dialogtree completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(stdout, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeCharacters offers saved character names. It reads the store
// directly and never writes, so completing cannot change anything.
func (c *CLI) completeCharacters(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer st.Close()

	data, err := st.Load(ctx)
	if err != nil || data == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	s, err := dialogue.Unmarshal(data)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, id := range s.IDs() {
		ch := s[id]
		if strings.HasPrefix(strings.ToLower(ch.Name), strings.ToLower(toComplete)) {
			names = append(names, ch.Name+"\t"+shortID(id))
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
