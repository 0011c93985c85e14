package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/dialogtree/pkg/store"
)

// storeCommand creates the store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect or clear the saved state",
	}

	cmd.AddCommand(c.storeInfoCommand())
	cmd.AddCommand(c.storeClearCommand())

	return cmd
}

// storeInfoCommand creates the "store path" subcommand.
func (c *CLI) storeInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the state is saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			backend := cfg.Store.Backend
			if backend == "" {
				backend = store.BackendFile
			}
			printKeyValue("backend", backend)
			switch backend {
			case store.BackendFile:
				path := cfg.Store.Path
				if path == "" {
					if path, err = store.DefaultPath(); err != nil {
						return err
					}
				}
				printKeyValue("path", path)
			case store.BackendSQLite:
				printKeyValue("database", cfg.Store.SQLitePath)
				printKeyValue("key", store.Key)
			case store.BackendRedis:
				printKeyValue("url", cfg.Store.RedisURL)
				printKeyValue("key", store.RedisKey)
			case store.BackendMongo:
				printKeyValue("uri", cfg.Store.MongoURI)
				printKeyValue("key", store.Key)
			}
			return nil
		},
	}
}

// storeClearCommand creates the "store clear" subcommand.
func (c *CLI) storeClearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved state",
		Long: `Delete the saved state. All characters and dialogues are lost unless
exported first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				printWarning("This deletes every character; pass --yes to confirm")
				printNextStep("Back up first", appName+" export -o backup.json")
				return nil
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cmd.Context(), cfg.StoreOptions())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Clear(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Cleared saved state")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}
