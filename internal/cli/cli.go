package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dialogtree/internal/config"
	"github.com/matzehuels/dialogtree/internal/metrics"
	"github.com/matzehuels/dialogtree/pkg/buildinfo"
	"github.com/matzehuels/dialogtree/pkg/dialogue"
	"github.com/matzehuels/dialogtree/pkg/editor"
	"github.com/matzehuels/dialogtree/pkg/errors"
	"github.com/matzehuels/dialogtree/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "dialogtree"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Global flags.
	configPath   string
	storeBackend string
	storePath    string

	// session is set while the interactive shell runs; commands then share
	// it instead of opening their own.
	session *editor.Editor
	// current is the character selected with "use" in the shell.
	current string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:     newLogger(w, level),
		configPath: config.DefaultPath(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Dialogtree edits branching dialogue trees for characters",
		Long:         `Dialogtree is an editor for branching dialogue: characters own dialogue nodes joined by labeled options, with interruptions branching off existing options. Every edit is saved; the shell adds undo and redo.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", c.configPath, "config file")
	flags.StringVar(&c.storeBackend, "store", "", "store backend: "+strings.Join(store.Backends, ", "))
	flags.StringVar(&c.storePath, "store-path", "", "state file for the file backend, database file for sqlite")

	c.addCommands(root)
	return root
}

// addCommands registers every editing command. The shell builds a fresh
// tree per line through it, so it must not touch global state.
func (c *CLI) addCommands(root *cobra.Command) {
	root.AddCommand(c.characterCommand())
	root.AddCommand(c.nodeCommand())
	root.AddCommand(c.connectCommand())
	root.AddCommand(c.labelCommand())
	root.AddCommand(c.branchCommand())
	root.AddCommand(c.interruptCommand())
	root.AddCommand(c.pathCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	if c.session == nil {
		root.AddCommand(c.shellCommand())
		root.AddCommand(c.browseCommand())
		root.AddCommand(c.serveCommand())
		root.AddCommand(c.storeCommand())
		root.AddCommand(c.configCommand())
		root.AddCommand(c.completionCommand())
	}
}

// =============================================================================
// Session Setup
// =============================================================================

// loadConfig reads the config file and applies the global flag overrides.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.storeBackend != "" {
		cfg.Store.Backend = c.storeBackend
	}
	if c.storePath != "" {
		if cfg.Store.Backend == store.BackendSQLite {
			cfg.Store.SQLitePath = c.storePath
		} else {
			cfg.Store.Path = c.storePath
		}
	}
	return cfg, nil
}

// openEditor starts an editing session on the configured store. A backend
// that cannot be opened is replaced by a NullStore with a warning, so the
// command still runs but nothing is saved.
func (c *CLI) openEditor(ctx context.Context) (*editor.Editor, *config.Config, error) {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	metrics.Register()

	backend := cfg.Store.Backend
	if backend == "" {
		backend = store.BackendFile
	}
	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		printWarning("Store %q unavailable, changes will not be saved", backend)
		logger.Debug("open store", "backend", backend, "err", err)
		st, backend = store.NewNullStore(), store.BackendNull
	}

	ed, err := editor.Open(ctx, st, editor.Options{
		Logger:       logger,
		HistoryLimit: cfg.HistoryLimit,
		Backend:      backend,
	})
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	if ed.Degraded() {
		printWarning("Saved state could not be read, starting empty; changes will not be saved")
	}
	return ed, cfg, nil
}

// withEditor runs fn against the shell session when there is one, or a
// session opened for this command and closed afterwards.
func (c *CLI) withEditor(ctx context.Context, fn func(*editor.Editor) error) error {
	if c.session != nil {
		return fn(c.session)
	}
	ed, _, err := c.openEditor(ctx)
	if err != nil {
		return err
	}
	runErr := fn(ed)
	if err := ed.Close(context.WithoutCancel(ctx)); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// =============================================================================
// Reference Resolution
// =============================================================================

// characterFlag registers the -c/--character flag shared by node-level
// commands, completing character names.
func (c *CLI) characterFlag(cmd *cobra.Command, ref *string) {
	cmd.Flags().StringVarP(ref, "character", "c", "", "character id, id prefix or name (defaults to the shell selection)")
	_ = cmd.RegisterFlagCompletionFunc("character", c.completeCharacters)
}

// characterRef picks the explicit flag value or the shell selection.
func (c *CLI) characterRef(ref string) (string, error) {
	if ref != "" {
		return ref, nil
	}
	if c.current != "" {
		return c.current, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "no character given; pass --character or run \"use\" in the shell")
}

// resolveCharacter finds a character by exact id, unique id prefix or
// suffix, or case-insensitive name.
func resolveCharacter(s dialogue.State, ref string) (*dialogue.Character, error) {
	if ref == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty character reference")
	}
	if c, ok := s[ref]; ok {
		return c, nil
	}
	var matches []*dialogue.Character
	for _, id := range s.IDs() {
		c := s[id]
		if matchID(c.ID, ref) || strings.EqualFold(c.Name, ref) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return nil, errors.New(errors.ErrCodeCharacterNotFound, "no character matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "%q matches more than one character", ref)
	}
}

// resolveNode finds a node by exact id or unique id prefix or suffix.
func resolveNode(d *dialogue.Dialogue, ref string) (string, error) {
	if ref == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "empty node reference")
	}
	if d.Node(ref) != nil {
		return ref, nil
	}
	var match string
	for _, id := range d.NodeIDs() {
		if matchID(id, ref) {
			if match != "" {
				return "", errors.New(errors.ErrCodeInvalidInput, "%q matches more than one node", ref)
			}
			match = id
		}
	}
	if match == "" {
		return "", errors.New(errors.ErrCodeNodeNotFound, "no node matches %q", ref)
	}
	return match, nil
}

// resolveNodes resolves every ref in refs.
func resolveNodes(d *dialogue.Dialogue, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := resolveNode(d, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// matchID reports whether ref abbreviates id. UUIDv7 ids created together
// share a long prefix, so the random tail shown by shortID also matches.
func matchID(id, ref string) bool {
	return strings.HasPrefix(id, ref) || strings.HasSuffix(id, ref)
}

// shortID is the id tail printed in listings; resolveNode and
// resolveCharacter accept it back.
func shortID(id string) string {
	const n = 8
	if len(id) <= n {
		return id
	}
	return id[len(id)-n:]
}

// characterIn resolves ref against the editor's current state.
func (c *CLI) characterIn(ed *editor.Editor, flag string) (*dialogue.Character, error) {
	ref, err := c.characterRef(flag)
	if err != nil {
		return nil, err
	}
	return resolveCharacter(ed.State(), ref)
}
