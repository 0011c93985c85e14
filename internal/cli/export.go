package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dialogtree/pkg/dialogue"
	"github.com/matzehuels/dialogtree/pkg/editor"
	"github.com/matzehuels/dialogtree/pkg/errors"
	pkgio "github.com/matzehuels/dialogtree/pkg/io"
	"github.com/matzehuels/dialogtree/pkg/render"
	"github.com/matzehuels/dialogtree/pkg/render/nodelink"
)

// Export formats.
const (
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatPDF  = "pdf"
	formatPNG  = "png"
)

var exportFormats = []string{formatJSON, formatDOT, formatSVG, formatPDF, formatPNG}

// exportOpts holds export command options.
type exportOpts struct {
	format     string
	output     string
	characters []string
	highlight  string
	detailed   bool
	scale      float64
}

func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOpts{format: formatJSON, scale: 2}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the dialogues to a file",
		Long: `Write the dialogues to a file.

json writes a snapshot that "import" reads back. dot, svg, pdf and png draw
the dialogues as node-link diagrams, one cluster per character; pdf and png
need rsvg-convert (librsvg) on the PATH.

Without --output, json and dot go to stdout and images to <format> files
in the current directory.`,
		Example: `  dialogtree export -o backup.json
  dialogtree export -f svg -c Bo --highlight 1a2b3c4d -o bo.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(exportFormats, opts.format) {
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want %s)", opts.format, strings.Join(exportFormats, ", "))
			}
			if (opts.format == formatPDF || opts.format == formatPNG) && !render.Available() {
				return errors.New(errors.ErrCodeUnsupported, "%s export needs rsvg-convert; install librsvg", opts.format)
			}
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				return c.runExport(cmd.Context(), ed, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: "+strings.Join(exportFormats, ", "))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file")
	cmd.Flags().StringSliceVarP(&opts.characters, "character", "c", nil, "export only these characters (repeatable)")
	cmd.Flags().StringVar(&opts.highlight, "highlight", "", "highlight the path to this node")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with full text and notes")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "png scale factor")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, ed *editor.Editor, opts exportOpts) error {
	logger := loggerFromContext(ctx)

	s := ed.State()
	refs := opts.characters
	if len(refs) == 0 && c.current != "" {
		refs = []string{c.current}
	}
	if len(refs) > 0 {
		ids, err := resolveCharacters(s, refs)
		if err != nil {
			return err
		}
		s = pkgio.Subset(s, ids)
	}

	renderOpts := nodelink.Options{Detailed: opts.detailed}
	if opts.highlight != "" {
		id, err := highlightNode(s, opts.highlight)
		if err != nil {
			return err
		}
		renderOpts.Highlight = id
	}

	if opts.format == formatJSON {
		if opts.output == "" {
			return pkgio.WriteJSON(s, stdout)
		}
		if err := pkgio.ExportJSON(s, opts.output); err != nil {
			return err
		}
		printSuccess("Exported %d character(s)", len(s))
		printFile(opts.output)
		return nil
	}

	dot := nodelink.StateToDOT(s, renderOpts)
	if opts.format == formatDOT && opts.output == "" {
		_, err := fmt.Fprint(stdout, dot)
		return err
	}

	prog := newProgress(logger)
	var data []byte
	var err error
	switch opts.format {
	case formatDOT:
		data = []byte(dot)
	case formatSVG:
		data, err = renderWithSpinner(ctx, "Rendering SVG...", func() ([]byte, error) { return nodelink.RenderSVG(ctx, dot) })
	case formatPDF:
		data, err = renderWithSpinner(ctx, "Rendering PDF...", func() ([]byte, error) { return nodelink.RenderPDF(ctx, dot) })
	case formatPNG:
		data, err = renderWithSpinner(ctx, "Rendering PNG...", func() ([]byte, error) { return nodelink.RenderPNG(ctx, dot, opts.scale) })
	}
	if err != nil {
		return err
	}
	prog.done("rendered " + opts.format)

	path := opts.output
	if path == "" {
		path = appName + "." + opts.format
	}
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printSuccess("Exported %s", strings.ToUpper(opts.format))
	printFile(path)
	return nil
}

func renderWithSpinner(ctx context.Context, msg string, fn func() ([]byte, error)) ([]byte, error) {
	spinner := newSpinnerWithContext(ctx, msg)
	spinner.Start()
	data, err := fn()
	spinner.Stop()
	return data, err
}

// highlightNode resolves ref against every exported character.
func highlightNode(s dialogue.State, ref string) (string, error) {
	for _, id := range s.IDs() {
		if node, err := resolveNode(s[id].Dialogue, ref); err == nil {
			return node, nil
		}
	}
	return "", errors.New(errors.ErrCodeNodeNotFound, "no node matches %q", ref)
}

func (c *CLI) importCommand() *cobra.Command {
	var merge bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load dialogues from a JSON snapshot",
		Long: `Load dialogues from a JSON snapshot written by "export".

By default the snapshot replaces every character. With --merge its
characters are added, replacing characters with the same id. References
that do not resolve are reported but kept; they are inert.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imported, err := pkgio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			for _, p := range pkgio.Check(imported) {
				printWarning("%s", p)
			}
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				next := imported
				if merge {
					next = ed.State()
					for id, ch := range imported {
						next[id] = ch
					}
				}
				if !ed.Replace(cmd.Context(), next) {
					printUnchanged("import")
					return nil
				}
				if _, ok := next[c.current]; !ok {
					c.current = ""
				}
				printSuccess("Imported %d character(s)", len(imported))
				printFile(args[0])
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&merge, "merge", false, "keep existing characters")
	return cmd
}
