package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dialogtree/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editing API over HTTP",
		Long: `Serve the editing API over HTTP for a browser front-end.

The server holds one editing session, so undo and redo work across requests
(POST /api/v1/history/undo and /redo). Prometheus metrics are served at
/metrics. The server stops on interrupt and saves pending changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			ed, cfg, err := c.openEditor(ctx)
			if err != nil {
				return err
			}
			defer ed.Close(context.WithoutCancel(ctx))

			if addr == "" {
				addr = cfg.Server.Addr
			}
			if len(origins) == 0 {
				origins = cfg.Server.CORSOrigins
			}

			srv := server.New(ed, server.Options{Logger: logger, CORSOrigins: origins})
			printSuccess("Serving on %s", StyleHighlight.Render("http://"+addr))
			printDetail("API under /api/v1, metrics at /metrics")
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+defaultAddrHint+")")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", nil, "allowed browser origin (repeatable; default localhost)")
	return cmd
}
