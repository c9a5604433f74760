package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/drawkit/internal/server"
	"github.com/matzehuels/drawkit/pkg/pipeline"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the drawkit HTTP API",
		Long: `Serve the drawkit HTTP API.

Endpoints take a drawio document as the request body:

  POST /v1/inspect     graph summary
  POST /v1/validate    validation report
  POST /v1/convert     rewritten document (?compress=true|false)
  POST /v1/dot         node-link preview (?page=&format=dot|svg|json)
  GET  /healthz        liveness`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if !cmd.Flags().Changed("addr") && c.Config.Server.Addr != "" {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			defaults := c.pipelineOptions("")
			defaults.Concurrency = pipeline.DefaultConcurrency
			srv := server.New(runner, logger, defaults)

			newPrinter(cmd.OutOrStdout()).info("Serving on %s (backend: %s)", StyleHighlight.Render(addr), c.backendName())
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}
