package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/internal/server"
	"github.com/matzehuels/squaremap/pkg/observability"
	"github.com/matzehuels/squaremap/pkg/pipeline"
)

// serveCommand creates the serve command for the HTTP service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		sf   scanFlags
		addr string
	)

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve treemaps of a directory over HTTP",
		Long: `Serve treemaps of a directory over HTTP.

The directory is scanned once at startup; POST /rescan scans it again.
Treemaps are available at /treemap.svg, /treemap.png, /treemap.pdf and
/treemap.json with width, height, depth and focus query parameters.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			sf.apply(cmd, &opts, args)
			if opts.Root == "" && opts.Input == "" {
				opts.Root = "."
			}
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), opts, sf.noCache, addr)
		},
	}

	sf.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts pipeline.Options, noCache bool, addr string) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	observability.SetHTTPHooks(observability.LogHTTPHooks{Logger: c.Logger})

	srv, err := server.New(runner, opts,
		server.WithLogger(c.Logger),
		server.WithTimeouts(c.Config.Server.ReadTimeout, c.Config.Server.WriteTimeout),
	)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	if err := srv.Rescan(ctx, opts.Refresh); err != nil {
		return err
	}
	prog.done("Initial scan complete", "root", opts.Root+opts.Input)

	printInfo("Serving %s on %s", StyleHighlight.Render(opts.Root+opts.Input), StyleValue.Render(addr))
	return srv.ListenAndServe(ctx, addr)
}
