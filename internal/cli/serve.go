package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stagegraph/internal/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagram pipeline over HTTP",
		Long: `Serve the diagram pipeline over HTTP.

Routes:
  GET  /healthz     liveness and build information
  POST /v1/graph    workflow document -> graph state
  POST /v1/route    workflow document + measured boxes -> link paths
  POST /v1/render   workflow document -> rendered diagram (?format=svg)

The listener, timeouts and cache backend come from the [server] and [cache]
tables of the configuration file. Use a redis cache to share results across
instances.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from the config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	printInfo("Serving on %s", StyleHighlight.Render(cfg.Server.Addr))
	printKeyValue("cache", cacheLabel(cfg.Cache.Backend, noCache))

	srv := server.New(runner, server.WithConfig(cfg), server.WithLogger(c.Logger))
	return srv.ListenAndServe(ctx)
}

func cacheLabel(backend string, noCache bool) string {
	if noCache {
		return "disabled"
	}
	return backend
}
