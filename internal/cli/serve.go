package cli

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridpath/internal/server"
	"github.com/matzehuels/gridpath/pkg/observability"
	"github.com/matzehuels/gridpath/pkg/observability/prom"
)

// serveCommand creates the serve command that exposes runs over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stepping API over HTTP",
		Long: `Serve the stepping API over HTTP.

Clients create a run with POST /runs and advance it with
POST /runs/{id}/step, reading the node categories after each checkpoint.
Prometheus metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			var opts []server.Option
			if !noMetrics {
				m := prom.New(prometheus.DefaultRegisterer)
				observability.SetSearchHooks(m)
				observability.SetCacheHooks(m)
				observability.SetHTTPHooks(m)
				defer observability.Reset()
				opts = append(opts, server.WithMetrics(promhttp.Handler()))
			}

			srv := server.New(cfg, loggerFromContext(cmd.Context()), opts...)
			err = srv.Run(cmd.Context(), cfg.Server.Addr)
			if errors.Is(err, context.Canceled) {
				printInfo("Server stopped")
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (default from config)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}
