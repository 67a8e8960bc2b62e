package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skelgraph/pkg/observability"
	"github.com/matzehuels/skelgraph/pkg/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		metrics bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		Long: `Start an HTTP server exposing the skeleton pipeline:

  GET  /healthz
  GET  /metrics      Prometheus metrics (unless --metrics=false)
  POST /v1/stats     statistics of the posted skeleton
  POST /v1/clean     cleaned skeleton (query: min_length, min_points, prune_degree, max_rounds, scale)
  POST /v1/path      shortest path (query: from, to or from_edge, to_edge)
  POST /v1/dot       node-link diagram (query: format, detailed, cycles_only, rankdir)

The listen address and the cache come from the [server] and [cache] tables of
the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			var gather prometheus.Gatherer
			if metrics {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				m := observability.NewMetrics(reg)
				observability.SetPipelineHooks(m)
				observability.SetCacheHooks(m)
				observability.SetHTTPHooks(m)
				defer observability.Reset()
				gather = reg
			}

			return server.New(runner, cfg, gather, c.Logger).ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "expose Prometheus metrics on /metrics")
	return cmd
}
