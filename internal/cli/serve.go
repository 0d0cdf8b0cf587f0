package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/burrow/internal/metrics"
	"github.com/matzehuels/burrow/internal/server"
	"github.com/matzehuels/burrow/pkg/config"
	"github.com/matzehuels/burrow/pkg/history"
	"github.com/matzehuels/burrow/pkg/pipeline"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noMetrics bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes the solver over HTTP:

  POST /v1/solve       solve a diagram or layout
  GET  /v1/runs        list recent runs
  GET  /v1/runs/{id}   fetch one run
  GET  /healthz        liveness probe
  GET  /metrics        Prometheus metrics

The cache backend and history store come from the config file and the
BURROW_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg, !noMetrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.Default().Server.Addr, "listen address")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}

// runServe wires cache, history and metrics into a server and blocks until
// ctx is done.
func (c *CLI) runServe(ctx context.Context, cfg config.Config, withMetrics bool) error {
	logger := loggerFromContext(ctx)

	catalog, err := cfg.BurrowCatalog()
	if err != nil {
		return err
	}
	ch, err := newCache(ctx, cfg, false)
	if err != nil {
		return err
	}

	var store history.Store = history.NewMemoryStore(cfg.History.MaxRuns)
	if cfg.History.MongoURI != "" {
		mongo, err := newHistoryStore(ctx, cfg)
		if err != nil {
			_ = ch.Close()
			return err
		}
		store = mongo
	}

	runner := pipeline.NewRunner(ch, nil, store, logger)
	runner.SolutionTTL = cfg.Cache.TTL
	defer func() {
		if err := runner.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("shutdown", "err", err)
		}
	}()

	opts := server.Options{
		Runner:       runner,
		History:      store,
		Catalog:      catalog,
		Memoize:      cfg.Search.Memoize,
		Bound:        cfg.Search.Bound,
		SolveTimeout: cfg.Server.SolveTimeout,
		ReadTimeout:  cfg.Server.ReadTimeout,
		Logger:       logger,
	}
	if withMetrics {
		m := metrics.New()
		m.Register()
		opts.Metrics = m.Handler()
	}

	logger.Info("starting api", "cache", cfg.Cache.Backend, "history", historyKind(cfg))
	return server.New(opts).ListenAndServe(ctx, cfg.Server.Addr)
}

func historyKind(cfg config.Config) string {
	if cfg.History.MongoURI != "" {
		return "mongo"
	}
	return "memory"
}
