package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockpress/pkg/observability"
	"github.com/matzehuels/blockpress/pkg/server"
)

// shutdownTimeout bounds graceful shutdown after an interrupt.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		metrics bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API over HTTP",
		Long: `Serve the render API over HTTP.

Routes:
  GET  /healthz
  GET  /v1/blocks?context=email
  POST /v1/blocks/{type}/instances
  POST /v1/render/{context}
  POST /v1/finalize
  POST /v1/outline
  GET  /metrics            (with --metrics)

The server shuts down gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("metrics") {
				cfg.Metrics = metrics
			}
			return c.runServe(cmd.Context(), cfg.Addr, cfg.Metrics, cfg.Timeout, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "expose Prometheus metrics on /metrics")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, metrics bool, timeout time.Duration, noCache bool) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := server.Options{Addr: addr, Timeout: timeout, Logger: logger}
	if metrics {
		reg := prom.NewRegistry()
		hooks := observability.NewPrometheusHooks(reg)
		observability.SetRenderHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
		defer observability.Reset()
		opts.Metrics = reg
	}
	srv := server.New(runner, opts)

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	printSuccess("Serving on %s", StyleLink.Render(addr))
	printDetail("cache: %s · contexts: %v", c.Config.Cache.Backend, runner.Adapters.Contexts())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errc
}
