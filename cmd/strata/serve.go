package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/cli"
	httpAdapter "github.com/aretw0/strata/pkg/adapters/http"
	"github.com/aretw0/strata/pkg/observability"
	"github.com/aretw0/strata/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the documents of the configured store over a JSON API, with
server-sent structure events per document and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port := cfg.HTTP.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetString("port")
		}

		hub := httpAdapter.NewEventHub(0)
		var (
			metrics *observability.Metrics
			reg     *prometheus.Registry
		)
		if cfg.HTTP.Metrics {
			reg = prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics = observability.NewMetrics(reg)
		}

		sessions, backend, err := openSessions(func(id string) []strata.Option {
			opts := []strata.Option{strata.WithListener(hub.Listener(id))}
			if metrics != nil {
				opts = append(opts,
					strata.WithListener(metrics.Listener()),
					strata.WithLifecycleHooks(metrics.Hooks()),
				)
			}
			return opts
		}, sessionCloseHook(hub, metrics))
		if err != nil {
			return err
		}
		defer backend.Close()

		handlerOpts := []httpAdapter.Option{httpAdapter.WithEvents(hub), httpAdapter.WithLogger(logger)}
		if metrics != nil {
			handlerOpts = append(handlerOpts, httpAdapter.WithMetrics(metrics, reg))
		}
		srv := &http.Server{
			Addr:    ":" + port,
			Handler: httpAdapter.NewHandler(sessions, handlerOpts...),
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting strata server", "address", srv.Addr, "store", cfg.Store.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case <-sigCtx.Done():
			logger.Info("shutting down", "signal", sigCtx.Signal())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
			logger.Info("strata server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on (overrides http.port)")
}

// sessionCloseHook drops the per-document event and metric state of closed
// documents.
func sessionCloseHook(hub *httpAdapter.EventHub, metrics *observability.Metrics) session.Option {
	return session.WithCloseHook(func(id string) {
		hub.Forget(id)
		if metrics != nil {
			metrics.Forget(id)
		}
	})
}
