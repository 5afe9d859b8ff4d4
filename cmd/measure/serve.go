// ABOUTME: CLI command exposing Prometheus metrics over HTTP.
// ABOUTME: Serves /metrics from the measure store and /healthz for liveness checks.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harperreed/measure/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve Prometheus metrics",
	Long: `Serve Prometheus metrics for the measure store over HTTP.

ENDPOINTS:

  /metrics   measure_latest_value, measure_measurements_total, measure_bmi,
             measure_to_goal_kilograms, measure_storage_up plus Go runtime metrics
  /healthz   200 while the store answers

EXAMPLES:

  measure serve
  measure serve --addr 127.0.0.1:9191`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := metrics.Registry(metrics.NewCollector(repo, catalog, cfg, logger))
		srv := &http.Server{
			Addr:              serveAddr,
			Handler:           newServeHandler(reg),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("serving metrics", "addr", serveAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen on %s: %w", serveAddr, err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			logger.Info("shutting down metrics server")
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func newServeHandler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := repo.CountMeasurements(r.Context(), ""); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintln(w, "ok")
	})
	return mux
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":9090", "listen address")
	rootCmd.AddCommand(serveCmd)
}
