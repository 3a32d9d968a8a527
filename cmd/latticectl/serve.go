package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/latticedb/lattice/pkg/events"
	"github.com/latticedb/lattice/pkg/metrics"
	"github.com/latticedb/lattice/pkg/shaper"
	"github.com/latticedb/lattice/pkg/txn"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Open the database and expose Prometheus metrics and health endpoints",
	Long: `serve opens the database under --data-dir, starts a metrics
Collector sampling it on a ticker, and serves /metrics, /health,
/ready, and /live over HTTP until interrupted.

It holds the vocbase open for the lifetime of the process; use it to
observe a long-running embedding rather than to perform one-shot
catalog operations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

		v, err := openVocbase(cmd)
		if err != nil {
			return err
		}
		defer v.Close()

		v.Events = events.NewBroker()
		v.Events.Start()
		defer v.Events.Stop()

		sh := shaper.NewShaper(32)
		mgr := txn.NewManager()
		mgr.Events = v.Events

		collector := metrics.NewCollector(v, sh, mgr)
		collector.Start()
		defer collector.Stop()

		metrics.SetVersion(Version)
		metrics.RegisterComponent("catalog", true, fmt.Sprintf("%d collections tracked", len(v.Collections())))
		if err := v.StoreHealthy(); err != nil {
			metrics.RegisterComponent("store", false, err.Error())
		} else {
			metrics.RegisterComponent("store", true, "")
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		mux.Handle("/ready", metrics.ReadyHandler())
		mux.Handle("/live", metrics.LivenessHandler())

		server := &http.Server{Addr: metricsAddr, Handler: mux}
		errCh := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		fmt.Printf("serving metrics and health endpoints on http://%s\n", metricsAddr)
		fmt.Println("press Ctrl+C to stop")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			fmt.Println("\nshutting down...")
		case err := <-errCh:
			return fmt.Errorf("latticectl: metrics server: %w", err)
		}

		timeout := 5 * time.Second
		done := make(chan struct{})
		go func() {
			_ = server.Close()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(timeout):
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "Address to serve /metrics and health endpoints on")
	rootCmd.AddCommand(serveCmd)
}
