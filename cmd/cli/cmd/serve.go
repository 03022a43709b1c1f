// Package cmd - serve command
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ttttvvvv/ParkingCalculator/adapters/history"
	"github.com/ttttvvvv/ParkingCalculator/api"
	"github.com/ttttvvvv/ParkingCalculator/internal/config"
	"github.com/ttttvvvv/ParkingCalculator/internal/logging"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the parking calculation API server",
	Long: `Load the NPR dataset and serve the calculation API over HTTP.

Endpoints:
  POST /calculate          itemized cost for a zone or address
  GET  /zones              list all zones
  GET  /zones/search?q=    search zones by description
  GET  /zones/{id}/tariff  full tariff of one zone
  GET  /health, /version`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get()

	reg, loc, err := loadDataset(ctx)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}

	var store history.Store
	if cfg.History.Enabled {
		store, err = history.StoreFactory(history.Backend(cfg.History.Backend), cfg.History.Path)
		if err != nil {
			return fmt.Errorf("opening calculation history: %w", err)
		}
		defer store.Close()
	}

	server := api.NewServerWithHistory(newEngine(reg, loc), reg, newResolver(), store, Version)

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	fmt.Printf("parkcalc v%s serving on %s\n", Version, addr)
	defer logging.Sync()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logging.Info("shutting down", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
