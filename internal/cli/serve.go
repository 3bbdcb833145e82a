package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gestiontall/taller/internal/config"
	httpx "github.com/gestiontall/taller/internal/infra/http"
	"github.com/gestiontall/taller/internal/infra/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the workshop HTTP service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}

	handler := httpx.NewHandler(log, a.products, a.inv, a.recipes, a.clients,
		a.settlement, a.engine, a.exporter, cfg.Production.HourlyRate)
	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, handler)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			stop()
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
	return nil
}
