package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"traceper/internal/config"
	"traceper/internal/handlers"
	"traceper/internal/logger"
	"traceper/internal/server"
	"traceper/internal/storage"
	"traceper/internal/tabs"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	// init logger
	log := logger.Get(cfg.LogLevel)
	if cfg.LogLevel != logger.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	// open DB
	kv, closeStorage := openStorage(cfg.DBPath, cfg.Origin, log)
	defer closeStorage()

	// wire dependencies
	origin := storage.NewOrigin(cfg.Origin, kv, log)
	reg, err := tabs.NewRegistry(origin, tabs.Config{
		Routes:     cfg.Routes,
		APIBaseURL: cfg.API.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.API.Timeout},
	}, log)
	if err != nil {
		return err
	}
	srv := server.New(cfg.Port, handlers.NewHandler(reg, log).InitRoutes())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infow("server_listening", "addr", srv.Addr(), "origin", cfg.Origin, "api", cfg.API.BaseURL)
		return srv.Run()
	})
	g.Go(func() error {
		return reg.RunSweeper(gctx, cfg.Tabs.IdleTTL, cfg.Tabs.SweepInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down server...")

		// allow in-flight requests to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
