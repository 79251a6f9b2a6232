package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/clubhub-dev/clubhub/internal/config"
	"github.com/clubhub-dev/clubhub/internal/logger"
	"github.com/clubhub-dev/clubhub/internal/router"
	"github.com/clubhub-dev/clubhub/internal/setup"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		logger.Log.Error("setup failed", "error", err)
		os.Exit(1)
	}
	defer deps.Storage.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if deps.Bridge != nil {
		go func() {
			if err := deps.Bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Log.Error("realtime bridge stopped", "error", err)
			}
		}()
		defer deps.Bridge.Close()
	}

	srv := &http.Server{
		Addr:    cfg.Public.ListenAddr,
		Handler: router.New(deps),
	}

	go func() {
		logger.Log.Info("server started", "addr", cfg.Public.ListenAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Public.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("graceful shutdown failed", "error", err)
	}
}
