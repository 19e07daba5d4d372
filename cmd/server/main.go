// Package main is the entry point for the stockreport API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"stockreport/internal/app"
	"stockreport/internal/infrastructure/config"
	v1 "stockreport/internal/infrastructure/http/v1"
	"stockreport/internal/infrastructure/http/v1/handlers"
	"stockreport/pkg/logger"
)

func main() {
	configFile := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.LoggerConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting stockreport server", "env", cfg.App.Env, "version", cfg.App.Version)

	a, err := app.New(ctx, cfg, cfg.App.Name)
	if err != nil {
		log.Fatalw("failed to initialize", "error", err)
	}
	defer a.Close()
	a.Pool.LogStats(ctx)

	mode := gin.DebugMode
	if cfg.App.IsProduction() {
		mode = gin.ReleaseMode
	}

	var handler http.Handler = v1.NewRouter(v1.RouterConfig{
		Logger:     log.WithComponent("http"),
		Mode:       mode,
		Database:   a.Pool,
		Catalog:    a.Repo,
		Info:       handlers.AppInfo{Name: cfg.App.Name, Version: cfg.App.Version, Env: cfg.App.Env},
		Reports:    a.Reports,
		MaxPerPage: cfg.Catalog.MaxPerPage,
	})
	if cfg.HTTP.Gzip {
		if handler, err = v1.WithCompression(handler, cfg.HTTP.GzipMinSize); err != nil {
			log.Fatalw("failed to enable compression", "error", err)
		}
	}

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "port", cfg.App.Port, "gzip", cfg.HTTP.Gzip)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
