// Command server is the entry point for the Chirp API.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chirp/internal/bootstrap"
	"chirp/internal/config"
	"chirp/internal/middleware"
	"chirp/internal/observability"
	"chirp/internal/server"
)

// @title Chirp API
// @version 1.0
// @description Short-form social API with posts, threaded comments, likes and follows
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@chirp.local

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8375
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := run(); err != nil {
		middleware.Logger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	middleware.ConfigureLogger(cfg.Env, cfg.LogLevel)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "chirp-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		return err
	}

	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedPreset: cfg.SeedPreset})
	if err != nil {
		return err
	}

	srv, err := server.NewServerWithDeps(cfg, db, rdb)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigChan:
		middleware.Logger.Info("Shutting down server", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		middleware.Logger.Error("Server resource shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(ctx); err != nil {
		middleware.Logger.Error("Tracer shutdown error", slog.String("error", err.Error()))
	}
	return nil
}
