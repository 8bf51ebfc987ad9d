// Package main is the entry point for the SolarCheck API server.
//
// It loads configuration, wires the upstream clients and domain services,
// builds the HTTP server with the core chassis (middleware, routing, health
// checks), and serves until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solarcheck/internal/api/handlers"
	"solarcheck/internal/app"
	"solarcheck/internal/config"
	"solarcheck/internal/core"
	"solarcheck/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := app.NewLogger(cfg, os.Stdout)
	logger.Info("solarcheck API starting",
		"environment", cfg.Environment,
		"build", cfg.Build.String(),
		"port", cfg.Server.Port,
	)

	srv, err := buildServer(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	return runHTTPServer(srv, cfg, logger)
}

// buildServer wires every dependency and mounts the routes.
func buildServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*core.Server, error) {
	telemetry, err := app.NewTelemetry(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	upstreams := app.NewUpstreams(cfg.Upstream)
	upstreams.SetFailureRecorder(telemetry.Metrics)

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}
	srv.Metrics = telemetry.Metrics
	srv.HealthProbes = upstreams.Probes()

	sessions := session.NewService(
		session.NewStore(cfg.Session.TTL, nil),
		session.Deps{
			Resolver:      upstreams.Resolver(logger),
			Readings:      upstreams.Readings(cfg.Upstream.ReferenceYear, logger),
			Publisher:     telemetry.Publisher,
			Metrics:       telemetry.Metrics,
			DefaultPanels: cfg.Session.DefaultPanels,
		},
		logger,
	)

	feasibilityHandler := handlers.NewFeasibilityHandler(srv.Validator, telemetry.Metrics, telemetry.Publisher, logger)
	sessionHandler := handlers.NewSessionHandler(sessions, srv.Validator, logger)
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		feasibilityHandler.RegisterRoutes,
		sessionHandler.RegisterRoutes,
	)

	srv.MountRoutes()
	return srv, nil
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	// WriteTimeout sits above the request timeout so handlers can still
	// write their error envelope after the context deadline fires.
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}
