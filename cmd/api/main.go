// Package main is the entry point for the disasterwatch API.
//
// It loads configuration, opens the store, wires the weather provider, alert
// publisher and metrics backend, and then serves the chi router either as a
// standalone HTTP server or behind API Gateway in AWS Lambda.
//
// SIGINT and SIGTERM trigger a graceful shutdown.
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

	"golang.org/x/sync/errgroup"

	"disasterwatch/internal/config"
	"disasterwatch/internal/db"
	"disasterwatch/internal/external"
	"disasterwatch/internal/weather"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(secretProvider())
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("disasterwatch API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
		"database_driver", cfg.Database.Driver,
		"metrics_backend", cfg.Observability.MetricsBackend,
		"alert_publisher", cfg.Alerts.Publisher,
	)

	store, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	app, err := buildApp(ctx, cfg, store, logger)
	if err != nil {
		store.Close()
		return err
	}
	defer app.close(logger)

	if !cfg.Weather.APIKey.IsSet() {
		logger.Warn("OPENWEATHER_API_KEY is not set; city lookups will fail and the bulk view serves demo data")
	}

	if isLambdaEnvironment() {
		return runLambda(ctx, app.server, logger)
	}
	return runHTTPServer(ctx, app.server, cfg, logger)
}

// secretProvider returns the SSM provider used to resolve *_SSM_PARAM
// variables. It is nil locally, where SSM is never consulted.
func secretProvider() config.SecretProvider {
	if os.Getenv("APP_ENV") == "" || os.Getenv("APP_ENV") == "local" {
		return nil
	}
	return config.NewSSMProvider(os.Getenv("AWS_REGION"), os.Getenv("AWS_ENDPOINT_URL"))
}

// newWeatherService builds the domain service over the OpenWeatherMap client.
func newWeatherService(cfg *config.Config, store db.Store, deps appDeps, logger *slog.Logger) *weather.Service {
	provider := external.NewDefaultOpenWeatherClient(cfg.Weather.BaseURL, cfg.Weather.APIKey, cfg.Weather.Timeout)
	return weather.NewService(provider, store, logger,
		weather.WithPublisher(deps.publisher),
		weather.WithMetrics(deps.domainMetrics),
		weather.WithCities(cfg.Weather.CityList()),
		weather.WithDemoMode(cfg.Weather.DemoMode),
	)
}

// isLambdaEnvironment reports whether the process runs inside AWS Lambda.
func isLambdaEnvironment() bool {
	_, hasRuntimeAPI := os.LookupEnv("AWS_LAMBDA_RUNTIME_API")
	_, hasServerPort := os.LookupEnv("_LAMBDA_SERVER_PORT")
	return hasRuntimeAPI || hasServerPort
}

// runHTTPServer serves until ctx is cancelled or the listener fails, then
// drains in-flight requests for up to shutdownTimeout.
func runHTTPServer(ctx context.Context, srv shutdowner, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("initiating graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped cleanly")
	return nil
}

// shutdowner is the part of *core.Server the run loops need.
type shutdowner interface {
	Handler() http.Handler
	Shutdown(ctx context.Context) error
}

// newLogger creates a JSON slog.Logger at the given level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
