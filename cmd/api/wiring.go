package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/go-chi/chi/v5"

	"disasterwatch/internal/api/handlers"
	"disasterwatch/internal/config"
	"disasterwatch/internal/core"
	"disasterwatch/internal/db"
	"disasterwatch/internal/queue"
	"disasterwatch/internal/telemetry"
	"disasterwatch/internal/types"
	"disasterwatch/internal/weather"
)

// appDeps are the optional backends selected by configuration.
type appDeps struct {
	requestMetrics core.MetricsCollector
	domainMetrics  weather.Metrics
	metricsHandler http.Handler
	publisher      types.AlertPublisher
	closers        []func() error
}

type app struct {
	server *core.Server
	deps   appDeps
}

func (a *app) close(logger *slog.Logger) {
	for _, c := range a.deps.closers {
		if err := c(); err != nil {
			logger.Error("error releasing resource", "error", err)
		}
	}
}

// buildApp wires every component over an open store.
func buildApp(ctx context.Context, cfg *config.Config, store db.Store, logger *slog.Logger) (*app, error) {
	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		c, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
		}
		awsCfg = &c
		return c, nil
	}

	deps, err := buildDeps(cfg, loadAWS, logger)
	if err != nil {
		return nil, err
	}

	svc := newWeatherService(cfg, store, deps, logger)

	srv, err := core.NewServer(cfg, store, logger)
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}
	srv.Metrics = deps.requestMetrics
	srv.MetricsHandler = deps.metricsHandler
	srv.HealthProbes = []core.HealthProbe{
		core.ProbeFunc{ProbeName: "database", Fn: store.Ping},
	}

	weatherHandler := handlers.NewWeatherHandler(svc, logger)
	alertsHandler := handlers.NewAlertsHandler(store.Alerts())
	statusHandler := handlers.NewStatusHandler(store.StatusChecks(), srv.Validator)
	srv.RouteRegistrars = []func(chi.Router){
		handlers.RegisterRoot,
		weatherHandler.RegisterRoutes,
		alertsHandler.RegisterRoutes,
		statusHandler.RegisterRoutes,
	}
	srv.MountRoutes()

	return &app{server: srv, deps: deps}, nil
}

// buildDeps selects the metrics backend and the alert publisher. AWS config is
// only loaded when one of them needs it.
func buildDeps(cfg *config.Config, loadAWS func() (aws.Config, error), logger *slog.Logger) (appDeps, error) {
	var deps appDeps

	switch cfg.Observability.MetricsBackend {
	case "prometheus":
		m := telemetry.NewPrometheusMetrics()
		deps.requestMetrics, deps.domainMetrics, deps.metricsHandler = m, m, m.Handler()
	case "cloudwatch":
		awsCfg, err := loadAWS()
		if err != nil {
			return deps, err
		}
		client := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			}
		})
		m := telemetry.NewCloudWatchMetrics(client, cfg.Observability.MetricNamespace, logger)
		deps.requestMetrics, deps.domainMetrics = m, m
	default:
		deps.requestMetrics, deps.domainMetrics = telemetry.Nop{}, telemetry.Nop{}
	}

	switch cfg.Alerts.Publisher {
	case "sqs":
		awsCfg, err := loadAWS()
		if err != nil {
			return deps, err
		}
		client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			}
		})
		deps.publisher = queue.NewSQSAlertPublisher(client, cfg.Alerts.SQSQueueURL, logger)
	case "kafka":
		p := queue.NewKafkaAlertPublisher(cfg.Alerts.KafkaBrokers, cfg.Alerts.KafkaTopic, logger)
		deps.publisher = p
		deps.closers = append(deps.closers, p.Close)
	}

	return deps, nil
}
