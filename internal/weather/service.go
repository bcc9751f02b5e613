// Package weather orchestrates a weather request: fetch from the provider,
// classify, persist the snapshot, and raise an alert for elevated risk.
package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"disasterwatch/internal/risk"
	"disasterwatch/internal/types"
)

// Provider fetches current conditions. Returned snapshots carry no risk fields.
type Provider interface {
	CurrentByCity(ctx context.Context, city string) (*types.WeatherSnapshot, error)
	CurrentByCoordinates(ctx context.Context, lat, lon float64) (*types.WeatherSnapshot, error)
	Configured() bool
}

// Metrics receives domain counters. Implemented in internal/telemetry.
type Metrics interface {
	RecordFetch(kind, outcome string, d time.Duration)
	RecordAssessment(level types.RiskLevel)
	RecordAlert(level types.RiskLevel)
}

// Fetch kinds and outcomes reported to Metrics.
const (
	KindCity        = "city"
	KindCoordinates = "coordinates"
	KindBulk        = "bulk"

	OutcomeSuccess     = "success"
	OutcomeConfigError = "config_error"
	OutcomeProvider    = "provider_error"
)

// BulkResult is the bulk weather view.
type BulkResult struct {
	Cities []types.CityWeather
	// Skipped counts cities that failed and were left out.
	Skipped int
	Demo    bool
}

// Service is the weather orchestration service.
type Service struct {
	provider  Provider
	repos     types.RepositoryRegistry
	publisher types.AlertPublisher
	metrics   Metrics
	clock     clockwork.Clock
	logger    *slog.Logger
	cities    []string
	demoMode  bool
	newID     func() string
}

// Option configures a Service.
type Option func(*Service)

func WithClock(c clockwork.Clock) Option { return func(s *Service) { s.clock = c } }

func WithPublisher(p types.AlertPublisher) Option { return func(s *Service) { s.publisher = p } }

func WithMetrics(m Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithCities sets the live list used by the bulk view.
func WithCities(cities []string) Option { return func(s *Service) { s.cities = cities } }

// WithDemoMode forces the bulk view to serve demo data.
func WithDemoMode(on bool) Option { return func(s *Service) { s.demoMode = on } }

// WithIDGenerator overrides uuid generation.
func WithIDGenerator(fn func() string) Option { return func(s *Service) { s.newID = fn } }

// NewService creates a Service.
func NewService(provider Provider, repos types.RepositoryRegistry, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		provider: provider,
		repos:    repos,
		metrics:  noopMetrics{},
		clock:    clockwork.NewRealClock(),
		logger:   logger,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ByCity fetches, classifies and stores conditions for a city. An Alert is
// created for MEDIUM and HIGH. Storage failures are logged and do not fail
// the request.
func (s *Service) ByCity(ctx context.Context, city string) (*types.WeatherSnapshot, error) {
	start := s.clock.Now()
	snap, err := s.provider.CurrentByCity(ctx, city)
	s.metrics.RecordFetch(KindCity, outcomeOf(err), s.clock.Since(start))
	if err != nil {
		return nil, err
	}

	s.finish(ctx, snap)
	if snap.RiskLevel.RaisesAlert() {
		s.raiseAlert(ctx, snap)
	}
	return snap, nil
}

// ByCoordinates is ByCity keyed by a coordinate pair. It never creates alerts.
func (s *Service) ByCoordinates(ctx context.Context, lat, lon float64) (*types.WeatherSnapshot, error) {
	start := s.clock.Now()
	snap, err := s.provider.CurrentByCoordinates(ctx, lat, lon)
	s.metrics.RecordFetch(KindCoordinates, outcomeOf(err), s.clock.Since(start))
	if err != nil {
		return nil, err
	}

	s.finish(ctx, snap)
	return snap, nil
}

// finish classifies, stamps and persists a fetched snapshot.
func (s *Service) finish(ctx context.Context, snap *types.WeatherSnapshot) {
	risk.Apply(snap)
	s.metrics.RecordAssessment(snap.RiskLevel)
	snap.ID = s.newID()
	snap.Timestamp = s.clock.Now().UTC()

	if err := s.repos.Snapshots().Create(ctx, snap); err != nil {
		s.log(ctx).ErrorContext(ctx, "failed to persist weather snapshot",
			"snapshot_id", snap.ID,
			"city", snap.City,
			"error", err,
		)
	}
}

func (s *Service) raiseAlert(ctx context.Context, snap *types.WeatherSnapshot) {
	alert := &types.Alert{
		ID:           s.newID(),
		City:         snap.City,
		DisasterType: snap.DisasterType,
		RiskLevel:    snap.RiskLevel,
		Message:      AlertMessage(snap),
		Timestamp:    s.clock.Now().UTC(),
		Active:       true,
	}

	if err := s.repos.Alerts().Create(ctx, alert); err != nil {
		s.log(ctx).ErrorContext(ctx, "failed to persist alert",
			"alert_id", alert.ID,
			"city", alert.City,
			"risk_level", alert.RiskLevel,
			"error", err,
		)
		return
	}
	s.metrics.RecordAlert(alert.RiskLevel)

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAlert(ctx, alert); err != nil {
		s.log(ctx).WarnContext(ctx, "failed to publish alert",
			"alert_id", alert.ID,
			"error", err,
		)
	}
}

// log prefers the request-scoped logger installed by the HTTP layer.
func (s *Service) log(ctx context.Context) *slog.Logger {
	return types.LoggerFromContext(ctx, s.logger)
}

// AlertMessage renders the human-readable alert text.
func AlertMessage(snap *types.WeatherSnapshot) string {
	return fmt.Sprintf("%s risk of %s in %s. Current conditions: %s, Temp: %s°C, Humidity: %s%%",
		snap.RiskLevel, snap.DisasterType, snap.City, snap.Description,
		formatNumber(snap.Temperature), formatNumber(snap.Humidity))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Demo reports whether the bulk view serves demo data.
func (s *Service) Demo() bool {
	return s.demoMode || !s.provider.Configured()
}

// Multiple returns the bulk view. Live mode fetches the configured cities one
// after another, skipping any that fail. Once ctx is done the cities not yet
// fetched are counted as skipped and the rows gathered so far are returned.
// Rows are not persisted.
func (s *Service) Multiple(ctx context.Context) (*BulkResult, error) {
	if s.Demo() {
		return &BulkResult{Cities: DemoCities(), Demo: true}, nil
	}

	result := &BulkResult{Cities: make([]types.CityWeather, 0, len(s.cities))}
	for i, city := range s.cities {
		if err := ctx.Err(); err != nil {
			remaining := len(s.cities) - i
			result.Skipped += remaining
			s.log(ctx).WarnContext(ctx, "bulk weather view cut short",
				"remaining", remaining,
				"returned", len(result.Cities),
				"error", err,
			)
			break
		}

		start := s.clock.Now()
		snap, err := s.provider.CurrentByCity(ctx, city)
		s.metrics.RecordFetch(KindBulk, outcomeOf(err), s.clock.Since(start))
		if err != nil {
			result.Skipped++
			s.log(ctx).WarnContext(ctx, "skipping city in bulk weather view", "city", city, "error", err)
			continue
		}

		a := risk.Classify(risk.FromSnapshot(snap))
		s.metrics.RecordAssessment(a.Level)
		result.Cities = append(result.Cities, types.CityWeather{
			City:         snap.City,
			Country:      snap.Country,
			Lat:          snap.Lat,
			Lon:          snap.Lon,
			Temperature:  snap.Temperature,
			Humidity:     snap.Humidity,
			Pressure:     snap.Pressure,
			WindSpeed:    snap.WindSpeed,
			Description:  snap.Description,
			RiskLevel:    a.Level,
			RiskScore:    a.Score,
			DisasterType: a.DisasterType,
		})
	}
	return result, nil
}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	var appErr *types.AppError
	if errors.As(err, &appErr) && appErr.Code == types.ErrCodeConfigWeatherAPIKeyMissing {
		return OutcomeConfigError
	}
	return OutcomeProvider
}

type noopMetrics struct{}

func (noopMetrics) RecordFetch(string, string, time.Duration) {}
func (noopMetrics) RecordAssessment(types.RiskLevel)          {}
func (noopMetrics) RecordAlert(types.RiskLevel)               {}
