// Package config defines the process configuration for the disasterwatch API.
//
// Configuration is loaded once at startup and is immutable thereafter. Values
// come from the OS environment, then a .env file, then (outside local) AWS SSM
// Parameter Store via *_SSM_PARAM pointer variables. A missing required value
// or an invalid format fails startup.
package config

import (
	"time"

	"disasterwatch/internal/types"
)

// SecretString is an alias for types.SecretString.
type SecretString = types.SecretString

// DefaultCities is the live city list used by the bulk weather view.
var DefaultCities = []string{
	"Mumbai", "Delhi", "Kolkata", "Chennai", "Bangalore", "Hyderabad",
	"New York", "London", "Tokyo", "Sydney", "Dubai", "Singapore",
}

// Config is the top-level configuration struct. Sub-components receive only
// the subset they need.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"disasterwatch-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server        ServerConfig
	Database      DatabaseConfig
	Weather       WeatherConfig
	AWS           AWSConfig
	Alerts        AlertsConfig
	Observability ObservabilityConfig

	// Injected via ldflags, not env.
	Build BuildInfo
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port               string        `envconfig:"PORT" default:"8080"`
	APIPrefix          string        `envconfig:"API_PREFIX" default:"/api" validate:"startswith=/"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	CorsAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// DatabaseConfig holds connection and pool tuning parameters.
type DatabaseConfig struct {
	// Driver selects the persistence backend.
	Driver string       `envconfig:"DATABASE_DRIVER" default:"postgres" validate:"oneof=postgres sqlite"`
	URL    SecretString `envconfig:"DATABASE_URL" validate:"required"`

	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10" validate:"min=1"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2" validate:"min=0"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	ConnectTimeout    time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// WeatherConfig holds the OpenWeatherMap client settings.
type WeatherConfig struct {
	// APIKey is optional at startup. Without it single-city requests fail
	// with a configuration error and the bulk view serves demo data.
	APIKey   SecretString  `envconfig:"OPENWEATHER_API_KEY"`
	BaseURL  string        `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org/data/2.5" validate:"url"`
	Timeout  time.Duration `envconfig:"OPENWEATHER_TIMEOUT" default:"10s"`
	DemoMode bool          `envconfig:"WEATHER_DEMO_MODE" default:"false"`
	Cities   []string      `envconfig:"WEATHER_CITIES"`
}

// AWSConfig holds AWS regional configuration.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`
	// LocalStack support. Empty in prod.
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// AlertsConfig selects where created alerts are fanned out.
type AlertsConfig struct {
	Publisher    string   `envconfig:"ALERT_PUBLISHER" default:"none" validate:"oneof=none sqs kafka"`
	SQSQueueURL  string   `envconfig:"ALERT_SQS_QUEUE_URL" validate:"required_if=Publisher sqs"`
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS" validate:"required_if=Publisher kafka"`
	KafkaTopic   string   `envconfig:"KAFKA_ALERT_TOPIC" default:"disaster-alerts"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricsBackend  string `envconfig:"METRICS_BACKEND" default:"prometheus" validate:"oneof=prometheus cloudwatch none"`
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"DisasterWatch"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// CityList returns the configured live cities, or DefaultCities.
func (w WeatherConfig) CityList() []string {
	if len(w.Cities) == 0 {
		return DefaultCities
	}
	return w.Cities
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	ErrValidation    ConfigErrorType = "VALIDATION_FAILED"
	ErrParsing       ConfigErrorType = "PARSING_FAILED"
)
