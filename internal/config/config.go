// Package config defines the configuration for SolarCheck binaries.
// Configuration is loaded once at startup and is immutable thereafter.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> struct defaults (Lowest)
//
// Any invalid value causes the process to exit on startup.
package config

import (
	"time"
)

// Config is the top-level configuration struct. Sub-components receive only
// the section they need.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"solarcheck"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	// Domain Configurations
	Server        ServerConfig
	Upstream      UpstreamConfig
	Session       SessionConfig
	Events        EventsConfig
	AWS           AWSConfig
	Security      SecurityConfig
	Observability ObservabilityConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// IsLocal reports whether the process runs on a developer machine.
func (c *Config) IsLocal() bool {
	return c.Environment == "local"
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"29s" validate:"gt=0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
}

// UpstreamConfig holds the public API endpoints and outbound client tuning.
type UpstreamConfig struct {
	IPInfoURL   string       `envconfig:"IPINFO_URL" default:"https://ipinfo.io" validate:"required,url"`
	IPInfoToken SecretString `envconfig:"IPINFO_TOKEN"`

	NominatimURL string  `envconfig:"NOMINATIM_URL" default:"https://nominatim.openstreetmap.org" validate:"required,url"`
	NominatimRPS float64 `envconfig:"NOMINATIM_RPS" default:"1" validate:"gt=0,lte=1"`

	OpenMeteoURL string `envconfig:"OPEN_METEO_URL" default:"https://api.open-meteo.com" validate:"required,url"`
	Timezone     string `envconfig:"OPEN_METEO_TIMEZONE" default:"auto" validate:"required"`

	NASAPowerURL  string `envconfig:"NASA_POWER_URL" default:"https://power.larc.nasa.gov" validate:"required,url"`
	ReferenceYear int    `envconfig:"NASA_POWER_YEAR" default:"2023" validate:"min=1981,max=2100"`

	// UserAgent identifies us to upstreams; Nominatim rejects anonymous
	// clients.
	UserAgent string        `envconfig:"UPSTREAM_USER_AGENT" default:"SolarCheck/1.0" validate:"required"`
	Timeout   time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"15s" validate:"gt=0"`

	BreakerFailures    uint32        `envconfig:"BREAKER_FAILURES" default:"5" validate:"gt=0"`
	BreakerOpenTimeout time.Duration `envconfig:"BREAKER_OPEN_TIMEOUT" default:"30s" validate:"gt=0"`
}

// SessionConfig holds guided-check session settings.
type SessionConfig struct {
	TTL           time.Duration `envconfig:"SESSION_TTL" default:"30m" validate:"gt=0"`
	DefaultPanels int           `envconfig:"DEFAULT_PANEL_COUNT" default:"5" validate:"min=1,max=20"`
}

// EventsConfig holds the optional evaluation event queue. Events are
// dropped when QueueURL is empty.
type EventsConfig struct {
	QueueURL string `envconfig:"EVENTS_QUEUE_URL" validate:"omitempty,url"`
}

// Enabled reports whether events should be published.
func (e EventsConfig) Enabled() bool {
	return e.QueueURL != ""
}

// AWSConfig holds regional configuration shared by the AWS clients.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	// LocalStack Support (Empty in Prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL" validate:"omitempty,url"`
}

// SecurityConfig holds browser-facing settings.
type SecurityConfig struct {
	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricsEnabled  bool   `envconfig:"METRICS_ENABLED" default:"false"`
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"SolarCheck"`
}

// BuildInfo holds build-time metadata injected via ldflags.
// These values are NOT populated from environment variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
