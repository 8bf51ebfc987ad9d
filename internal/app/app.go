// Package app assembles SolarCheck's runtime graph from configuration. The
// API server and the CLI share it so both talk to the same upstreams with
// the same client settings.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"solarcheck/internal/climate"
	"solarcheck/internal/config"
	"solarcheck/internal/core"
	"solarcheck/internal/external"
	"solarcheck/internal/location"
	"solarcheck/internal/metrics"
	"solarcheck/internal/queue"
	"solarcheck/internal/types"
)

// Upstreams holds one client per public API.
type Upstreams struct {
	Locator    *external.IPLocator
	Geocoder   *external.NominatimClient
	Weather    *external.OpenMeteoClient
	Irradiance *external.NASAPowerClient
}

// NewUpstreams builds the upstream clients. They share one *http.Client
// but each has its own circuit breaker.
func NewUpstreams(cfg config.UpstreamConfig) *Upstreams {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	breaker := external.BreakerSettings{
		ConsecutiveFailures: cfg.BreakerFailures,
		OpenTimeout:         cfg.BreakerOpenTimeout,
	}

	return &Upstreams{
		Locator: external.NewIPLocator(httpClient, external.IPLocatorConfig{
			BaseURL:   cfg.IPInfoURL,
			Token:     cfg.IPInfoToken.Unmask(),
			UserAgent: cfg.UserAgent,
			Breaker:   breaker,
		}),
		Geocoder: external.NewNominatimClient(httpClient, external.NominatimConfig{
			BaseURL:           cfg.NominatimURL,
			UserAgent:         cfg.UserAgent,
			RequestsPerSecond: cfg.NominatimRPS,
			Breaker:           breaker,
		}),
		Weather: external.NewOpenMeteoClient(httpClient, external.OpenMeteoConfig{
			BaseURL:   cfg.OpenMeteoURL,
			Timezone:  cfg.Timezone,
			UserAgent: cfg.UserAgent,
			Breaker:   breaker,
		}),
		Irradiance: external.NewNASAPowerClient(httpClient, external.NASAPowerConfig{
			BaseURL:   cfg.NASAPowerURL,
			UserAgent: cfg.UserAgent,
			Breaker:   breaker,
		}),
	}
}

// SetFailureRecorder attaches r to every client.
func (u *Upstreams) SetFailureRecorder(r external.FailureRecorder) {
	u.Locator.SetFailureRecorder(r)
	u.Geocoder.SetFailureRecorder(r)
	u.Weather.SetFailureRecorder(r)
	u.Irradiance.SetFailureRecorder(r)
}

// Probes exposes each client's breaker state to GET /health.
func (u *Upstreams) Probes() []core.HealthProbe {
	return []core.HealthProbe{u.Locator, u.Geocoder, u.Weather, u.Irradiance}
}

// Resolver returns a location resolver over the locator and geocoder.
func (u *Upstreams) Resolver(logger *slog.Logger) *location.Resolver {
	return location.NewResolver(u.Locator, u.Geocoder, logger)
}

// Readings returns the climate service for year.
func (u *Upstreams) Readings(year int, logger *slog.Logger) *climate.Service {
	return climate.NewService(u.Weather, u.Irradiance, year, logger)
}

// Telemetry is what the process reports to: a metrics sink and an event
// publisher. Both fall back to no-ops when disabled.
type Telemetry struct {
	Metrics   Metrics
	Publisher types.EventPublisher
}

// Metrics is the union of the recorders the server wires.
type Metrics interface {
	core.MetricsCollector
	types.EvaluationMetrics
	external.FailureRecorder
}

// NewTelemetry loads AWS configuration only when CloudWatch metrics or the
// event queue are enabled, so local runs need no credentials.
func NewTelemetry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Telemetry, error) {
	t := &Telemetry{Metrics: metrics.Noop{}, Publisher: queue.NoopPublisher{}}
	if !cfg.Observability.MetricsEnabled && !cfg.Events.Enabled() {
		return t, nil
	}

	awsCfg, err := LoadAWS(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}

	if cfg.Observability.MetricsEnabled {
		t.Metrics = metrics.NewCloudWatchMetrics(
			cloudwatch.NewFromConfig(awsCfg),
			cfg.Observability.MetricNamespace,
			logger,
		)
	}
	if cfg.Events.Enabled() {
		t.Publisher = queue.NewEvaluationPublisher(sqs.NewFromConfig(awsCfg), cfg.Events.QueueURL, logger)
	}
	return t, nil
}

// LoadAWS resolves the default credential chain for the configured region.
// A non-empty EndpointURL points every client at it (LocalStack).
func LoadAWS(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	if cfg.EndpointURL != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.EndpointURL)
	}
	return awsCfg, nil
}

// NewLogger creates the process logger: text on a developer machine, JSON
// everywhere else.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.LogLevel)}

	var handler slog.Handler
	if cfg.IsLocal() {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With(
		slog.String("service", cfg.Service),
		slog.String("version", cfg.Build.Version),
	)
}

// ParseLevel maps a LOG_LEVEL value to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
