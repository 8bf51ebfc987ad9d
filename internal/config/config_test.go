package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable the loader reads so host settings cannot
// leak into a test. t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "SERVICE_NAME", "LOG_LEVEL",
		"PORT", "REQUEST_TIMEOUT", "SHUTDOWN_TIMEOUT",
		"IPINFO_URL", "IPINFO_TOKEN", "NOMINATIM_URL", "NOMINATIM_RPS",
		"OPEN_METEO_URL", "OPEN_METEO_TIMEZONE", "NASA_POWER_URL", "NASA_POWER_YEAR",
		"UPSTREAM_USER_AGENT", "UPSTREAM_TIMEOUT", "BREAKER_FAILURES", "BREAKER_OPEN_TIMEOUT",
		"SESSION_TTL", "DEFAULT_PANEL_COUNT", "EVENTS_QUEUE_URL",
		"AWS_REGION", "AWS_ENDPOINT_URL", "CORS_ALLOWED_ORIGINS",
		"METRICS_ENABLED", "METRIC_NAMESPACE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"Environment", cfg.Environment, "local"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"Server.Port", cfg.Server.Port, "8080"},
		{"Server.RequestTimeout", cfg.Server.RequestTimeout, 29 * time.Second},
		{"Upstream.NominatimRPS", cfg.Upstream.NominatimRPS, 1.0},
		{"Upstream.Timezone", cfg.Upstream.Timezone, "auto"},
		{"Upstream.ReferenceYear", cfg.Upstream.ReferenceYear, 2023},
		{"Upstream.BreakerFailures", cfg.Upstream.BreakerFailures, uint32(5)},
		{"Session.TTL", cfg.Session.TTL, 30 * time.Minute},
		{"Session.DefaultPanels", cfg.Session.DefaultPanels, 5},
		{"Observability.MetricsEnabled", cfg.Observability.MetricsEnabled, false},
		{"Observability.MetricNamespace", cfg.Observability.MetricNamespace, "SolarCheck"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	if !cfg.IsLocal() {
		t.Error("IsLocal() = false for default environment")
	}
	if cfg.Events.Enabled() {
		t.Error("Events.Enabled() = true without a queue URL")
	}
	if len(cfg.Security.CorsAllowedOrigins) != 1 || cfg.Security.CorsAllowedOrigins[0] != "*" {
		t.Errorf("CorsAllowedOrigins = %v, want [*]", cfg.Security.CorsAllowedOrigins)
	}
	if cfg.Build.Version != "dev" {
		t.Errorf("Build.Version = %q, want %q", cfg.Build.Version, "dev")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("NASA_POWER_YEAR", "2020")
	t.Setenv("DEFAULT_PANEL_COUNT", "12")
	t.Setenv("EVENTS_QUEUE_URL", "https://sqs.us-east-1.amazonaws.com/123/solarcheck-events")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("SESSION_TTL", "5m")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	if cfg.IsLocal() {
		t.Error("IsLocal() = true for prod")
	}
	if cfg.Upstream.ReferenceYear != 2020 {
		t.Errorf("ReferenceYear = %d, want 2020", cfg.Upstream.ReferenceYear)
	}
	if cfg.Session.DefaultPanels != 12 {
		t.Errorf("DefaultPanels = %d, want 12", cfg.Session.DefaultPanels)
	}
	if !cfg.Events.Enabled() {
		t.Error("Events.Enabled() = false with a queue URL")
	}
	if len(cfg.Security.CorsAllowedOrigins) != 2 {
		t.Errorf("CorsAllowedOrigins = %v, want 2 entries", cfg.Security.CorsAllowedOrigins)
	}
	if !cfg.Observability.MetricsEnabled {
		t.Error("MetricsEnabled = false")
	}
	if cfg.Session.TTL != 5*time.Minute {
		t.Errorf("Session.TTL = %v, want 5m", cfg.Session.TTL)
	}
}

func TestLoadConfigValidationFailures(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"APP_ENV", "qa"},
		{"LOG_LEVEL", "verbose"},
		{"DEFAULT_PANEL_COUNT", "0"},
		{"DEFAULT_PANEL_COUNT", "21"},
		{"NASA_POWER_YEAR", "1970"},
		{"NOMINATIM_RPS", "2"},
		{"EVENTS_QUEUE_URL", "not a url"},
		{"OPEN_METEO_URL", "::nope"},
		{"PORT", "http"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s=%s", tt.key, tt.value), func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if cfgErr.Type != ErrValidation {
				t.Errorf("Type = %s, want %s", cfgErr.Type, ErrValidation)
			}
		})
	}
}

func TestLoadConfigParsingFailure(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_TTL", "forever")

	_, err := LoadConfig()

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T (%v)", err, err)
	}
	if cfgErr.Type != ErrParsing {
		t.Errorf("Type = %s, want %s", cfgErr.Type, ErrParsing)
	}
	if cfgErr.Unwrap() == nil {
		t.Error("parsing error should wrap the envconfig error")
	}
}

func TestLoadConfigDotenvDoesNotOverride(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("NASA_POWER_YEAR=2019\nDEFAULT_PANEL_COUNT=8\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DEFAULT_PANEL_COUNT", "3")
	t.Cleanup(func() { os.Unsetenv("NASA_POWER_YEAR") })

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg.Upstream.ReferenceYear != 2019 {
		t.Errorf("ReferenceYear = %d, want 2019 from .env", cfg.Upstream.ReferenceYear)
	}
	if cfg.Session.DefaultPanels != 3 {
		t.Errorf("DefaultPanels = %d, want 3 from environment", cfg.Session.DefaultPanels)
	}
}

func TestLoadConfigMissingDotenvIsIgnored(t *testing.T) {
	clearEnv(t)
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("LoadConfig() with missing file returned error: %v", err)
	}
}

func TestSecretStringRedaction(t *testing.T) {
	s := SecretString("tok_abc123")

	if got := fmt.Sprintf("%v", s); got != redactedPlaceholder {
		t.Errorf("fmt %%v = %q, want placeholder", got)
	}
	if s.Unmask() != "tok_abc123" {
		t.Errorf("Unmask() = %q", s.Unmask())
	}

	b, err := json.Marshal(UpstreamConfig{IPInfoToken: s})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "tok_abc123") {
		t.Errorf("secret leaked into JSON: %s", b)
	}
}

func TestBuildInfoString(t *testing.T) {
	info := NewBuildInfo()
	if got, want := info.String(), "dev (none, built unknown)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestConfigErrorFormatting(t *testing.T) {
	wrapped := &ConfigError{Type: ErrParsing, Message: "bad", Err: errors.New("boom")}
	if wrapped.Error() != "[PARSING_FAILED] bad: boom" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
	bare := &ConfigError{Type: ErrValidation, Message: "bad"}
	if bare.Error() != "[VALIDATION_FAILED] bad" {
		t.Errorf("Error() = %q", bare.Error())
	}
}
