package core

import (
	"errors"
	"io"
	"log/slog"
	"net/netip"
	"testing"

	"solarcheck/internal/types"
)

type sampleReading struct {
	Irradiance *float64 `json:"avg_solar_irradiance" validate:"required,gte=0"`
	CloudCover *float64 `json:"avg_cloud_cover" validate:"required,gte=0,lte=100"`
}

type samplePayload struct {
	Reading    sampleReading `json:"reading"`
	PanelCount int           `json:"panel_count" validate:"omitempty,panel_count"`
	IP         string        `json:"ip" validate:"omitempty,public_ip"`
	Requested  *int          `json:"requested_panels" validate:"omitempty,panel_count"`
}

func intPtr(n int) *int { return &n }

func ptr(f float64) *float64 { return &f }

func newTestValidator() *Validator {
	return NewValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestValidator_ValidPayload(t *testing.T) {
	v := newTestValidator()
	p := samplePayload{
		Reading:    sampleReading{Irradiance: ptr(0), CloudCover: ptr(100)},
		PanelCount: 20,
		IP:         "8.8.8.8",
		Requested:  intPtr(1),
	}
	if err := v.ValidateStruct(p); err != nil {
		t.Fatalf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidator_ErrorCodes(t *testing.T) {
	valid := func() samplePayload {
		return samplePayload{Reading: sampleReading{Irradiance: ptr(5), CloudCover: ptr(10)}}
	}

	tests := []struct {
		name      string
		mutate    func(*samplePayload)
		wantCode  types.ErrorCode
		wantField string
	}{
		{"missing reading field", func(p *samplePayload) { p.Reading.Irradiance = nil },
			types.ErrCodeValidationMissingField, "reading.avg_solar_irradiance"},
		{"negative irradiance", func(p *samplePayload) { p.Reading.Irradiance = ptr(-1) },
			types.ErrCodeValidationInvalidReading, "reading.avg_solar_irradiance"},
		{"cloud cover over 100", func(p *samplePayload) { p.Reading.CloudCover = ptr(100.5) },
			types.ErrCodeValidationInvalidReading, "reading.avg_cloud_cover"},
		{"too many panels", func(p *samplePayload) { p.PanelCount = 21 },
			types.ErrCodeValidationPanelCountRange, "panel_count"},
		{"negative panels", func(p *samplePayload) { p.PanelCount = -3 },
			types.ErrCodeValidationPanelCountRange, "panel_count"},
		{"private ip", func(p *samplePayload) { p.IP = "192.168.1.10" },
			types.ErrCodeValidationInvalidIP, "ip"},
		{"garbage ip", func(p *samplePayload) { p.IP = "not-an-ip" },
			types.ErrCodeValidationInvalidIP, "ip"},
		{"explicit zero panels", func(p *samplePayload) { p.Requested = intPtr(0) },
			types.ErrCodeValidationPanelCountRange, "requested_panels"},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)

			err := v.ValidateStruct(p)
			var appErr *types.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected *AppError, got %T (%v)", err, err)
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", appErr.Code, tt.wantCode)
			}
			fields, ok := appErr.Details["validation_errors"].([]ValidationError)
			if !ok || len(fields) == 0 {
				t.Fatalf("details missing validation_errors: %v", appErr.Details)
			}
			if fields[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", fields[0].Field, tt.wantField)
			}
		})
	}
}

func TestValidator_CollectsEveryFailure(t *testing.T) {
	result := newTestValidator().Check(samplePayload{PanelCount: 50})

	if result.IsValid() {
		t.Fatal("expected failures")
	}
	if len(result.Errors) != 3 {
		t.Errorf("got %d errors, want 3: %+v", len(result.Errors), result.Errors)
	}
}

func TestIsPublicIP(t *testing.T) {
	tests := map[string]bool{
		"8.8.8.8":              true,
		"2001:4860:4860::8888": true,
		"10.0.0.1":             false,
		"127.0.0.1":            false,
		"169.254.1.1":          false,
		"::1":                  false,
		"0.0.0.0":              false,
		"::ffff:192.168.0.1":   false,
	}
	for raw, want := range tests {
		if got := IsPublicIP(netip.MustParseAddr(raw)); got != want {
			t.Errorf("IsPublicIP(%s) = %v, want %v", raw, got, want)
		}
	}
}
