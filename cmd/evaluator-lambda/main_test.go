package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"solarcheck/internal/core"
	"solarcheck/internal/types"
)

// --- Mock Types ---

type mockMetrics struct {
	calls    int
	feasible bool
}

func (m *mockMetrics) RecordEvaluation(_ context.Context, v types.FeasibilityVerdict, _ *types.PowerEstimate) {
	m.calls++
	m.feasible = v.Feasible
}

type mockPublisher struct {
	events []types.EvaluationEvent
	err    error
}

func (m *mockPublisher) PublishEvaluation(_ context.Context, evt types.EvaluationEvent) error {
	m.events = append(m.events, evt)
	return m.err
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestHandler() (*Handler, *mockMetrics, *mockPublisher) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := &mockMetrics{}
	p := &mockPublisher{}
	return &Handler{
		validator: core.NewValidator(logger),
		metrics:   m,
		publisher: p,
		clock:     fixedClock{t: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)},
		logger:    logger,
	}, m, p
}

// decodeRequest mirrors how the Lambda runtime builds the payload.
func decodeRequest(t *testing.T, payload string) Request {
	t.Helper()
	var req Request
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	return req
}

// --- Tests ---

func TestHandle_Feasible(t *testing.T) {
	h, m, p := newTestHandler()

	a, err := h.Handle(context.Background(), decodeRequest(t,
		`{"reading":{"avg_solar_irradiance":5.5,"avg_temperature":30,"avg_cloud_cover":20,"avg_wind_speed":10},"panel_count":5}`))
	if err != nil {
		t.Fatalf("Handle() = %v", err)
	}

	if !a.Verdict.Feasible || len(a.Verdict.Reasons) != 0 {
		t.Errorf("verdict = %+v, want feasible with no reasons", a.Verdict)
	}
	if a.Estimate == nil || a.Estimate.TotalOutputKWhPerDay < 7.919 || a.Estimate.TotalOutputKWhPerDay > 7.921 {
		t.Errorf("estimate = %+v, want 7.92 total", a.Estimate)
	}
	if m.calls != 1 || !m.feasible {
		t.Errorf("metrics calls = %d feasible = %v", m.calls, m.feasible)
	}
	if len(p.events) != 1 || !p.events[0].EvaluatedAt.Equal(h.clock.Now()) {
		t.Errorf("events = %+v", p.events)
	}
}

func TestHandle_DefaultPanelCount(t *testing.T) {
	h, _, _ := newTestHandler()

	a, err := h.Handle(context.Background(), decodeRequest(t,
		`{"reading":{"avg_solar_irradiance":4,"avg_temperature":45,"avg_cloud_cover":50,"avg_wind_speed":20}}`))
	if err != nil {
		t.Fatalf("Handle() = %v", err)
	}
	if !a.Verdict.Feasible {
		t.Error("values exactly on every threshold should pass")
	}
	if a.Estimate == nil || a.Estimate.PanelCount != 5 {
		t.Errorf("estimate = %+v, want default 5 panels", a.Estimate)
	}
}

func TestHandle_ExplicitZeroPanelsRejected(t *testing.T) {
	h, m, _ := newTestHandler()

	_, err := h.Handle(context.Background(), decodeRequest(t,
		`{"reading":{"avg_solar_irradiance":5.5,"avg_temperature":30,"avg_cloud_cover":20,"avg_wind_speed":10},"panel_count":0}`))

	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeValidationPanelCountRange {
		t.Fatalf("Handle() = %v, want %s", err, types.ErrCodeValidationPanelCountRange)
	}
	if m.calls != 0 {
		t.Error("rejected requests must not be recorded")
	}
}

func TestHandle_Infeasible(t *testing.T) {
	h, _, p := newTestHandler()

	a, err := h.Handle(context.Background(), decodeRequest(t,
		`{"reading":{"avg_solar_irradiance":3,"avg_temperature":50,"avg_cloud_cover":60,"avg_wind_speed":25}}`))
	if err != nil {
		t.Fatalf("Handle() = %v", err)
	}
	if a.Verdict.Feasible || len(a.Verdict.Reasons) != 4 || a.Estimate != nil {
		t.Errorf("assessment = %+v", a)
	}
	if len(p.events) != 1 || p.events[0].Estimate != nil {
		t.Errorf("expected one event without estimate, got %+v", p.events)
	}
}

func TestHandle_ValidationError(t *testing.T) {
	h, m, p := newTestHandler()

	_, err := h.Handle(context.Background(), decodeRequest(t,
		`{"reading":{"avg_solar_irradiance":5,"avg_temperature":20,"avg_cloud_cover":10}}`))

	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeValidationMissingField {
		t.Fatalf("Handle() = %v, want %s", err, types.ErrCodeValidationMissingField)
	}
	if m.calls != 0 || len(p.events) != 0 {
		t.Error("invalid requests must not be recorded or published")
	}
}

func TestHandle_PublishFailureIsNotFatal(t *testing.T) {
	h, _, p := newTestHandler()
	p.err = errors.New("sqs unavailable")

	if _, err := h.Handle(context.Background(), decodeRequest(t,
		`{"reading":{"avg_solar_irradiance":5,"avg_temperature":20,"avg_cloud_cover":10,"avg_wind_speed":5}}`)); err != nil {
		t.Fatalf("Handle() = %v, want nil", err)
	}
}
