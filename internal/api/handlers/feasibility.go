// Package handlers contains the HTTP handlers for the SolarCheck API.
//
// Handlers decode and validate requests, delegate to domain services, and
// write responses through the core envelope helpers. Domain collaborators
// are injected as small local interfaces.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"solarcheck/internal/core"
	"solarcheck/internal/feasibility"
	"solarcheck/internal/types"
)

// ReadingRequest carries the four averaged scalars. Pointers distinguish a
// missing field from an explicit zero.
type ReadingRequest struct {
	SolarIrradiance *float64 `json:"avg_solar_irradiance" validate:"required,gte=0"`
	Temperature     *float64 `json:"avg_temperature" validate:"required,gte=-90,lte=70"`
	CloudCover      *float64 `json:"avg_cloud_cover" validate:"required,gte=0,lte=100"`
	WindSpeed       *float64 `json:"avg_wind_speed" validate:"required,gte=0"`
}

// ToReading converts a validated request into a reading.
func (r ReadingRequest) ToReading() types.EnvironmentalReading {
	return types.EnvironmentalReading{
		SolarIrradiance: *r.SolarIrradiance,
		Temperature:     *r.Temperature,
		CloudCover:      *r.CloudCover,
		WindSpeed:       *r.WindSpeed,
	}
}

// FeasibilityRequest is the body of POST /v1/feasibility. PanelCount
// defaults to 5 when omitted; an explicit value, zero included, must be in
// range.
type FeasibilityRequest struct {
	Reading    ReadingRequest `json:"reading"`
	PanelCount *int           `json:"panel_count,omitempty" validate:"omitempty,panel_count"`
}

// Panels returns the requested panel count, or the default when absent.
func (r FeasibilityRequest) Panels() int {
	if r.PanelCount == nil {
		return feasibility.DefaultPanelCount
	}
	return *r.PanelCount
}

// FeasibilityHandler evaluates caller-supplied readings without a session.
type FeasibilityHandler struct {
	validator *core.Validator
	metrics   types.EvaluationMetrics
	publisher types.EventPublisher
	clock     types.Clock
	logger    *slog.Logger
}

// NewFeasibilityHandler creates a FeasibilityHandler. metrics and publisher
// may be nil.
func NewFeasibilityHandler(
	v *core.Validator,
	metrics types.EvaluationMetrics,
	publisher types.EventPublisher,
	l *slog.Logger,
) *FeasibilityHandler {
	if l == nil {
		l = slog.Default()
	}
	return &FeasibilityHandler{
		validator: v,
		metrics:   metrics,
		publisher: publisher,
		clock:     types.RealClock{},
		logger:    l,
	}
}

// RegisterRoutes mounts the stateless evaluation route.
func (h *FeasibilityHandler) RegisterRoutes(r chi.Router) {
	r.Post("/feasibility", h.Assess)
}

// Assess handles POST /v1/feasibility.
func (h *FeasibilityHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var req FeasibilityRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	assessment, err := feasibility.Assess(req.Reading.ToReading(), req.Panels())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordEvaluation(r.Context(), assessment.Verdict, assessment.Estimate)
	}
	if h.publisher != nil {
		evt := types.EvaluationEvent{
			EventID:     "evt_" + uuid.NewString(),
			Reading:     assessment.Reading,
			Verdict:     assessment.Verdict,
			Estimate:    assessment.Estimate,
			EvaluatedAt: h.clock.Now(),
		}
		if err := h.publisher.PublishEvaluation(r.Context(), evt); err != nil {
			types.LoggerFromContext(r.Context(), h.logger).WarnContext(r.Context(),
				"failed to publish evaluation event", "event_id", evt.EventID, "error", err)
		}
	}

	core.Data(w, r, http.StatusOK, assessment)
}
