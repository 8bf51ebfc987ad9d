package types

import "time"

// Location is a resolved geographic position with its reverse-geocoded
// place names.
type Location struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	City  string  `json:"city"`
	State string  `json:"state"`
}

// Place name fallbacks used when reverse geocoding yields no address.
const (
	UnknownCity  = "Unknown City"
	UnknownState = "Unknown State"
)

// EnvironmentalReading holds the four averaged scalars the feasibility
// evaluator consumes. Values are treated as immutable once built.
type EnvironmentalReading struct {
	SolarIrradiance float64 `json:"avg_solar_irradiance"` // kWh/m²/day
	Temperature     float64 `json:"avg_temperature"`      // °C
	CloudCover      float64 `json:"avg_cloud_cover"`      // percent, 0-100
	WindSpeed       float64 `json:"avg_wind_speed"`       // km/h
}

// Reason is a single triggered feasibility condition.
type Reason struct {
	Code     ReasonCode `json:"code"`
	Severity Severity   `json:"severity"`
	Message  string     `json:"message"`
}

// CheckResult records the outcome of one feasibility check, triggered or not.
type CheckResult struct {
	Check     CheckName         `json:"check"`
	Value     float64           `json:"value"`
	Operator  ConditionOperator `json:"operator"`
	Threshold float64           `json:"threshold"`
	Triggered bool              `json:"triggered"`
}

// FeasibilityVerdict is the evaluator's output. Reasons only holds triggered
// conditions, ordered irradiance, temperature, cloud cover, wind.
type FeasibilityVerdict struct {
	Feasible bool          `json:"feasible"`
	Reasons  []Reason      `json:"reasons"`
	Checks   []CheckResult `json:"checks"`
}

// Fatal reports whether any reason carries fatal severity.
func (v FeasibilityVerdict) Fatal() bool {
	for _, r := range v.Reasons {
		if r.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

// PowerEstimate is the linear daily output projection for a panel array.
// TotalOutputKWhPerDay is always PerPanelOutputKWhPerDay * PanelCount.
type PowerEstimate struct {
	PerPanelOutputKWhPerDay float64 `json:"per_panel_output_kwh_per_day"`
	PanelCount              int     `json:"panel_count"`
	TotalOutputKWhPerDay    float64 `json:"total_output_kwh_per_day"`
}

// Assessment bundles a verdict with its estimate. Estimate is nil when the
// verdict is not feasible.
type Assessment struct {
	Reading  EnvironmentalReading `json:"reading"`
	Verdict  FeasibilityVerdict   `json:"verdict"`
	Estimate *PowerEstimate       `json:"estimate,omitempty"`
}

// DailySeries is an ordered daily series of a single variable. Missing
// upstream values are dropped before they reach this type.
type DailySeries []float64

// Mean returns the arithmetic mean and false when the series is empty.
func (s DailySeries) Mean() (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range s {
		sum += v
	}
	return sum / float64(len(s)), true
}

// WeatherSeries is the short-range daily data pulled from the forecast API.
type WeatherSeries struct {
	CloudCover DailySeries // percent
	WindSpeed  DailySeries // km/h, daily max at 10 m
}

// IrradianceSeries is the reference-year daily data pulled from the
// climatology API.
type IrradianceSeries struct {
	Year            int
	SolarIrradiance DailySeries // kWh/m²/day, all-sky surface shortwave
	Temperature     DailySeries // °C at 2 m
}

// EvaluationEvent is published once per completed evaluation.
type EvaluationEvent struct {
	EventID     string               `json:"event_id"`
	SessionID   string               `json:"session_id,omitempty"`
	Location    *Location            `json:"location,omitempty"`
	Reading     EnvironmentalReading `json:"reading"`
	Verdict     FeasibilityVerdict   `json:"verdict"`
	Estimate    *PowerEstimate       `json:"estimate,omitempty"`
	EvaluatedAt time.Time            `json:"evaluated_at"`
}
