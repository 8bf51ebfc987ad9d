package feasibility

import (
	"fmt"

	"solarcheck/internal/types"
)

// Panel constants for the linear output model.
const (
	PanelEfficiency = 0.18 // 18%, typical crystalline silicon module
	PanelArea       = 1.6  // m² per panel
)

// Panel count bounds accepted by Estimate.
const (
	MinPanelCount     = 1
	MaxPanelCount     = 20
	DefaultPanelCount = 5
)

// PerPanelOutput returns the estimated daily yield of one panel in kWh/day.
func PerPanelOutput(irradiance float64) float64 {
	return irradiance * PanelArea * PanelEfficiency
}

// Estimate projects daily output for panelCount panels under the given
// average irradiance. The total is a single multiplication of the per-panel
// figure, so Total == PerPanel * PanelCount holds exactly.
//
// Callers must only estimate for feasible verdicts; Estimate itself does not
// inspect the verdict.
func Estimate(irradiance float64, panelCount int) (types.PowerEstimate, error) {
	if err := ValidatePanelCount(panelCount); err != nil {
		return types.PowerEstimate{}, err
	}

	perPanel := PerPanelOutput(irradiance)
	return types.PowerEstimate{
		PerPanelOutputKWhPerDay: perPanel,
		PanelCount:              panelCount,
		TotalOutputKWhPerDay:    perPanel * float64(panelCount),
	}, nil
}

// ValidatePanelCount checks that n is within [MinPanelCount, MaxPanelCount].
func ValidatePanelCount(n int) error {
	if n < MinPanelCount || n > MaxPanelCount {
		return types.NewAppErrorWithDetails(
			types.ErrCodeValidationPanelCountRange,
			fmt.Sprintf("panel_count must be between %d and %d", MinPanelCount, MaxPanelCount),
			nil,
			map[string]any{"panel_count": n, "min": MinPanelCount, "max": MaxPanelCount},
		)
	}
	return nil
}

// Assess evaluates the reading and, when feasible, estimates output for
// panelCount panels. Callers apply DefaultPanelCount themselves; zero is out
// of range like any other bad count. The panel count is validated even for
// infeasible readings so that bad input is reported consistently.
func Assess(reading types.EnvironmentalReading, panelCount int) (types.Assessment, error) {
	if err := ValidatePanelCount(panelCount); err != nil {
		return types.Assessment{}, err
	}

	a := types.Assessment{
		Reading: reading,
		Verdict: Evaluate(reading),
	}
	if !a.Verdict.Feasible {
		return a, nil
	}

	est, err := Estimate(reading.SolarIrradiance, panelCount)
	if err != nil {
		return types.Assessment{}, err
	}
	a.Estimate = &est
	return a, nil
}
