// Package feasibility decides whether a location suits a solar installation
// and projects the daily output of a panel array.
//
// The evaluator applies four fixed threshold checks to an averaged
// environmental reading. Every check always runs. Only insufficient
// irradiance is fatal; the other three are warnings that add a reason but
// leave the verdict feasible.
package feasibility

import "solarcheck/internal/types"

// Threshold constants. Comparisons are strict, so a value sitting exactly on
// a threshold passes.
const (
	MinSolarIrradiance = 4.0  // kWh/m²/day; below is fatal
	MaxTemperature     = 45.0 // °C
	MaxCloudCover      = 50.0 // percent
	MaxWindSpeed       = 20.0 // km/h
)

// rule is one row of the check table.
type rule struct {
	check     types.CheckName
	operator  types.ConditionOperator
	threshold float64
	value     func(types.EnvironmentalReading) float64
	reason    types.Reason
}

// rules is evaluated in order; reason order in a verdict follows it.
var rules = []rule{
	{
		check:     types.CheckSolarIrradiance,
		operator:  types.OpLessThan,
		threshold: MinSolarIrradiance,
		value:     func(r types.EnvironmentalReading) float64 { return r.SolarIrradiance },
		reason: types.Reason{
			Code:     types.ReasonInsufficientSunlight,
			Severity: types.SeverityFatal,
			Message:  "insufficient sunlight",
		},
	},
	{
		check:     types.CheckTemperature,
		operator:  types.OpGreaterThan,
		threshold: MaxTemperature,
		value:     func(r types.EnvironmentalReading) float64 { return r.Temperature },
		reason: types.Reason{
			Code:     types.ReasonHighTemperature,
			Severity: types.SeverityWarning,
			Message:  "high temperature risk",
		},
	},
	{
		check:     types.CheckCloudCover,
		operator:  types.OpGreaterThan,
		threshold: MaxCloudCover,
		value:     func(r types.EnvironmentalReading) float64 { return r.CloudCover },
		reason: types.Reason{
			Code:     types.ReasonHighCloudCover,
			Severity: types.SeverityWarning,
			Message:  "high cloud cover",
		},
	},
	{
		check:     types.CheckWindSpeed,
		operator:  types.OpGreaterThan,
		threshold: MaxWindSpeed,
		value:     func(r types.EnvironmentalReading) float64 { return r.WindSpeed },
		reason: types.Reason{
			Code:     types.ReasonHighWindSpeed,
			Severity: types.SeverityWarning,
			Message:  "high wind speed",
		},
	},
}

// Compile-time assertion that Evaluator implements types.Evaluator.
var _ types.Evaluator = Evaluator{}

// Evaluator applies the feasibility checks. The zero value is ready to use.
type Evaluator struct{}

// NewEvaluator returns an Evaluator.
func NewEvaluator() Evaluator {
	return Evaluator{}
}

// Evaluate runs all four checks against the reading. It never short-circuits:
// a fatal irradiance result still lets the warnings accumulate behind it.
func (Evaluator) Evaluate(reading types.EnvironmentalReading) types.FeasibilityVerdict {
	verdict := types.FeasibilityVerdict{
		Feasible: true,
		Reasons:  []types.Reason{},
		Checks:   make([]types.CheckResult, 0, len(rules)),
	}

	for _, rl := range rules {
		v := rl.value(reading)
		triggered := compare(rl.operator, v, rl.threshold)

		verdict.Checks = append(verdict.Checks, types.CheckResult{
			Check:     rl.check,
			Value:     v,
			Operator:  rl.operator,
			Threshold: rl.threshold,
			Triggered: triggered,
		})

		if !triggered {
			continue
		}
		verdict.Reasons = append(verdict.Reasons, rl.reason)
		if rl.reason.Severity == types.SeverityFatal {
			verdict.Feasible = false
		}
	}

	return verdict
}

// Evaluate is a convenience wrapper around the zero-value Evaluator.
func Evaluate(reading types.EnvironmentalReading) types.FeasibilityVerdict {
	return Evaluator{}.Evaluate(reading)
}

func compare(op types.ConditionOperator, v, threshold float64) bool {
	switch op {
	case types.OpLessThan:
		return v < threshold
	case types.OpGreaterThan:
		return v > threshold
	default:
		return false
	}
}
