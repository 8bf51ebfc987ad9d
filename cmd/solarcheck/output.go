package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"solarcheck/internal/types"
)

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// print writes v as indented JSON with --json, or as a text report.
func (c *cli) print(cmd *cobra.Command, v any) error {
	out := cmd.OutOrStdout()
	if c.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	switch r := v.(type) {
	case checkResult:
		fmt.Fprintf(out, "Location:          %s, %s (%.4f, %.4f)\n", r.Location.City, r.Location.State, r.Location.Lat, r.Location.Lon)
		writeAssessment(out, r.Assessment)
	case types.Assessment:
		writeAssessment(out, r)
	default:
		return fmt.Errorf("unsupported output %T", v)
	}
	return nil
}

// passMessages is shown for each check the reading passed.
var passMessages = map[types.CheckName]string{
	types.CheckSolarIrradiance: "solar irradiance is good for solar panels",
	types.CheckTemperature:     "temperature is suitable for solar panels",
	types.CheckCloudCover:      "cloud cover is within acceptable limits",
	types.CheckWindSpeed:       "wind speed is safe for installation",
}

func writeAssessment(w io.Writer, a types.Assessment) {
	fmt.Fprintf(w, "Solar irradiance:  %.2f kWh/m²/day\n", a.Reading.SolarIrradiance)
	fmt.Fprintf(w, "Temperature:       %.1f °C\n", a.Reading.Temperature)
	fmt.Fprintf(w, "Cloud cover:       %.1f %%\n", a.Reading.CloudCover)
	fmt.Fprintf(w, "Wind speed:        %.1f km/h\n", a.Reading.WindSpeed)
	fmt.Fprintln(w)

	if a.Verdict.Feasible {
		fmt.Fprintln(w, "Verdict:           feasible")
	} else {
		fmt.Fprintln(w, "Verdict:           not feasible")
	}
	for _, c := range a.Verdict.Checks {
		if !c.Triggered {
			fmt.Fprintf(w, "  ✓ %s\n", passMessages[c.Check])
		}
	}
	for _, r := range a.Verdict.Reasons {
		fmt.Fprintf(w, "  - %s (%s)\n", r.Message, r.Severity)
	}

	if a.Estimate != nil {
		fmt.Fprintf(w, "Estimated output:  %.2f kWh/day per panel x %d panels = %.2f kWh/day\n",
			a.Estimate.PerPanelOutputKWhPerDay, a.Estimate.PanelCount, a.Estimate.TotalOutputKWhPerDay)
	}
}
