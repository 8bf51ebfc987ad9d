package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"solarcheck/internal/feasibility"
	"solarcheck/internal/types"
)

func newEvaluateCmd(c *cli) *cobra.Command {
	var (
		reading types.EnvironmentalReading
		panels  int
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a reading you already have, without network access",
		Long: `evaluate applies the feasibility thresholds to the four averaged values
given as flags and prints the verdict and, when feasible, an output
estimate.

Example:
  solarcheck evaluate --irradiance 5.5 --temperature 30 --cloud-cover 20 --wind-speed 10 --panels 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := feasibility.ValidatePanelCount(panels); err != nil {
				return err
			}
			assessment, err := feasibility.Assess(reading, panels)
			if err != nil {
				return err
			}
			return c.print(cmd, assessment)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&reading.SolarIrradiance, "irradiance", 0, "average solar irradiance in kWh/m²/day")
	f.Float64Var(&reading.Temperature, "temperature", 0, "average temperature in °C")
	f.Float64Var(&reading.CloudCover, "cloud-cover", 0, "average cloud cover in percent")
	f.Float64Var(&reading.WindSpeed, "wind-speed", 0, "average wind speed in km/h")
	f.IntVar(&panels, "panels", feasibility.DefaultPanelCount,
		fmt.Sprintf("number of panels to estimate for (%d-%d)", feasibility.MinPanelCount, feasibility.MaxPanelCount))

	for _, name := range []string{"irradiance", "temperature", "cloud-cover", "wind-speed"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
