package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"solarcheck/internal/app"
	"solarcheck/internal/config"
)

// cli carries state shared by subcommands once the root pre-run has loaded
// configuration.
type cli struct {
	cfg    *config.Config
	logger *slog.Logger
	json   bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	info := config.NewBuildInfo()

	root := &cobra.Command{
		Use:   "solarcheck",
		Short: "Check whether a location suits solar panels",
		Long: `solarcheck estimates whether a location is suitable for a solar
installation. It averages a year of NASA POWER irradiance and temperature
with the Open-Meteo forecast, applies fixed thresholds, and projects the
daily output of a panel array.`,
		Version:       info.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			c.cfg = cfg
			// Logs go to stderr so stdout stays clean for --json.
			c.logger = app.NewLogger(cfg, cmd.ErrOrStderr())
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&c.json, "json", false, "print the result as JSON")
	root.AddCommand(newCheckCmd(c), newEvaluateCmd(c))
	return root
}
