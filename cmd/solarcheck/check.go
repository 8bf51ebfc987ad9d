package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"solarcheck/internal/app"
	"solarcheck/internal/feasibility"
	"solarcheck/internal/types"
)

func newCheckCmd(c *cli) *cobra.Command {
	var (
		ip     string
		panels int
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Locate, fetch climate data, and evaluate in one pass",
		Long: `check resolves a location from an IP address (your own public address
when --ip is omitted), fetches climate data for it, and prints the
feasibility verdict. Feasible locations get an output estimate for
--panels panels.

Examples:
  solarcheck check
  solarcheck check --ip 8.8.8.8 --panels 12
  solarcheck check --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := feasibility.ValidatePanelCount(panels); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := withTimeout(ctx, c.cfg.Server.RequestTimeout)
			defer cancel()

			upstreams := app.NewUpstreams(c.cfg.Upstream)
			log := c.logger.With("command", "check")

			loc, err := upstreams.Resolver(log).Resolve(ctx, ip)
			if err != nil {
				return fmt.Errorf("resolve location: %w", err)
			}
			reading, err := upstreams.Readings(c.cfg.Upstream.ReferenceYear, log).Reading(ctx, loc)
			if err != nil {
				return fmt.Errorf("fetch climate data: %w", err)
			}
			assessment, err := feasibility.Assess(reading, panels)
			if err != nil {
				return err
			}

			return c.print(cmd, checkResult{Location: loc, Assessment: assessment})
		},
	}

	f := cmd.Flags()
	f.StringVar(&ip, "ip", "", "public IP address to locate (default: your own)")
	f.IntVar(&panels, "panels", feasibility.DefaultPanelCount,
		fmt.Sprintf("number of panels to estimate for (%d-%d)", feasibility.MinPanelCount, feasibility.MaxPanelCount))
	return cmd
}

// checkResult is the check command's output: the resolved place plus the
// assessment.
type checkResult struct {
	Location types.Location `json:"location"`
	types.Assessment
}
