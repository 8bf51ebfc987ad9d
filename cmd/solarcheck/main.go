// Command solarcheck runs the solar feasibility check from a terminal.
//
//	solarcheck check [--ip 8.8.8.8] [--panels 5] [--json]
//	solarcheck evaluate --irradiance 5.5 --temperature 30 --cloud-cover 20 --wind-speed 10
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
