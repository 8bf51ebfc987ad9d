package config

import "fmt"

// Set at link time, for example:
//
//	go build -ldflags "-X solarcheck/internal/config.version=1.2.3 \
//	    -X solarcheck/internal/config.commit=$(git rev-parse --short HEAD) \
//	    -X solarcheck/internal/config.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// NewBuildInfo returns the linker-injected build metadata.
func NewBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	}
}

// String renders the build as "version (commit, built time)", the form the
// CLI prints for --version.
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (%s, built %s)", b.Version, b.Commit, b.BuildTime)
}
