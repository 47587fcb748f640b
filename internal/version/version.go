package version

import (
	"fmt"
	"runtime"
)

// Build information. Populated at build-time via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns version information as build_info metric labels
func Info() map[string]string {
	return map[string]string{
		"version":    Version,
		"git_commit": GitCommit,
		"build_date": BuildDate,
		"go_version": runtime.Version(),
	}
}

// String returns a one-line description for the -version flag
func String() string {
	return fmt.Sprintf("azure-cost-summary %s (commit %s, built %s, %s)",
		Version, GitCommit, BuildDate, runtime.Version())
}
