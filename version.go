package jemput

import (
	"fmt"
	"runtime"
)

// Build metadata. Version follows semver; the rest defaults to "unknown" and
// is overridden with -ldflags "-X github.com/ambiyansyah-risyal/jemput.GitCommit=..."
// by release builds.
var (
	Version   = "v0.3.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = runtime.Version()
)

// GetVersion returns a single-line version string for logs and banners.
func GetVersion() string {
	return fmt.Sprintf("Jemput %s (commit: %s, built: %s, go: %s)",
		Version, GitCommit, BuildDate, GoVersion)
}

// GetVersionInfo returns the build metadata as key/value pairs, suitable for
// structured log fields or an info-style metric.
func GetVersionInfo() map[string]string {
	return map[string]string{
		"version":    Version,
		"commit":     GitCommit,
		"build_date": BuildDate,
		"go_version": GoVersion,
	}
}
