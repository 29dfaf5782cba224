// SPDX-License-Identifier: MIT
//
// Package build carries metadata injected at compile time via -ldflags:
// application name, build timestamp, Git commit hash, and semantic version.
// The values surface in the CLI version output and in startup logging.
package build

type ldFlags struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// Package-level variables for build information. These are populated by
// -ldflags during compilation; development builds fall back to defaults.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:    "voiceinput",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "dev",
	}
)

// Initialize copies build information from the ldflags variables into the
// buildFlags struct. Missing flags keep their development defaults, so a
// plain `go build` still produces a runnable binary. Call this early in
// program startup.
func Initialize() {
	if buildName != "" {
		buildFlags.Name = buildName
	}
	if buildTime != "" {
		buildFlags.Time = buildTime
	}
	if buildCommit != "" {
		buildFlags.Commit = buildCommit
	}
	if buildVersion != "" {
		buildFlags.Version = buildVersion
	}
}

// GetBuildFlags returns the current build information. Initialize() should
// be called before this function so the ldflags values are applied.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
