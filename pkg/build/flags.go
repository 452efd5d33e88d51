// SPDX-License-Identifier: MIT
//
// Package build manages build metadata embedded into the binary at compile
// time via -ldflags: application name, build timestamp, Git commit, and
// semantic version. Used for the CLI version string and startup logging.
package build

import "fmt"

type ldFlags struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// Populated by -ldflags at compile time. Defaults of "unknown" apply
// during development builds.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:    "unknown",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "unknown",
	}
)

// Initialize validates and copies the ldflags variables into the buildFlags
// struct. Call early in program startup. Returns an error if any required
// build flag is missing.
func Initialize() error {
	if buildName == "" {
		return fmt.Errorf("BuildName is required")
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

// GetBuildFlags returns the current build information. Initialize() must be
// called first for the values to be populated.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
