// Package version provides version information for the prepline library.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const unknownValue = "unknown"

// Build-time variables set by ldflags.
var (
	Version   = "dev"
	BuildDate = unknownValue
	GitCommit = unknownValue
	GoVersion = runtime.Version()
)

// BuildInfo contains build information.
type BuildInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	Module    string `json:"module"`
}

// Info returns build information, enriched from the runtime when
// available.
func Info() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: GoVersion,
		Module:    unknownValue,
	}
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		info.Module = buildInfo.Main.Path
		if Version == "dev" && buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
			info.Version = buildInfo.Main.Version
		}
	}
	return info
}

// String renders the build information for the CLI version flag.
func (b BuildInfo) String() string {
	return fmt.Sprintf("prepline %s (commit %s, built %s, %s)\n",
		b.Version, b.GitCommit, b.BuildDate, b.GoVersion)
}
