// Package version provides build and version information for indexbench.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Version is the current version of indexbench.
// Set via ldflags at build time, or defaults to dev.
// Makefile sets: -X github.com/Aman-CERP/indexbench/pkg/version.Version=$(VERSION)
var Version = "dev"

// Build information set via ldflags at build time.
var (
	// Commit is the git commit hash.
	Commit = "unknown"

	// Date is the build date in RFC3339 format.
	Date = "unknown"

	// GoVersion is the Go version used to build the binary (set at runtime).
	GoVersion = runtime.Version()
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// BuildInfo is structured version information for JSON output.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// String returns a formatted version string with all build info.
func String() string {
	return fmt.Sprintf("indexbench %s (commit: %s, built: %s, go: %s)",
		Version, Commit, Date, GoVersion)
}

// Short returns just the version string.
func Short() string {
	return Version
}

// GetInfo returns structured version information.
func GetInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Runtime describes the Go runtime that executes the benchmark.
func Runtime() string {
	return fmt.Sprintf("Go %s (%s compiler)", strings.TrimPrefix(GoVersion, "go"), runtime.Compiler)
}

// osRelease is swapped in tests.
var osRelease = kernelRelease

// Platform describes the operating system, its release when known, and the
// architecture, e.g. "linux 6.8.0-45-generic amd64".
func Platform() string {
	if rel := osRelease(); rel != "" {
		return fmt.Sprintf("%s %s %s", runtime.GOOS, rel, runtime.GOARCH)
	}
	return fmt.Sprintf("%s %s", runtime.GOOS, runtime.GOARCH)
}

// ModuleVersion returns the version of a dependency module linked into the
// binary, or "unknown" when build information is unavailable.
func ModuleVersion(path string) string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return "unknown"
	}
	if info.Main.Path == path && info.Main.Version != "" {
		return info.Main.Version
	}
	for _, dep := range info.Deps {
		if dep.Path != path {
			continue
		}
		if dep.Replace != nil && dep.Replace.Version != "" {
			return dep.Replace.Version
		}
		if dep.Version != "" {
			return dep.Version
		}
	}
	return "unknown"
}
