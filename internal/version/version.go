// Package version resolves the build metadata stamped into the displayd
// binary. Release builds set the package variables through ldflags;
// development builds fall back to the VCS details the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Stamped at build time:
//
//	go build -ldflags "-X github.com/magne4000/displayd/internal/version.Version=v0.3.0 ..."
var (
	Version   = "dev"
	GitCommit = ""
	BuildDate = ""
	BuildID   = ""
)

// Info is the resolved build metadata served on /api/version.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	BuildID   string `json:"build_id"`
	GoVersion string `json:"go_version"`
	Compiler  string `json:"compiler"`
	Platform  string `json:"platform"`
}

// Get resolves the build metadata. Fields not stamped via ldflags are taken
// from the embedded VCS info when present, and report "unknown" otherwise.
func Get() Info {
	commit := GitCommit
	date := BuildDate

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if commit == "" {
					commit = setting.Value
				}
			case "vcs.time":
				if date == "" {
					date = setting.Value
				}
			}
		}
	}

	return Info{
		Version:   Version,
		GitCommit: orUnknown(commit),
		BuildDate: orUnknown(date),
		BuildID:   orUnknown(BuildID),
		GoVersion: runtime.Version(),
		Compiler:  runtime.Compiler,
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String renders a one-line banner for startup logs.
func String() string {
	info := Get()
	return fmt.Sprintf("displayd %s (%s, built %s)", info.Version, info.GitCommit, info.BuildDate)
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
