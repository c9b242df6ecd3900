// Package version reports build information set through ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set by ldflags during build
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info contains complete version information
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build information. A binary built without ldflags falls
// back to the VCS revision recorded by the Go toolchain.
func GetInfo() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if info.Commit == "unknown" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				switch s.Key {
				case "vcs.revision":
					info.Commit = s.Value
				case "vcs.time":
					if info.Date == "unknown" {
						info.Date = s.Value
					}
				}
			}
		}
	}
	return info
}

func (i Info) String() string {
	commit := i.Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	return fmt.Sprintf("formrunner %s (%s) built %s with %s for %s",
		i.Version, commit, i.Date, i.GoVersion, i.Platform)
}
