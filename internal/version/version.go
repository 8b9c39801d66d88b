// Package version reports the build the kiosk is running.
package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags at build time:
//
//	go build -ldflags "-X github.com/soyeahso/frontdesk/internal/version.Version=1.0.0
//	  -X github.com/soyeahso/frontdesk/internal/version.Commit=abc123
//	  -X github.com/soyeahso/frontdesk/internal/version.Date=2026-01-01"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Build is the build metadata in a form the status command and the gateway
// can serialise.
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Current returns the running build.
func Current() Build {
	return Build{
		Version:   Version,
		Commit:    short(Commit),
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Info returns the one-line banner printed by `frontdesk version`.
func Info() string {
	b := Current()
	return fmt.Sprintf("frontdesk %s (commit: %s, built: %s, %s)", b.Version, b.Commit, b.Date, b.Platform)
}

func short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
