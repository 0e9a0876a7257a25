// Package version holds build metadata set via ldflags:
//
//	go build -ldflags "-X github.com/MrSnakeDoc/pterostats/internal/version.Version=v1.0.0"
package version

import (
	"fmt"
	"runtime"
	"time"
)

var (
	Version   = "dev"                           // ex: v0.1.0
	Commit    = "none"                          // ex: abcd123
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2025-08-11T18:42:00Z
	GoVersion = runtime.Version()               // go version
)

// String renders the build metadata on one line.
func String() string {
	return fmt.Sprintf("pterostats %s (commit=%s, built=%s, go=%s)", Version, Commit, BuildDate, GoVersion)
}
