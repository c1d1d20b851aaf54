// Package buildinfo holds version information stamped in at build time:
//
//	go build -ldflags "-X github.com/artfit/artfit/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/artfit/artfit/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/artfit/artfit/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func init() {
	if Version != "dev" {
		return
	}
	// go install builds carry the module version instead of ldflags.
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		Version = bi.Main.Version
	}
}

// String returns the build information on three lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// UserAgent identifies artfit in outgoing requests.
func UserAgent() string {
	return "artfit/" + Version
}
