// Package buildinfo holds version information stamped in at build time:
//
//	go build -ldflags "-X github.com/matzehuels/dialogtree/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/dialogtree/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/dialogtree/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Unstamped builds fall back to the module version recorded by the Go
// toolchain, so "go install ...@v0.3.0" still reports v0.3.0.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"     // semantic version
	Commit  = "none"    // git commit SHA
	Date    = "unknown" // build timestamp
)

func init() {
	if Version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
}

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
