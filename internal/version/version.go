// Package version carries build metadata injected at link time:
//
//	go build -ldflags "-X git.home.luguber.info/inful/daybook/internal/version.Version=v1.0.0"
package version

import "fmt"

// Version is the release tag of the binary.
var Version = "unknown"

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the full build identity for --version output.
func String() string {
	return fmt.Sprintf("daybook %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
