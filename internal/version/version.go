// Package version carries the build identity of the dev-agent binary.
package version

import "fmt"

// Set at build time via -ldflags "-X github.com/rhythmatician/dev-agent/internal/version.<var>=...".
var (
	Version   = "0.1.0"
	Commit    = "dev"
	BuildDate = "unknown"
)

// Full renders the version line shown by `dev-agent version`.
func Full() string {
	return fmt.Sprintf("dev-agent %s (commit %s, built %s)", Version, Commit, BuildDate)
}
