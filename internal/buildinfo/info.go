package buildinfo

import "fmt"

// Stamped via -ldflags "-X github.com/cleared-dev/rentcheck/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the build stamp for --version.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
