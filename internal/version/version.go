package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/arthur-debert/linkvault/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/arthur-debert/linkvault/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/arthur-debert/linkvault/internal/version.Date={{.Date}}
)

// String renders the build information the way `linkvault version` prints it
func String() string {
	return fmt.Sprintf("linkvault version %s\n  commit: %s\n  built:  %s", Version, Commit, Date)
}
