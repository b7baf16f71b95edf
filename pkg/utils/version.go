// Package utils holds small helpers shared across rubberduck packages that do
// not warrant a package of their own.
package utils

import "fmt"

// Build metadata, stamped by the release build through -ldflags -X.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// BuildInfo renders the build metadata as the multi-line block printed by
// "rubberduck version".
func BuildInfo() string {
	return fmt.Sprintf("Version: %s\nSha: %s\nBuilt at: %s\n", Version, Sha, Buildtime)
}
