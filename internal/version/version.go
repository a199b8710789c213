// Package version exposes build metadata stamped via -ldflags.
package version

// Zero values identify a source build.
//
//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
