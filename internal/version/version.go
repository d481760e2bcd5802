// Package version holds build information. It is a separate package so that
// any package can report the version without importing cli.
package version

// Version is the build version string, set by main from ldflags.
var Version = "dev"

// BuildTime is the build timestamp, set by main from ldflags.
var BuildTime = "unknown"
