// Package version provides the deadcore tool version.
package version

// Version is the deadcore tool version.
// Can be overridden at build time with:
//   go build -ldflags "-X github.com/deadcore/analyzer/pkg/version.Version=2.0.1"
var Version = "dev"
