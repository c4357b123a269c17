// Package version carries the build version, overridable at link time with
// -ldflags "-X .../internal/version.Version=v1.2.3".
package version

// Version is the application version reported by /api/system/version.
var Version = "dev"
