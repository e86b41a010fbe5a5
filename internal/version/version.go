// Package version carries build metadata set with -ldflags "-X".
package version

//nolint:gochecknoglobals // overwritten by the linker
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String is the human form used in the startup log, e.g. "1.4.0 (3f2a9c1, 2026-01-12)".
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
