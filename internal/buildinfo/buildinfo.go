// Package buildinfo carries the version metadata stamped into the relnet
// binary at build time.
package buildinfo

import "fmt"

// BuildInfo identifies one build of the binary.
type BuildInfo struct {
	Version    string
	CommitHash string
	BuildDate  string
}

// String renders the build info for startup logs.
func (i BuildInfo) String() string {
	return fmt.Sprintf("version %s (%s) built on %s", i.Version, i.CommitHash, i.BuildDate)
}
