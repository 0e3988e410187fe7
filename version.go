package walletsig

import (
	"fmt"

	"github.com/iov-one/walletsig/topology"
)

// Release is the version of this module. Tagged builds overwrite it using
// -ldflags.
var Release = "v0.1.0-dev"

// GitCommit set by build flags
var GitCommit = ""

// Version returns the release, the commit it was built from if known, and
// the wallet configuration version supported.
func Version() string {
	v := Release
	if GitCommit != "" {
		v += " " + GitCommit
	}
	return fmt.Sprintf("%s (wallet config v%d)", v, topology.Version)
}
