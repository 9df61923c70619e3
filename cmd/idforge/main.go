// idforge CLI - generate, verify, and parse structured identifiers.
package main

import "github.com/idforge/idforge/pkg/cli"

// Build-time variables set via ldflags.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	cli.Execute()
}
