// Command driftfs runs the replicated file store name server and its
// management commands.
package main

import (
	"fmt"
	"os"

	"github.com/driftfs/driftfs/cmd/driftfs/commands"
)

// Overridden at build time through -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version, commands.Commit, commands.Date = version, commit, date

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
