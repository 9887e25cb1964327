// Command tref generates reflection registrations for annotated Go packages.
package main

import (
	"os"

	"github.com/conduit-lang/tref/internal/cli/commands"
)

var (
	// Version information - set with -ldflags at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	commands.Version = Version
	commands.GitCommit = GitCommit
	commands.BuildDate = BuildDate

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
