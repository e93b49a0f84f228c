// Command livepreview serves a document and previews it live in the terminal.
package main

import (
	"os"

	"github.com/custodia-labs/livepreview/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
