// Command pilah detects waste on a camera stream and answers questions about waste handling.
package main

import (
	"os"

	"github.com/pilah-labs/pilah/internal/adapters/driving/cli"
	"github.com/pilah-labs/pilah/internal/app"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBackendFactory(openBackend)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

func openBackend(configDir string) (cli.Backend, error) {
	a, err := app.Open(configDir)
	if err != nil {
		return nil, err
	}
	return a, nil
}
