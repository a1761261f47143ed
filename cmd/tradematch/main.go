// Command tradematch matches customer requests to local service suppliers.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/tradematch/internal/adapters/driving/cli"
	"github.com/custodia-labs/tradematch/internal/app"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}

func bootstrap(opts cli.GlobalOptions) (*cli.Services, func() error, error) {
	a, err := app.New(app.Options{ConfigDir: opts.ConfigDir, DataDir: opts.DataDir})
	if err != nil {
		return nil, nil, err
	}

	for _, w := range a.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	// Typed nil pointers must not reach the interface fields.
	s := &cli.Services{
		Settings:    a.Settings,
		Directory:   a.Directory,
		Unavailable: a.AIError,
	}
	if a.Search != nil {
		s.Search = a.Search
	}
	if a.Ingest != nil {
		s.Ingest = a.Ingest
	}
	return s, a.Close, nil
}
