// Command docqa indexes documents and answers questions about them.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/app"
	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version string

func main() {
	// A .env file is optional; provider API keys usually come from it.
	_ = godotenv.Load()

	var application *app.App
	cli.SetVersion(version)
	cli.SetBootstrap(func(configPath string) error {
		a, err := app.New(configPath)
		if err != nil {
			return err
		}
		application = a

		// Settings commands must keep working when the rest cannot start,
		// so a Start failure is reported and the other services stay unset.
		services := cli.Services{Settings: a.SettingsService}
		if err := a.Start(context.Background()); err != nil {
			logger.Warn("docqa is not ready: %v", err)
			logger.Warn("Run 'docqa settings wizard' to fix the configuration.")
		} else {
			services.Ingest = a.IngestService
			services.Query = a.QAService
			services.Index = a.IndexService
		}
		cli.SetServices(services)
		return nil
	})

	err := cli.Execute()
	if application != nil {
		if cerr := application.Close(); cerr != nil {
			logger.Warn("closing: %v", cerr)
		}
	}
	if err != nil {
		os.Exit(1)
	}
}
