// Package cli implements the docqa command line.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// skipBootstrap marks commands that run without the service graph.
const skipBootstrap = "skip-bootstrap"

var (
	version = "dev"

	verbose    bool
	configPath string

	ingestService   driving.IngestService
	queryService    driving.QueryService
	indexService    driving.IndexService
	settingsService driving.SettingsService

	bootstrap func(configPath string) error
)

var errQueryNotConfigured = errors.New("query service not configured")

// Services holds the driving ports used by commands.
type Services struct {
	Ingest   driving.IngestService
	Query    driving.QueryService
	Index    driving.IndexService
	Settings driving.SettingsService
}

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about your documents",
	Long: `docqa indexes PDF, DOCX, TXT, CSV, image and SQLite files and answers
questions about them with a language model.

Upload documents with 'docqa upload', then ask with 'docqa query' or start
an interactive session with 'docqa chat'.`,
	SilenceUsage:      true,
	PersistentPreRunE: preRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.docqa/config.toml, :memory: for defaults only)")
}

func preRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if cmd.Annotations[skipBootstrap] == "true" || bootstrap == nil {
		return nil
	}
	return bootstrap(configPath)
}

// SetVersion sets the version reported by 'docqa version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetBootstrap registers the function that builds the service graph.
// It runs once per command, after flags are parsed, with the --config value.
func SetBootstrap(fn func(configPath string) error) {
	bootstrap = fn
}

// SetServices wires the driving ports used by commands.
func SetServices(s Services) {
	ingestService = s.Ingest
	queryService = s.Query
	indexService = s.Index
	settingsService = s.Settings
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
