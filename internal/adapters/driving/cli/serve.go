package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/docqa/internal/core/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API server.

Endpoints:
  GET    /               welcome message
  POST   /upload         multipart form with a "file" field
  POST   /query          JSON {"question": "...", "file_id": "a,b", ...}
  GET    /indexes        list indexed documents
  DELETE /indexes/{id}   delete an index
  GET    /ws             websocket chat, one session per connection

Use --port-search to try the following ports when the requested one is busy.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from settings, :8000)")
	serveCmd.Flags().Int("port-search", 0, "number of higher ports to try when the port is taken")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if queryService == nil || ingestService == nil {
		return errQueryNotConfigured
	}

	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}
	search, err := cmd.Flags().GetInt("port-search")
	if err != nil {
		return fmt.Errorf("getting port-search flag: %w", err)
	}

	uploadDir := filepath.Join(os.TempDir(), "docqa-uploads")
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			if addr == "" {
				addr = settings.ServerAddr
			}
			uploadDir = filepath.Join(settings.DataDir, "uploads")
		}
	}
	if addr == "" {
		addr = ":8000"
	}

	addr, err = services.ResolveListenAddr(addr, search)
	if err != nil {
		return err
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Query:  queryService,
		Ingest: ingestService,
		Index:  indexService,
	}, uploadDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "docqa API listening on %s\n", addr)
	return server.Run(cmd.Context(), addr)
}
