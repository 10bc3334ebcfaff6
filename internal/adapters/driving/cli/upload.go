package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/connectors/filesystem"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

var uploadRemove bool

var uploadCmd = &cobra.Command{
	Use:   "upload [file|url]...",
	Short: "Index documents",
	Long: `Extract, chunk and index one or more documents.

Arguments may be local paths, file:// URIs or http(s) URLs. Supported types:
PDF, DOCX, TXT, CSV, JPG/PNG images (via OCR) and SQLite databases (.db).

Re-uploading a file with the same name replaces its index.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVar(&uploadRemove, "remove", false, "delete local files after they are indexed")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := cmd.Context()
	var failed int
	for _, arg := range args {
		result, err := uploadOne(cmd, arg)
		if err != nil {
			cmd.PrintErrf("%s %s: %v\n", domain.UnknownIcon, arg, err)
			failed++
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		cmd.Printf("%s %s → %s (%d chunks)\n", result.Icon, result.Filename, result.FileID, result.Chunks)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d upload(s) failed", failed, len(args))
	}
	return nil
}

func uploadOne(cmd *cobra.Command, arg string) (*domain.UploadResult, error) {
	ctx := cmd.Context()
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return ingestService.IngestURL(ctx, arg)
	}

	path := filesystem.ResolvePath(arg)
	if uploadRemove {
		return ingestService.Upload(ctx, path)
	}
	return ingestService.Ingest(ctx, path)
}
