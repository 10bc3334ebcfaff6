package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/connectors/filesystem"
	"github.com/custodia-labs/docqa/internal/core/services"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Index documents dropped into a directory",
	Long: `Watch a directory and index every supported document that is created
or modified in it, including subdirectories. Files are indexed once they
have stopped changing for the settle delay and are never deleted.

Existing files are indexed at startup unless --skip-existing is set.
Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("settle", services.DefaultSettleDelay, "quiet period before a changed file is indexed")
	watchCmd.Flags().Bool("skip-existing", false, "do not index files already in the directory")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	settle, err := cmd.Flags().GetDuration("settle")
	if err != nil {
		return fmt.Errorf("getting settle flag: %w", err)
	}
	skipExisting, err := cmd.Flags().GetBool("skip-existing")
	if err != nil {
		return fmt.Errorf("getting skip-existing flag: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connector := filesystem.New(filesystem.ResolvePath(args[0]))
	defer connector.Close()

	changes, err := connector.Watch(ctx)
	if err != nil {
		return err
	}

	queue := services.NewIngestQueue(ingestService, settle, func(out services.IngestOutcome) {
		if out.Err != nil {
			cmd.PrintErrf("✗ %s: %v\n", out.Path, out.Err)
			return
		}
		cmd.Printf("%s %s → %s (%d chunks)\n",
			out.Result.Icon, out.Result.Filename, out.Result.FileID, out.Result.Chunks)
	})

	if !skipExisting {
		existing, err := connector.Scan(ctx)
		if err != nil {
			return err
		}
		for _, path := range existing {
			queue.Enqueue(path)
		}
	}

	done := make(chan error, 1)
	go func() { done <- queue.Start(ctx) }()

	cmd.Printf("Watching %s (settle %s). Press Ctrl+C to stop.\n", connector.RootPath(), settle.Round(time.Millisecond))

	for path := range changes {
		queue.Enqueue(path)
	}

	queue.Stop()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
