package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var errIndexNotConfigured = errors.New("index service not configured")

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage document indexes",
	Long:  `List, inspect or delete the per-document indexes.`,
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runIndexList,
}

var indexShowCmd = &cobra.Command{
	Use:   "show [file-id]",
	Short: "Print the chunks of an index",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexShow,
}

var indexDeleteCmd = &cobra.Command{
	Use:   "delete [file-id]...",
	Short: "Delete indexes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIndexDelete,
}

func init() {
	indexCmd.AddCommand(indexListCmd)
	indexCmd.AddCommand(indexShowCmd)
	indexCmd.AddCommand(indexDeleteCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexList(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errIndexNotConfigured
	}

	infos, err := indexService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}
	if len(infos) == 0 {
		cmd.Println("No documents indexed. Use 'docqa upload' to add some.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tFILE ID\tFILENAME\tCHUNKS\tMODEL\tBUILT")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			info.Icon, info.FileID, info.Filename, info.Chunks, info.Model, info.BuiltAt)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	cmd.Printf("\nTotal: %d documents\n", len(infos))
	return nil
}

func runIndexShow(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errIndexNotConfigured
	}

	idx, err := indexService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}

	cmd.Printf("Index: %s (%d chunks, model %s)\n\n", idx.FileID, idx.Len(), idx.Model)
	for i, chunk := range idx.Chunks {
		meta := idx.Metadata[i]
		cmd.Printf("--- chunk %d, page %d ---\n", meta.ChunkIndex, meta.PageOrRow)
		cmd.Println(chunk.Text)
	}
	return nil
}

func runIndexDelete(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errIndexNotConfigured
	}

	for _, id := range args {
		if err := indexService.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete %s: %w", id, err)
		}
		cmd.Printf("Deleted index: %s\n", id)
	}
	return nil
}
