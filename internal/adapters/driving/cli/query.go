package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	queryFileIDs        string
	queryImage          string
	queryMaxChunks      int
	queryFilterKeywords bool
	querySessionID      string
	queryShowContext    bool
	queryJSON           bool
	queryYAML           bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question about indexed documents",
	Long: `Retrieves the most relevant chunks from the indexed documents and asks
the configured language model to answer from them.

Use "-" as the question to read it from standard input. An image given with
--image is read with OCR and its text is added to the context.`,
	Example: `  docqa query "Who supervised the thesis?"
  docqa query --file-id thesis,grades "Which quarter had the most sales?"
  echo "Summarise the report" | docqa query - --json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryFileIDs, "file-id", "f", "", "comma-separated file ids to search (default all)")
	queryCmd.Flags().StringVarP(&queryImage, "image", "i", "", "image file to OCR into the context")
	queryCmd.Flags().IntVarP(&queryMaxChunks, "max-chunks", "n", 0, "maximum chunks in the context (default retrieval.max_chunks)")
	queryCmd.Flags().BoolVar(&queryFilterKeywords, "filter-keywords", false, "keep only chunks that share a keyword with the question")
	queryCmd.Flags().StringVar(&querySessionID, "session", "", "continue a stored session")
	queryCmd.Flags().BoolVar(&queryShowContext, "context", false, "print the retrieved context")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the response as JSON")
	queryCmd.Flags().BoolVar(&queryYAML, "yaml", false, "output the response as YAML")
	queryCmd.MarkFlagsMutuallyExclusive("json", "yaml")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errQueryNotConfigured
	}

	question, err := readQuestion(cmd, args[0])
	if err != nil {
		return err
	}

	req := domain.QueryRequest{
		Question:      question,
		FileIDs:       domain.ParseFileIDs(queryFileIDs),
		MaxChunks:     queryMaxChunks,
		KeywordFilter: queryFilterKeywords,
	}
	if queryImage != "" {
		data, err := os.ReadFile(queryImage)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		req.ImageBase64 = base64.StdEncoding.EncodeToString(data)
	}

	resp, err := queryService.AskInSession(cmd.Context(), querySessionID, req)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	switch {
	case queryJSON:
		return outputQueryJSON(cmd, resp)
	case queryYAML:
		return outputQueryYAML(cmd, resp)
	default:
		outputQueryText(cmd, resp)
		return nil
	}
}

// readQuestion returns arg, or standard input when arg is "-".
func readQuestion(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", fmt.Errorf("%w: no question piped on standard input", domain.ErrInvalidInput)
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read question: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func outputQueryJSON(cmd *cobra.Command, resp *domain.QueryResponse) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryYAML(cmd *cobra.Command, resp *domain.QueryResponse) error {
	data, err := yaml.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	cmd.Print(string(data))
	return nil
}

func outputQueryText(cmd *cobra.Command, resp *domain.QueryResponse) {
	if queryShowContext && resp.Context != "" {
		cmd.Println("Context:")
		cmd.Println(resp.Context)
		cmd.Println()
	}

	cmd.Println(resp.Answer)

	if len(resp.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, src := range resp.Sources {
			cmd.Printf("  %s %s (page %d)\n", src.Icon, src.Filename, src.Page)
		}
	}
	if resp.SessionID != "" {
		cmd.Printf("\nSession: %s\n", resp.SessionID)
	}
}
