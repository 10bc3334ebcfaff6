// Package plaintext extracts lines from UTF-8 text files.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Kind returns domain.FileKindTXT.
func (e *Extractor) Kind() domain.FileKind {
	return domain.FileKindTXT
}

// Extract trims every line, drops blank ones and packs the rest into chunks.
func (e *Extractor) Extract(_ context.Context, path string, opts domain.ChunkOptions) ([]domain.Chunk, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtractionIO, path, err)
	}

	opts = opts.OrDefault(chunker.DefaultChunkSize, chunker.DefaultChunkOverlap)
	return chunker.Lines(Lines(string(content)), opts.Size, opts.Overlap)
}

// Lines returns the trimmed, non-blank lines of content.
func Lines(content string) []string {
	content = strings.TrimPrefix(content, "\ufeff")
	raw := strings.Split(content, "\n")

	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
