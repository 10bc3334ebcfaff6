// Package pdf extracts per-page text from PDF files and windows it into
// chunks tagged with the real page number.
package pdf

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles PDF documents.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Kind returns domain.FileKindPDF.
func (e *Extractor) Kind() domain.FileKind {
	return domain.FileKindPDF
}

// Extract windows the text of every page. Pages without extractable text
// (scans, images) contribute no chunks.
func (e *Extractor) Extract(ctx context.Context, path string, opts domain.ChunkOptions) ([]domain.Chunk, error) {
	opts = opts.OrDefault(chunker.DefaultWindowSize, chunker.DefaultWindowOverlap)

	pages, err := PageTexts(path)
	if err != nil {
		return nil, err
	}

	var chunks []domain.Chunk
	for i, text := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := chunker.Window(text, i+1, opts.Size, opts.Overlap)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, page...)
	}

	logger.Debug("pdf: %s: %d pages, %d chunks", path, len(pages), len(chunks))
	return chunks, nil
}

// PageTexts returns the plain text of each page, index 0 being page 1.
func PageTexts(path string) (texts []string, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			texts = nil
			err = fmt.Errorf("%w: %s: malformed pdf: %v", domain.ErrExtractionIO, path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtractionIO, path, err)
	}
	defer f.Close()

	n := r.NumPage()
	texts = make([]string, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			logger.Warn("pdf: %s: page %d: %v", path, i, err)
			continue
		}
		texts[i-1] = text
	}

	return texts, nil
}
