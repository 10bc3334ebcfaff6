// Package image extracts text from PNG and JPEG files through an OCR engine.
package image

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles image documents.
type Extractor struct {
	ocr     driven.OCREngine
	timeout time.Duration
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTimeout bounds each OCR call. Zero leaves the caller's deadline.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		e.timeout = d
	}
}

// New creates an image extractor. ocr may be nil, in which case every
// non-empty image is rejected with domain.ErrOCRUnavailable.
func New(ocr driven.OCREngine, opts ...Option) *Extractor {
	e := &Extractor{ocr: ocr}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Kind returns domain.FileKindImage.
func (e *Extractor) Kind() domain.FileKind {
	return domain.FileKindImage
}

// Extract runs OCR over the whole image and returns a single chunk on page 1.
// Images without recognisable text, including empty files, yield no chunks.
func (e *Extractor) Extract(ctx context.Context, path string, _ domain.ChunkOptions) ([]domain.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtractionIO, path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	if e.ocr == nil {
		return nil, domain.ErrOCRUnavailable
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	text, err := e.ocr.ExtractText(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrOCRFailure, e.ocr.Name(), err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	return []domain.Chunk{{Text: text, SourcePage: 1}}, nil
}
