package postprocessors

import (
	"context"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DropBlank removes chunks whose text is blank after trimming.
type DropBlank struct{}

// Name returns the processor name.
func (*DropBlank) Name() string { return "drop_blank" }

// Process filters out blank chunks, preserving order.
func (*DropBlank) Process(_ context.Context, chunks []domain.Chunk) ([]domain.Chunk, error) {
	out := chunks[:0:0]
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) != "" {
			out = append(out, c)
		}
	}
	return out, nil
}

// PageFill replaces an unknown page (zero) with the chunk's 1-based position.
type PageFill struct {
	// Start offsets the synthetic numbering. Zero or less means 1.
	Start int
}

// Name returns the processor name.
func (*PageFill) Name() string { return "page_fill" }

// Process assigns synthetic pages to chunks without one.
func (p *PageFill) Process(_ context.Context, chunks []domain.Chunk) ([]domain.Chunk, error) {
	start := p.Start
	if start <= 0 {
		start = 1
	}
	out := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		if c.SourcePage <= 0 {
			c.SourcePage = start + i
		}
		out[i] = c
	}
	return out, nil
}
