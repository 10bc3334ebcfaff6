// Package chunker splits extracted text into page addressable chunks.
//
// Two strategies are provided. Lines greedily packs whole units (lines or
// paragraphs) into chunks of bounded length and never splits a unit.
// Window slides a fixed-size character window across one page of text.
// All lengths are counted in runes.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per line-packed chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default overlap for line-packed chunks.
const DefaultChunkOverlap = 200

// DefaultWindowSize is the default PDF window size in characters.
const DefaultWindowSize = 4000

// DefaultWindowOverlap is the default number of characters shared by
// consecutive PDF windows.
const DefaultWindowOverlap = 300

// Lines packs units into chunks of at most size characters, joining units
// with a newline. A unit longer than size becomes a chunk on its own.
// Blank units are skipped. Chunks are numbered 1, 2, 3... in SourcePage.
//
// overlap is validated like Window's but not applied: line packed chunks
// never share content. An overlap that is not smaller than size is
// rejected with domain.ErrInvalidChunkOverlap.
func Lines(units []string, size, overlap int) ([]domain.Chunk, error) {
	if size <= 0 {
		return nil, domain.ErrInvalidChunkSize
	}
	if overlap >= size {
		return nil, domain.ErrInvalidChunkOverlap
	}

	var (
		chunks []domain.Chunk
		buf    strings.Builder
		bufLen int
	)

	flush := func() {
		chunks = append(chunks, domain.Chunk{
			Text:       buf.String(),
			SourcePage: len(chunks) + 1,
		})
		buf.Reset()
		bufLen = 0
	}

	for _, unit := range units {
		if strings.TrimSpace(unit) == "" {
			continue
		}
		unitLen := utf8.RuneCountInString(unit)

		if bufLen > 0 && bufLen+unitLen+1 > size {
			flush()
		}

		if bufLen > 0 {
			buf.WriteByte('\n')
			bufLen++
		}
		buf.WriteString(unit)
		bufLen += unitLen
	}

	if bufLen > 0 {
		flush()
	}

	return chunks, nil
}

// Window slides a size-character window across text in steps of
// size-overlap. Windows that are blank after trimming are skipped. Every
// chunk carries page as its SourcePage.
//
// A negative overlap is treated as zero. An overlap that is not smaller
// than size is rejected with domain.ErrInvalidChunkOverlap.
func Window(text string, page, size, overlap int) ([]domain.Chunk, error) {
	if size <= 0 {
		return nil, domain.ErrInvalidChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		return nil, domain.ErrInvalidChunkOverlap
	}

	runes := []rune(text)
	step := size - overlap
	chunks := make([]domain.Chunk, 0, len(runes)/step+1)

	for start := 0; start < len(runes); start += step {
		end := min(start+size, len(runes))
		window := string(runes[start:end])
		if strings.TrimSpace(window) == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			Text:       window,
			SourcePage: page,
		})
	}

	return chunks, nil
}

// Processor holds the configured chunk sizes for each strategy.
type Processor struct {
	chunkSize     int
	overlap       int
	windowSize    int
	windowOverlap int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the line-packed chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the line-packed overlap in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithWindowSize sets the PDF window size in characters.
func WithWindowSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.windowSize = size
		}
	}
}

// WithWindowOverlap sets the PDF window overlap in characters.
func WithWindowOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.windowOverlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:     DefaultChunkSize,
		overlap:       DefaultChunkOverlap,
		windowSize:    DefaultWindowSize,
		windowOverlap: DefaultWindowOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}
	if p.windowOverlap >= p.windowSize {
		p.windowOverlap = p.windowSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// OptionsFor returns the chunk options used when extracting kind.
func (p *Processor) OptionsFor(kind domain.FileKind) domain.ChunkOptions {
	if kind == domain.FileKindPDF {
		return domain.ChunkOptions{Size: p.windowSize, Overlap: p.windowOverlap}
	}
	return domain.ChunkOptions{Size: p.chunkSize, Overlap: p.overlap}
}
