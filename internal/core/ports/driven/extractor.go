package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Extractor turns one file format into ordered, page or row tagged chunks.
type Extractor interface {
	// Kind returns the file kind this extractor handles.
	Kind() domain.FileKind

	// Extract reads the file at path. Unreadable or corrupt files return
	// an error wrapping domain.ErrExtractionIO. Formats that window their
	// text honour opts; others ignore it.
	Extract(ctx context.Context, path string, opts domain.ChunkOptions) ([]domain.Chunk, error)
}

// ExtractorRegistry maps every FileKind to its Extractor.
type ExtractorRegistry interface {
	// For returns the extractor for kind, or an error wrapping
	// domain.ErrUnsupportedFileType.
	For(kind domain.FileKind) (Extractor, error)

	// Kinds returns the registered kinds.
	Kinds() []domain.FileKind
}
