package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ChunkProcessor transforms extracted chunks before they are indexed.
// Processors are chained in a pipeline (e.g., blank removal, page numbering).
type ChunkProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process receives the chunks of one file and returns the chunks to keep.
	Process(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// ChunkPipeline chains multiple ChunkProcessors.
type ChunkPipeline interface {
	// Process runs the chunks through all processors in order.
	Process(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error)
}
