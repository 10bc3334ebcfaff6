package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// IndexStore owns the per-file_id vector indexes.
// Builds for the same file_id are serialised and replace the previous
// index atomically; readers see either the old or the new index.
type IndexStore interface {
	// Build embeds the chunks and persists them as the index for fileID,
	// replacing any existing one. chunks and metas must be the same length.
	Build(ctx context.Context, fileID string, chunks []domain.Chunk, metas []domain.ChunkMetadata) (*domain.DocumentIndex, error)

	// Load returns the persisted index, or domain.ErrIndexNotFound.
	Load(ctx context.Context, fileID string) (*domain.DocumentIndex, error)

	// Search returns the k chunks of fileID most similar to query.
	Search(ctx context.Context, fileID, query string, k int) ([]domain.RetrievedChunk, error)

	// List returns the file_ids with a persisted index, sorted.
	// A missing index root yields an empty list.
	List(ctx context.Context) ([]string, error)

	// Delete removes the index for fileID.
	Delete(ctx context.Context, fileID string) error
}
