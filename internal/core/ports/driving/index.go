package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// IndexInfo summarises one persisted index.
type IndexInfo struct {
	FileID   string
	Filename string
	FileType string
	Icon     string
	Chunks   int
	Model    string
	BuiltAt  string
}

// IndexService manages persisted indexes.
type IndexService interface {
	// List returns every persisted index.
	List(ctx context.Context) ([]IndexInfo, error)

	// Get returns the index for fileID, or domain.ErrIndexNotFound.
	Get(ctx context.Context, fileID string) (*domain.DocumentIndex, error)

	// Delete removes the index for fileID.
	Delete(ctx context.Context, fileID string) error
}
