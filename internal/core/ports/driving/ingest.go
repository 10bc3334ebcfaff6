package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// IngestService turns uploaded files into searchable indexes.
type IngestService interface {
	// Upload extracts, chunks and indexes the file at path under the
	// file_id derived from its name. The file is removed on success.
	Upload(ctx context.Context, path string) (*domain.UploadResult, error)

	// Ingest indexes a local file without removing it.
	Ingest(ctx context.Context, path string) (*domain.UploadResult, error)

	// IngestURL downloads a document and indexes it.
	IngestURL(ctx context.Context, rawURL string) (*domain.UploadResult, error)
}
