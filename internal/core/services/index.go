package services

import (
	"context"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

var _ driving.IndexService = (*IndexService)(nil)

// IndexService lists and removes persisted indexes.
type IndexService struct {
	store driven.IndexStore
}

// NewIndexService creates an index service.
func NewIndexService(store driven.IndexStore) *IndexService {
	return &IndexService{store: store}
}

// List summarises every persisted index. Indexes that cannot be loaded
// are logged and left out.
func (s *IndexService) List(ctx context.Context) ([]driving.IndexInfo, error) {
	ids, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]driving.IndexInfo, 0, len(ids))
	for _, id := range ids {
		idx, err := s.store.Load(ctx, id)
		if err != nil {
			logger.Warn("Skipping index %s: %v", id, err)
			continue
		}

		info := driving.IndexInfo{
			FileID:  id,
			Chunks:  idx.Len(),
			Model:   idx.Model,
			BuiltAt: idx.BuiltAt.Format(time.RFC3339),
			Icon:    domain.UnknownIcon,
		}
		if len(idx.Metadata) > 0 {
			info.Filename = idx.Metadata[0].Filename
			info.FileType = idx.Metadata[0].FileType
			info.Icon = domain.IconForExt(info.FileType)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Get loads the index for fileID.
func (s *IndexService) Get(ctx context.Context, fileID string) (*domain.DocumentIndex, error) {
	return s.store.Load(ctx, fileID)
}

// Delete removes the index for fileID.
func (s *IndexService) Delete(ctx context.Context, fileID string) error {
	if err := s.store.Delete(ctx, fileID); err != nil {
		return err
	}
	logger.Info("Deleted index %s", fileID)
	return nil
}
