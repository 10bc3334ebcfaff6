package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestIndexService_List(t *testing.T) {
	store := newFakeIndexStore()
	built := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	store.indexes["report"] = &domain.DocumentIndex{
		FileID:   "report",
		Chunks:   []domain.Chunk{{Text: "a"}, {Text: "b"}},
		Metadata: []domain.ChunkMetadata{{Filename: "report.csv", FileType: ".csv"}, {Filename: "report.csv", FileType: ".csv"}},
		Model:    "hashing-512",
		BuiltAt:  built,
	}
	store.indexes["empty"] = &domain.DocumentIndex{FileID: "empty"}
	store.indexes["broken"] = &domain.DocumentIndex{FileID: "broken"}
	store.errs["broken"] = errors.New("corrupt")

	infos, err := NewIndexService(store).List(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, "empty", infos[0].FileID)
	assert.Equal(t, domain.UnknownIcon, infos[0].Icon)
	assert.Zero(t, infos[0].Chunks)

	assert.Equal(t, "report", infos[1].FileID)
	assert.Equal(t, "report.csv", infos[1].Filename)
	assert.Equal(t, ".csv", infos[1].FileType)
	assert.Equal(t, domain.FileKindCSV.Icon(), infos[1].Icon)
	assert.Equal(t, 2, infos[1].Chunks)
	assert.Equal(t, "hashing-512", infos[1].Model)
	assert.Equal(t, "2026-03-01T09:30:00Z", infos[1].BuiltAt)
}

func TestIndexService_List_Error(t *testing.T) {
	store := newFakeIndexStore()
	store.listErr = errors.New("boom")

	_, err := NewIndexService(store).List(context.Background())
	assert.EqualError(t, err, "boom")
}

func TestIndexService_GetDelete(t *testing.T) {
	store := newFakeIndexStore()
	store.indexes["doc"] = &domain.DocumentIndex{FileID: "doc"}
	svc := NewIndexService(store)
	ctx := context.Background()

	idx, err := svc.Get(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, "doc", idx.FileID)

	require.NoError(t, svc.Delete(ctx, "doc"))

	_, err = svc.Get(ctx, "doc")
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "doc"), domain.ErrIndexNotFound)
}
