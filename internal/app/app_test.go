package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

func newTestApp(t *testing.T, values map[string]any) *App {
	t.Helper()
	dataDir := t.TempDir()
	seed := map[string]any{"data_dir": dataDir}
	for k, v := range values {
		seed[k] = v
	}

	a, err := NewWithStore(memory.NewConfigStore(seed), dataDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNew_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	a, err := New(path)

	require.NoError(t, err)
	assert.NotNil(t, a.SettingsService)
	assert.Equal(t, domain.AIProviderLocal, a.Settings.Embedding.Provider)
	assert.DirExists(t, filepath.Dir(path))
}

func TestNew_InMemoryConfig(t *testing.T) {
	a, err := New(InMemoryConfig)

	require.NoError(t, err)
	assert.IsType(t, &memory.ConfigStore{}, a.ConfigStore)
	assert.Equal(t, domain.DefaultMaxChunks, a.Settings.MaxChunks)
}

func TestNewWithStore_LoadsSettings(t *testing.T) {
	a := newTestApp(t, map[string]any{"retrieval.max_chunks": 4})

	assert.Equal(t, 4, a.Settings.MaxChunks)
	assert.Nil(t, a.QAService)
}

func TestStart_BuildsServices(t *testing.T) {
	a := newTestApp(t, nil)

	require.NoError(t, a.Start(context.Background()))

	assert.NotNil(t, a.AI.EmbeddingService)
	assert.NotNil(t, a.Index)
	assert.NotNil(t, a.IngestService)
	assert.NotNil(t, a.QAService)
	assert.NotNil(t, a.IndexService)
	assert.IsType(t, &memory.SessionStore{}, a.Sessions)
	assert.Equal(t, a.Settings.IndexDir(), a.Index.Root())
}

func TestStart_IngestThenRetrieve(t *testing.T) {
	a := newTestApp(t, nil)
	require.NoError(t, a.Start(context.Background()))
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Ada Lovelace wrote the first program.\nShe worked with Babbage.\n"), 0o600))

	result, err := a.IngestService.Ingest(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "notes", result.FileID)

	infos, err := a.IndexService.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "notes.txt", infos[0].Filename)

	retrieved, err := a.QAService.Retrieve(ctx, domain.QueryRequest{Question: "Who wrote the first program?"})
	require.NoError(t, err)
	require.NotEmpty(t, retrieved.Chunks)
	assert.Contains(t, retrieved.Context, "Ada Lovelace")
}

func TestStart_MaxChunksFromSettings(t *testing.T) {
	a := newTestApp(t, map[string]any{"retrieval.max_chunks": 2})
	require.NoError(t, a.Start(context.Background()))
	ctx := context.Background()

	var b strings.Builder
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&b, "Line %d of the committee report names the examiners and the supervisor.\n", i)
	}
	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))

	result, err := a.IngestService.Ingest(ctx, path)
	require.NoError(t, err)
	require.Greater(t, result.Chunks, 2)

	retrieved, err := a.QAService.Retrieve(ctx, domain.QueryRequest{Question: "Who is the supervisor?"})
	require.NoError(t, err)
	assert.Len(t, retrieved.Chunks, 2)
}

func TestStart_SQLiteSessions(t *testing.T) {
	a := newTestApp(t, map[string]any{"session.store": "sqlite"})

	require.NoError(t, a.Start(context.Background()))

	assert.IsType(t, &sqlite.SessionStore{}, a.Sessions)
	assert.FileExists(t, a.Settings.SessionDBPath())
	assert.NoError(t, a.Close())
}

func TestStart_InvalidSettings(t *testing.T) {
	a := newTestApp(t, map[string]any{"session.store": "redis"})

	err := a.Start(context.Background())

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, a.IngestService)
}

func TestClose_Idempotent(t *testing.T) {
	a := newTestApp(t, nil)
	require.NoError(t, a.Start(context.Background()))

	assert.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}

func TestBuildPipeline(t *testing.T) {
	p, err := buildPipeline(domain.PipelineSettings{})
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = buildPipeline(domain.PipelineSettings{Processors: []string{"summarise"}})
	assert.ErrorContains(t, err, "unknown processor: summarise")
}

func TestOpenSessionStore_Unknown(t *testing.T) {
	s := domain.DefaultSettings(t.TempDir())
	s.SessionStore = "redis"

	_, err := openSessionStore(&s)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBurstFor(t *testing.T) {
	assert.Equal(t, 1, burstFor(0))
	assert.Equal(t, 1, burstFor(0.5))
	assert.Equal(t, 3, burstFor(2.5))
}
