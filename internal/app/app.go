// Package app builds the docqa service graph from the persisted settings.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vectorstore/flat"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/normalisers"
	"github.com/custodia-labs/docqa/internal/postprocessors"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

// Session store kinds accepted in settings.
const (
	SessionStoreMemory = "memory"
	SessionStoreSQLite = "sqlite"
)

// App holds the configured components. Settings are always available;
// the remaining services are nil until Start succeeds.
type App struct {
	ConfigStore     driven.ConfigStore
	SettingsService *services.SettingsService
	Settings        *domain.Settings

	AI       *ai.InitResult
	Index    *flat.Store
	Sessions driven.SessionStore

	IngestService *services.IngestService
	QAService     *services.QAService
	IndexService  *services.IndexService

	closers []func() error
}

// InMemoryConfig as the config path runs on defaults without touching disk.
const InMemoryConfig = ":memory:"

// New loads settings from configPath, or ~/.docqa/config.toml when empty.
func New(configPath string) (*App, error) {
	var (
		store driven.ConfigStore
		err   error
	)
	switch configPath {
	case InMemoryConfig:
		store = memory.NewConfigStore()
	case "":
		store, err = file.NewConfigStore("")
	default:
		store, err = file.NewConfigStoreFile(configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	return NewWithStore(store, "")
}

// NewWithStore builds an App over an existing config store. An empty
// dataDir selects ~/.docqa.
func NewWithStore(store driven.ConfigStore, dataDir string) (*App, error) {
	settingsService := services.NewSettingsService(store, ai.NewConfigValidator(), dataDir)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	return &App{
		ConfigStore:     store,
		SettingsService: settingsService,
		Settings:        settings,
	}, nil
}

// Start builds the AI collaborators, the index store and the services.
// On error every component built so far is released.
func (a *App) Start(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	settings := a.Settings
	if err := a.SettingsService.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	prompts, err := file.NewPromptStore(filepath.Join(settings.DataDir, "prompts"))
	if err != nil {
		return fmt.Errorf("opening prompts: %w", err)
	}

	result, err := ai.Init(ctx, *settings, prompts)
	if err != nil {
		return err
	}
	a.AI = result
	a.closers = append(a.closers, func() error {
		result.Close()
		return nil
	})
	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}

	a.Index = flat.New(settings.IndexDir(), result.EmbeddingService,
		flat.WithRateLimiter(flat.NewRateLimiter(settings.EmbeddingRPS, burstFor(settings.EmbeddingRPS))),
		flat.WithTimeout(settings.Timeouts.Embedding),
	)

	sessions, err := openSessionStore(settings)
	if err != nil {
		return err
	}
	a.Sessions = sessions
	if c, ok := sessions.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}

	pipeline, err := buildPipeline(settings.Pipeline)
	if err != nil {
		return err
	}

	sizer := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
		chunker.WithWindowSize(settings.Chunking.PDFSize),
		chunker.WithWindowOverlap(settings.Chunking.PDFOverlap),
	)

	extractors := normalisers.NewDefaultRegistry(result.OCREngine, settings.Timeouts.OCR)
	retrieval := services.NewRetrievalService(a.Index, result.OCREngine, settings.Timeouts.OCR).
		WithMaxChunks(settings.MaxChunks)

	a.IngestService = services.NewIngestService(extractors, sizer, pipeline, a.Index)
	a.QAService = services.NewQAService(retrieval, result.LLMService, prompts, sessions, settings.Timeouts.LLM)
	a.IndexService = services.NewIndexService(a.Index)

	logger.Debug("Data directory: %s", settings.DataDir)
	logger.Debug("Embedding: %s %s", settings.Embedding.Provider, settings.Embedding.Model)
	return nil
}

// Close releases every resource in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func openSessionStore(settings *domain.Settings) (driven.SessionStore, error) {
	switch settings.SessionStore {
	case "", SessionStoreMemory:
		return memory.NewSessionStore(), nil
	case SessionStoreSQLite:
		store, err := sqlite.NewSessionStore(settings.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening session store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown session store %q", domain.ErrInvalidInput, settings.SessionStore)
	}
}

func buildPipeline(cfg domain.PipelineSettings) (*postprocessors.Pipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	names := cfg.Processors
	if len(names) == 0 {
		names = postprocessors.DefaultProcessors
	}
	pipeline, err := registry.BuildPipeline(names, cfg.ProcessorConfigs)
	if err != nil {
		return nil, fmt.Errorf("building chunk pipeline: %w", err)
	}
	return pipeline, nil
}

// burstFor allows one second's worth of requests at once.
func burstFor(rps float64) int {
	return max(1, int(math.Ceil(rps)))
}
