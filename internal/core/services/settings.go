package services

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir         = "data_dir"
	keyChunkSize       = "chunking.size"
	keyChunkOverlap    = "chunking.overlap"
	keyPDFSize         = "chunking.pdf_size"
	keyPDFOverlap      = "chunking.pdf_overlap"
	keyMaxChunks       = "retrieval.max_chunks"
	keyProcessors      = "ingest.processors"
	keyEmbedRPS        = "embedding.requests_per_second"
	keyTimeoutEmbed    = "timeouts.embedding"
	keyTimeoutLLM      = "timeouts.llm"
	keyTimeoutOCR      = "timeouts.ocr"
	keyServerAddr      = "server.addr"
	keySessionStore    = "session.store"
	sectionEmbedding   = "embedding"
	sectionLLM         = "llm"
	sectionOCR         = "ocr"
	defaultOllamaURL   = "http://localhost:11434"
	sessionStoreMemory = "memory"
	sessionStoreSQLite = "sqlite"
)

// apiKeyEnv names the environment variable consulted when a cloud
// provider has no api_key in the config file.
var apiKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderGemini:    "GOOGLE_API_KEY",
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
}

// processorConfigKeys lists the per-processor options read from
// ingest.<processor>.<option>.
var processorConfigKeys = map[string][]string{
	"page_fill": {"start"},
}

// SettingsService builds domain.Settings from a ConfigStore.
type SettingsService struct {
	configStore    driven.ConfigStore
	aiValidator    driven.AIConfigValidator
	defaultDataDir string
	getenv         func(string) string
}

// NewSettingsService creates a settings service. An empty defaultDataDir
// means ~/.docqa.
func NewSettingsService(
	configStore driven.ConfigStore, aiValidator driven.AIConfigValidator, defaultDataDir string,
) *SettingsService {
	if defaultDataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			defaultDataDir = filepath.Join(home, ".docqa")
		} else {
			defaultDataDir = ".docqa"
		}
	}
	return &SettingsService{
		configStore:    configStore,
		aiValidator:    aiValidator,
		defaultDataDir: defaultDataDir,
		getenv:         os.Getenv,
	}
}

// Get returns the effective settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings(s.defaultDataDir)

	settings := &domain.Settings{
		DataDir: s.getString(keyDataDir, d.DataDir),
		Chunking: domain.ChunkingSettings{
			Size:       s.getInt(keyChunkSize, d.Chunking.Size),
			Overlap:    s.getInt(keyChunkOverlap, d.Chunking.Overlap),
			PDFSize:    s.getInt(keyPDFSize, d.Chunking.PDFSize),
			PDFOverlap: s.getInt(keyPDFOverlap, d.Chunking.PDFOverlap),
		},
		MaxChunks:    s.getInt(keyMaxChunks, d.MaxChunks),
		Pipeline:     s.getPipeline(d.Pipeline),
		Embedding:    s.getProviderSettings(sectionEmbedding, d.Embedding),
		LLM:          s.getProviderSettings(sectionLLM, d.LLM),
		OCR:          s.getProviderSettings(sectionOCR, d.OCR),
		EmbeddingRPS: s.configStore.GetFloat(keyEmbedRPS),
		Timeouts: domain.TimeoutSettings{
			Embedding: s.getDuration(keyTimeoutEmbed, d.Timeouts.Embedding),
			LLM:       s.getDuration(keyTimeoutLLM, d.Timeouts.LLM),
			OCR:       s.getDuration(keyTimeoutOCR, d.Timeouts.OCR),
		},
		ServerAddr:   s.getString(keyServerAddr, d.ServerAddr),
		SessionStore: s.getString(keySessionStore, d.SessionStore),
	}

	return settings, nil
}

// Save persists settings. API keys are only written when set, so keys
// that came from the environment are not copied into the file unless
// the caller put them there.
func (s *SettingsService) Save(settings *domain.Settings) error {
	values := []struct {
		key string
		val any
	}{
		{keyDataDir, settings.DataDir},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyPDFSize, settings.Chunking.PDFSize},
		{keyPDFOverlap, settings.Chunking.PDFOverlap},
		{keyMaxChunks, settings.MaxChunks},
		{keyProcessors, settings.Pipeline.Processors},
		{keyEmbedRPS, settings.EmbeddingRPS},
		{keyTimeoutEmbed, settings.Timeouts.Embedding.String()},
		{keyTimeoutLLM, settings.Timeouts.LLM.String()},
		{keyTimeoutOCR, settings.Timeouts.OCR.String()},
		{keyServerAddr, settings.ServerAddr},
		{keySessionStore, settings.SessionStore},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	for _, p := range []struct {
		section string
		cfg     domain.ProviderSettings
	}{
		{sectionEmbedding, settings.Embedding},
		{sectionLLM, settings.LLM},
		{sectionOCR, settings.OCR},
	} {
		if err := s.saveProvider(p.section, p.cfg); err != nil {
			return err
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	return s.setProvider(sectionEmbedding, domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels(),
		provider, model, apiKey)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	return s.setProvider(sectionLLM, domain.AllLLMProviders(), domain.DefaultLLMModels(),
		provider, model, apiKey)
}

// SetOCRProvider configures the OCR engine.
func (s *SettingsService) SetOCRProvider(provider domain.AIProvider, model, apiKey string) error {
	return s.setProvider(sectionOCR, domain.AllOCRProviders(), domain.DefaultOCRModels(),
		provider, model, apiKey)
}

// Validate checks the current settings for values the pipeline cannot use.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	c := settings.Chunking
	switch {
	case c.Size <= 0 || c.PDFSize <= 0:
		return fmt.Errorf("%w: chunk sizes must be positive", domain.ErrInvalidChunkSize)
	case c.Overlap < 0 || c.Overlap >= c.Size:
		return fmt.Errorf("%w: chunking.overlap %d with chunking.size %d", domain.ErrInvalidChunkOverlap, c.Overlap, c.Size)
	case c.PDFOverlap < 0 || c.PDFOverlap >= c.PDFSize:
		return fmt.Errorf("%w: chunking.pdf_overlap %d with chunking.pdf_size %d",
			domain.ErrInvalidChunkOverlap, c.PDFOverlap, c.PDFSize)
	case settings.MaxChunks <= 0:
		return fmt.Errorf("%w: retrieval.max_chunks must be positive", domain.ErrInvalidInput)
	case settings.EmbeddingRPS < 0:
		return fmt.Errorf("%w: embedding.requests_per_second must not be negative", domain.ErrInvalidInput)
	case settings.SessionStore != sessionStoreMemory && settings.SessionStore != sessionStoreSQLite:
		return fmt.Errorf("%w: session.store must be %q or %q", domain.ErrInvalidInput, sessionStoreMemory, sessionStoreSQLite)
	}

	checks := []struct {
		role    string
		cfg     domain.ProviderSettings
		allowed []domain.AIProvider
	}{
		{"embedding", settings.Embedding, domain.AllEmbeddingProviders()},
		{"llm", settings.LLM, domain.AllLLMProviders()},
		{"ocr", settings.OCR, domain.AllOCRProviders()},
	}
	for _, c := range checks {
		if !slices.Contains(c.allowed, c.cfg.Provider) {
			return fmt.Errorf("%w: %s provider %q is not supported", domain.ErrInvalidInput, c.role, c.cfg.Provider)
		}
		if c.cfg.Provider.RequiresAPIKey() && c.cfg.APIKey == "" {
			return fmt.Errorf("%w: %s provider %s needs an API key (set %s.api_key or %s)",
				domain.ErrInvalidInput, c.role, c.cfg.Provider, c.role, apiKeyEnv[c.cfg.Provider])
		}
	}

	return nil
}

// GetDefaults returns the built-in settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings(s.defaultDataDir)
}

// ValidateEmbeddingConfig pings the configured embedding provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig pings the configured LLM provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func (s *SettingsService) setProvider(
	section string, allowed []domain.AIProvider, models map[domain.AIProvider]string,
	provider domain.AIProvider, model, apiKey string,
) error {
	if !slices.Contains(allowed, provider) {
		return fmt.Errorf("%w: provider %q cannot serve %s", domain.ErrInvalidInput, provider, section)
	}
	if apiKey == "" {
		apiKey = s.getenv(apiKeyEnv[provider])
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	cfg := domain.ProviderSettings{Provider: provider, Model: model, APIKey: apiKey}
	if cfg.Model == "" {
		cfg.Model = models[provider]
	}
	if provider == domain.AIProviderOllama {
		cfg.BaseURL = s.configStore.GetString(section + ".base_url")
		if cfg.BaseURL == "" {
			cfg.BaseURL = defaultOllamaURL
		}
	}

	return s.saveProvider(section, cfg)
}

func (s *SettingsService) saveProvider(section string, cfg domain.ProviderSettings) error {
	if err := s.configStore.Set(section+".provider", cfg.Provider.String()); err != nil {
		return fmt.Errorf("save %s provider: %w", section, err)
	}
	if err := s.configStore.Set(section+".model", cfg.Model); err != nil {
		return fmt.Errorf("save %s model: %w", section, err)
	}
	if err := s.configStore.Set(section+".base_url", cfg.BaseURL); err != nil {
		return fmt.Errorf("save %s base_url: %w", section, err)
	}
	if cfg.APIKey != "" && cfg.APIKey != s.getenv(apiKeyEnv[cfg.Provider]) {
		if err := s.configStore.Set(section+".api_key", cfg.APIKey); err != nil {
			return fmt.Errorf("save %s api_key: %w", section, err)
		}
	}
	return nil
}

func (s *SettingsService) getProviderSettings(section string, def domain.ProviderSettings) domain.ProviderSettings {
	cfg := domain.ProviderSettings{
		Provider: s.getProvider(section+".provider", def.Provider),
		Model:    s.configStore.GetString(section + ".model"),
		BaseURL:  s.configStore.GetString(section + ".base_url"),
		APIKey:   s.configStore.GetString(section + ".api_key"),
	}
	if cfg.APIKey == "" {
		if env, ok := apiKeyEnv[cfg.Provider]; ok {
			cfg.APIKey = s.getenv(env)
		}
	}
	return cfg
}

func (s *SettingsService) getPipeline(def domain.PipelineSettings) domain.PipelineSettings {
	names := s.configStore.GetStringSlice(keyProcessors)
	if _, set := s.configStore.Get(keyProcessors); !set {
		names = def.Processors
	}

	p := domain.PipelineSettings{Processors: names}
	for _, name := range names {
		for _, opt := range processorConfigKeys[name] {
			val, ok := s.configStore.Get("ingest." + name + "." + opt)
			if !ok {
				continue
			}
			if p.ProcessorConfigs == nil {
				p.ProcessorConfigs = make(map[string]map[string]any)
			}
			if p.ProcessorConfigs[name] == nil {
				p.ProcessorConfigs[name] = make(map[string]any)
			}
			p.ProcessorConfigs[name][opt] = val
		}
	}
	return p
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetDuration(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
