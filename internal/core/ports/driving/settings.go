package driving

import "github.com/custodia-labs/docqa/internal/core/domain"

// SettingsService reads and updates the persisted configuration.
type SettingsService interface {
	// Get returns the effective settings: stored values over defaults,
	// with API keys falling back to the provider environment variables.
	Get() (*domain.Settings, error)

	// Save persists settings.
	Save(settings *domain.Settings) error

	// SetEmbeddingProvider binds the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider binds the answering model.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetOCRProvider binds the engine used for question images.
	SetOCRProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate reports the first inconsistency in the current settings.
	Validate() error

	// GetDefaults returns the built-in settings.
	GetDefaults() domain.Settings

	// ValidateEmbeddingConfig pings the configured embedding provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig pings the configured LLM provider.
	ValidateLLMConfig() error
}
