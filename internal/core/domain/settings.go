package domain

import (
	"path/filepath"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings, LLM or OCR.
type AIProvider string

// Available AI providers.
const (
	// AIProviderLocal is the built-in hashing embedder. Embeddings only.
	AIProviderLocal AIProvider = "local"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderTesseract is the tesseract command-line OCR engine.
	AIProviderTesseract AIProvider = "tesseract"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderLocal, AIProviderOllama, AIProviderOpenAI,
		AIProviderAnthropic, AIProviderGemini, AIProviderTesseract:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLocal || p == AIProviderTesseract
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderLocal:
		return "Local (hashing embedder, offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderTesseract:
		return "Tesseract (local OCR)"
	default:
		return unknownDescription
	}
}

// ProviderSettings configures one AI provider binding.
type ProviderSettings struct {
	// Provider is the service provider.
	Provider AIProvider

	// Model is the model name. Empty selects the provider default.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string
}

// IsConfigured returns true if the provider is set up.
func (s ProviderSettings) IsConfigured() bool {
	if !s.Provider.IsValid() {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings holds the chunk window sizes.
type ChunkingSettings struct {
	// Size and Overlap apply to line-packed formats.
	Size    int
	Overlap int

	// PDFSize and PDFOverlap apply to the per-page PDF window.
	PDFSize    int
	PDFOverlap int
}

// TimeoutSettings bounds every external call.
type TimeoutSettings struct {
	Embedding time.Duration
	LLM       time.Duration
	OCR       time.Duration
}

// PipelineSettings names the chunk processors run after extraction, in order.
type PipelineSettings struct {
	Processors []string

	// ProcessorConfigs holds optional per-processor settings keyed by name.
	ProcessorConfigs map[string]map[string]any
}

// DefaultPipelineSettings drops blank chunks and fills unknown page numbers.
func DefaultPipelineSettings() PipelineSettings {
	return PipelineSettings{Processors: []string{"drop_blank", "page_fill"}}
}

// Settings holds all application settings.
type Settings struct {
	// DataDir is the root for indexes and the session database.
	DataDir string

	// Chunking holds chunk window settings.
	Chunking ChunkingSettings

	// MaxChunks caps the retrieval context.
	MaxChunks int

	// Pipeline configures chunk post-processing.
	Pipeline PipelineSettings

	// Embedding, LLM and OCR bind the external collaborators.
	Embedding ProviderSettings
	LLM       ProviderSettings
	OCR       ProviderSettings

	// EmbeddingRPS throttles embedding requests. Zero disables throttling.
	EmbeddingRPS float64

	// Timeouts bounds external calls.
	Timeouts TimeoutSettings

	// ServerAddr is the HTTP listen address.
	ServerAddr string

	// SessionStore is "memory" or "sqlite".
	SessionStore string
}

// IndexDir returns the directory holding per-file indexes.
func (s Settings) IndexDir() string {
	return filepath.Join(s.DataDir, "indexes")
}

// SessionDBPath returns the sqlite session database path.
func (s Settings) SessionDBPath() string {
	return filepath.Join(s.DataDir, "sessions.db")
}

// DefaultSettings returns settings with sensible defaults.
// The local embedder works offline; answering needs a reachable LLM.
func DefaultSettings(dataDir string) Settings {
	return Settings{
		DataDir: dataDir,
		Chunking: ChunkingSettings{
			Size:       1000,
			Overlap:    200,
			PDFSize:    4000,
			PDFOverlap: 300,
		},
		MaxChunks: DefaultMaxChunks,
		Pipeline:  DefaultPipelineSettings(),
		Embedding: ProviderSettings{Provider: AIProviderLocal},
		LLM:       ProviderSettings{Provider: AIProviderOllama},
		OCR:       ProviderSettings{Provider: AIProviderTesseract},
		Timeouts: TimeoutSettings{
			Embedding: 30 * time.Second,
			LLM:       120 * time.Second,
			OCR:       60 * time.Second,
		},
		ServerAddr:   ":8000",
		SessionStore: "memory",
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// AllOCRProviders returns providers that can read text from images.
func AllOCRProviders() []AIProvider {
	return []AIProvider{
		AIProviderTesseract,
		AIProviderOllama,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "hashing-512",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "gemini-embedding-001",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-2.5-flash",
	}
}

// DefaultOCRModels returns default models for each OCR provider.
func DefaultOCRModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderTesseract: "eng",
		AIProviderOllama:    "llava",
		AIProviderGemini:    "gemini-2.5-flash",
	}
}
