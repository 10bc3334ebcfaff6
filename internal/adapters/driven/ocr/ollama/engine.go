// Package ollama provides an OCR engine that asks an Ollama vision model
// (llava, llama3.2-vision, ...) to transcribe an image.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Engine implements the interfaces.
var (
	_ driven.OCREngine        = (*Engine)(nil)
	_ driven.PromptStoreAware = (*Engine)(nil)
)

// Default configuration values.
const (
	DefaultModel   = "llava"
	DefaultTimeout = 60 * time.Second
)

// defaultOCRPrompt is used when no PromptStore is configured.
const defaultOCRPrompt = `Transcribe all text visible in this image exactly as written.
Keep the original language and line breaks. Return only the text.
If the image contains no text, return nothing.`

// Config holds configuration for the Ollama OCR engine.
type Config struct {
	// BaseURL is the Ollama host. Empty uses OLLAMA_HOST or http://127.0.0.1:11434.
	BaseURL string

	// Model is a vision-capable model (default: llava).
	Model string

	// Timeout bounds each request (default: 60s).
	Timeout time.Duration
}

// Engine transcribes images through the Ollama chat API.
type Engine struct {
	client      *api.Client
	model       string
	promptStore driven.PromptStore
}

// New creates an Ollama OCR engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	host := envconfig.Host()
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("ollama: invalid base URL %q: %w", cfg.BaseURL, err)
		}
		host = u
	}

	return &Engine{
		client: api.NewClient(host, &http.Client{Timeout: cfg.Timeout}),
		model:  cfg.Model,
	}, nil
}

// SetPromptStore sets the store the transcription prompt is loaded from.
func (e *Engine) SetPromptStore(store driven.PromptStore) {
	e.promptStore = store
}

func (e *Engine) prompt() string {
	if e.promptStore == nil {
		return defaultOCRPrompt
	}
	p, err := e.promptStore.Load(driven.PromptOCR)
	if err != nil || strings.TrimSpace(p) == "" {
		return defaultOCRPrompt
	}
	return p
}

// ExtractText sends image with the transcription prompt.
func (e *Engine) ExtractText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", nil
	}

	stream := false
	req := &api.ChatRequest{
		Model: e.model,
		Messages: []api.Message{{
			Role:    "user",
			Content: e.prompt(),
			Images:  []api.ImageData{image},
		}},
		Stream:  &stream,
		Options: map[string]any{"temperature": 0},
	}

	var out strings.Builder
	err := e.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		out.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: ollama: %w", domain.ErrOCRFailure, err)
	}

	return strings.TrimSpace(out.String()), nil
}

// Name identifies the engine.
func (e *Engine) Name() string {
	return "ollama:" + e.model
}
