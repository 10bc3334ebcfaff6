// Package gemini provides an OCR engine backed by a Gemini vision model.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

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
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 60 * time.Second
)

const defaultOCRPrompt = `Extract all the text in this image. Preserve the original language
(English or Bengali) and the reading order. Reply with the text only.`

// Config holds configuration for the Gemini OCR engine.
type Config struct {
	// APIKey is the Google AI Studio key (required).
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model is a multimodal model (default: gemini-2.5-flash).
	Model string

	// Timeout bounds each request (default: 60s).
	Timeout time.Duration
}

// Engine sends images inline to GenerateContent.
type Engine struct {
	client      *genai.Client
	model       string
	promptStore driven.PromptStore
}

// New creates a Gemini OCR engine.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini: API key is required", domain.ErrOCRUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to initialise client: %w", err)
	}
	return &Engine{client: client, model: cfg.Model}, nil
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

// ImageContent builds the single user turn carrying image and prompt.
func ImageContent(image []byte, prompt string) *genai.Content {
	return &genai.Content{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			genai.NewPartFromBytes(image, http.DetectContentType(image)),
			genai.NewPartFromText(prompt),
		},
	}
}

// ExtractText asks the model to transcribe image.
func (e *Engine) ExtractText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", nil
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.model,
		[]*genai.Content{ImageContent(image, e.prompt())},
		&genai.GenerateContentConfig{Temperature: genai.Ptr(float32(0))},
	)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %w", domain.ErrOCRFailure, err)
	}

	var out strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil {
				out.WriteString(part.Text)
			}
		}
	}
	return strings.TrimSpace(out.String()), nil
}

// Name identifies the engine.
func (e *Engine) Name() string {
	return "gemini:" + e.model
}
