// Package tesseract provides an OCR engine backed by the tesseract CLI.
package tesseract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.OCREngine = (*Engine)(nil)

// DefaultLanguage is the tesseract language pack used when none is set.
const DefaultLanguage = "eng"

// ErrTesseractNotFound indicates the tesseract binary is not on PATH.
var ErrTesseractNotFound = errors.New("tesseract not found in PATH")

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// Engine runs tesseract on a temporary copy of each image.
type Engine struct {
	runner   CommandRunner
	language string
}

// New creates a tesseract engine for the given language (e.g. "eng+ben").
func New(language string) *Engine {
	return NewWithRunner(execRunner{}, language)
}

// NewWithRunner creates an engine with a custom command runner.
func NewWithRunner(runner CommandRunner, language string) *Engine {
	if language == "" {
		language = DefaultLanguage
	}
	return &Engine{runner: runner, language: language}
}

// CheckAvailable reports whether the tesseract binary can be found.
func CheckAvailable() error {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return ErrTesseractNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing tesseract.
func InstallInstructions() string {
	return `tesseract is required for image OCR.

  macOS:          brew install tesseract tesseract-lang
  Debian/Ubuntu:  sudo apt install tesseract-ocr tesseract-ocr-ben
  Fedora:         sudo dnf install tesseract tesseract-langpack-ben
  Windows:        https://github.com/UB-Mannheim/tesseract/wiki`
}

// ExtractText writes image to a temp file and reads tesseract's stdout.
func (e *Engine) ExtractText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", nil
	}

	f, err := os.CreateTemp("", "docqa-ocr-*")
	if err != nil {
		return "", fmt.Errorf("%w: tesseract: %w", domain.ErrOCRFailure, err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(image); err != nil {
		f.Close()
		return "", fmt.Errorf("%w: tesseract: %w", domain.ErrOCRFailure, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: tesseract: %w", domain.ErrOCRFailure, err)
	}

	out, err := e.runner.Run(ctx, "tesseract", f.Name(), "stdout", "-l", e.language)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %w", domain.ErrOCRUnavailable, ErrTesseractNotFound)
		}
		return "", fmt.Errorf("%w: tesseract: %w", domain.ErrOCRFailure, err)
	}

	return strings.TrimSpace(string(out)), nil
}

// Name identifies the engine.
func (e *Engine) Name() string {
	return "tesseract"
}
