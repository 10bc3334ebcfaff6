package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrOCRUnavailable", ErrOCRUnavailable},
		{"ErrUnsupportedFileType", ErrUnsupportedFileType},
		{"ErrExtractionIO", ErrExtractionIO},
		{"ErrEmptyContent", ErrEmptyContent},
		{"ErrInvalidChunkSize", ErrInvalidChunkSize},
		{"ErrInvalidChunkOverlap", ErrInvalidChunkOverlap},
		{"ErrEmbeddingFailure", ErrEmbeddingFailure},
		{"ErrIndexPersistFailure", ErrIndexPersistFailure},
		{"ErrIndexNotFound", ErrIndexNotFound},
		{"ErrNoDocumentsIndexed", ErrNoDocumentsIndexed},
		{"ErrImageDecodeFailure", ErrImageDecodeFailure},
		{"ErrOCRFailure", ErrOCRFailure},
		{"ErrLLMFailure", ErrLLMFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrors_Uniqueness tests that all errors are distinct
func TestErrors_Uniqueness(t *testing.T) {
	allErrors := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrUnsupportedFileType,
		ErrExtractionIO,
		ErrEmptyContent,
		ErrEmbeddingFailure,
		ErrIndexPersistFailure,
		ErrIndexNotFound,
		ErrNoDocumentsIndexed,
		ErrImageDecodeFailure,
		ErrOCRFailure,
		ErrLLMFailure,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j {
				assert.False(t, errors.Is(err1, err2),
					"Error %v should not match error %v", err1, err2)
			}
		}
	}
}

func TestErrNoDocumentsIndexed_Message(t *testing.T) {
	assert.Equal(t, "no documents found", ErrNoDocumentsIndexed.Error())
}

func TestUnsupportedFileTypeError(t *testing.T) {
	err := &UnsupportedFileTypeError{Ext: ".xyz"}

	assert.Equal(t, "unsupported file type: .xyz", err.Error())
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	wrapped := fmt.Errorf("upload report.xyz: %w", err)
	var target *UnsupportedFileTypeError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, ".xyz", target.Ext)
}

// TestErrors_WithWrapping tests error wrapping behavior
func TestErrors_WithWrapping(t *testing.T) {
	wrapped := fmt.Errorf("%w: thesis: disk full", ErrIndexPersistFailure)

	assert.True(t, errors.Is(wrapped, ErrIndexPersistFailure))
	assert.False(t, errors.Is(wrapped, ErrIndexNotFound))
	assert.Contains(t, wrapped.Error(), "failed to persist index")
}
