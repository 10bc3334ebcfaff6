package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrOCRUnavailable indicates no OCR engine is configured.
	// Image uploads and image questions are rejected without one.
	ErrOCRUnavailable = errors.New("OCR engine unavailable")

	// Ingestion Errors.

	// ErrUnsupportedFileType indicates the file extension has no extractor.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrExtractionIO indicates the source file could not be read or parsed.
	ErrExtractionIO = errors.New("extraction failed")

	// ErrEmptyContent indicates extraction produced no text.
	ErrEmptyContent = errors.New("no text content extracted")

	// ErrInvalidChunkSize indicates a chunk size that is not positive.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")

	// ErrInvalidChunkOverlap indicates an overlap that is not smaller than the chunk size.
	ErrInvalidChunkOverlap = errors.New("chunk overlap must be smaller than chunk size")

	// Index Errors.

	// ErrEmbeddingFailure indicates the embedding provider failed during a build or query.
	ErrEmbeddingFailure = errors.New("embedding failed")

	// ErrIndexPersistFailure indicates an index could not be written to disk.
	ErrIndexPersistFailure = errors.New("failed to persist index")

	// ErrIndexNotFound indicates no index exists for a file_id.
	ErrIndexNotFound = errors.New("index not found")

	// Query Errors.

	// ErrNoDocumentsIndexed indicates there was nothing to search.
	ErrNoDocumentsIndexed = errors.New("no documents found")

	// ErrImageDecodeFailure indicates the question image was not valid base64.
	ErrImageDecodeFailure = errors.New("failed to decode image")

	// ErrOCRFailure indicates the OCR engine failed on an image.
	ErrOCRFailure = errors.New("OCR failed")

	// ErrLLMFailure indicates the language model call failed.
	ErrLLMFailure = errors.New("LLM call failed")
)

// UnsupportedFileTypeError reports the extension that could not be mapped
// to a FileKind. It matches ErrUnsupportedFileType with errors.Is.
type UnsupportedFileTypeError struct {
	Ext string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %s", e.Ext)
}

// Unwrap returns ErrUnsupportedFileType.
func (e *UnsupportedFileTypeError) Unwrap() error {
	return ErrUnsupportedFileType
}
