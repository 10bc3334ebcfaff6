package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// RoleKeywords are matched against the lower-cased question in this
// order; the first hit selects the filter. "internal member" also
// matches plural questions and chunks, so the plural form never selects.
var RoleKeywords = []string{
	"internal member",
	"internal members",
	"supervisor",
	"external member",
	"examiner",
}

// RetrievalService assembles the context for a question from the
// per-file indexes and an optional question image.
type RetrievalService struct {
	index      driven.IndexStore
	ocr        driven.OCREngine
	ocrTimeout time.Duration
	maxChunks  int
}

// NewRetrievalService creates a retrieval service. ocr may be nil, in
// which case questions with images fail with domain.ErrOCRUnavailable.
func NewRetrievalService(index driven.IndexStore, ocr driven.OCREngine, ocrTimeout time.Duration) *RetrievalService {
	return &RetrievalService{index: index, ocr: ocr, ocrTimeout: ocrTimeout, maxChunks: domain.DefaultMaxChunks}
}

// WithMaxChunks sets the context cap used when a request leaves
// MaxChunks at zero. Non-positive values keep the current cap.
func (s *RetrievalService) WithMaxChunks(n int) *RetrievalService {
	if n > 0 {
		s.maxChunks = n
	}
	return s
}

// MaxChunks returns the default context cap.
func (s *RetrievalService) MaxChunks() int {
	return s.maxChunks
}

// Assemble searches each requested index for the question, keeps the
// first maxChunks results in request order and builds the context.
// There is no re-ranking across indexes.
func (s *RetrievalService) Assemble(
	ctx context.Context, question string, fileIDs []string, imageBase64 string, maxChunks int,
) (*domain.RetrievalResult, error) {
	if maxChunks <= 0 {
		maxChunks = s.maxChunks
	}
	chunks, err := s.gather(ctx, question, fileIDs, maxChunks, maxChunks)
	if err != nil {
		return nil, err
	}
	return s.build(ctx, chunks, imageBase64)
}

// AssembleFiltered is the keyword mode: it gathers at least
// KeywordMaxChunks candidates, narrows them with FilterByKeyword and
// then caps the result at maxChunks.
func (s *RetrievalService) AssembleFiltered(
	ctx context.Context, question string, fileIDs []string, imageBase64 string, maxChunks int,
) (*domain.RetrievalResult, error) {
	if maxChunks <= 0 {
		maxChunks = s.maxChunks
	}
	depth := max(maxChunks, domain.KeywordMaxChunks)
	chunks, err := s.gather(ctx, question, fileIDs, depth, depth)
	if err != nil {
		return nil, err
	}
	chunks = FilterByKeyword(question, chunks)
	if len(chunks) > maxChunks {
		chunks = chunks[:maxChunks]
	}
	return s.build(ctx, chunks, imageBase64)
}

// Retrieve runs Assemble or AssembleFiltered for a request.
func (s *RetrievalService) Retrieve(ctx context.Context, req domain.QueryRequest) (*domain.RetrievalResult, error) {
	if req.KeywordFilter {
		return s.AssembleFiltered(ctx, req.Question, req.FileIDs, req.ImageBase64, req.MaxChunks)
	}
	return s.Assemble(ctx, req.Question, req.FileIDs, req.ImageBase64, req.MaxChunks)
}

func (s *RetrievalService) gather(
	ctx context.Context, question string, fileIDs []string, depth, limit int,
) ([]domain.RetrievedChunk, error) {
	logger.Section("Retrieval")

	if len(fileIDs) == 0 {
		ids, err := s.index.List(ctx)
		if err != nil {
			return nil, err
		}
		fileIDs = ids
	}
	if len(fileIDs) == 0 {
		return nil, domain.ErrNoDocumentsIndexed
	}
	logger.Debug("Searching %d indexes (depth %d, limit %d)", len(fileIDs), depth, limit)

	return collectSearches(ctx, fileIDs, limit, func(ctx context.Context, id string) ([]domain.RetrievedChunk, error) {
		return s.index.Search(ctx, id, question, depth)
	})
}

// collectSearches runs search for each file_id in order and concatenates
// the results until limit chunks are held. A failing index is logged and
// skipped. When every index fails the result wraps
// domain.ErrNoDocumentsIndexed together with the individual errors.
func collectSearches(
	ctx context.Context,
	fileIDs []string,
	limit int,
	search func(ctx context.Context, fileID string) ([]domain.RetrievedChunk, error),
) ([]domain.RetrievedChunk, error) {
	var (
		out       []domain.RetrievedChunk
		errs      []error
		succeeded int
	)

	for _, id := range fileIDs {
		if len(out) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hits, err := search(ctx, id)
		if err != nil {
			logger.Warn("Skipping index %s: %v", id, err)
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		succeeded++
		out = append(out, hits...)
	}

	if succeeded == 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrNoDocumentsIndexed, errors.Join(errs...))
	}

	if len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Icon = domain.IconForExt(out[i].Metadata.FileType)
	}
	return out, nil
}

// FilterByKeyword keeps the chunks that mention the first role keyword
// found in the question. With no keyword in the question, or no chunk
// mentioning it, chunks is returned unchanged.
func FilterByKeyword(question string, chunks []domain.RetrievedChunk) []domain.RetrievedChunk {
	q := strings.ToLower(question)

	keyword := ""
	for _, kw := range RoleKeywords {
		if strings.Contains(q, kw) {
			keyword = kw
			break
		}
	}
	if keyword == "" {
		return chunks
	}

	var kept []domain.RetrievedChunk
	for _, c := range chunks {
		if strings.Contains(strings.ToLower(c.Chunk.Text), keyword) {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		logger.Debug("No chunk mentions %q, keeping all %d", keyword, len(chunks))
		return chunks
	}
	logger.Debug("Keyword %q kept %d of %d chunks", keyword, len(kept), len(chunks))
	return kept
}

func (s *RetrievalService) build(
	ctx context.Context, chunks []domain.RetrievedChunk, imageBase64 string,
) (*domain.RetrievalResult, error) {
	result := &domain.RetrievalResult{Chunks: chunks}

	if strings.TrimSpace(imageBase64) != "" {
		text, err := s.readImage(ctx, imageBase64)
		if err != nil {
			return nil, err
		}
		result.OCRText = text
	}

	parts := make([]string, 0, len(chunks)+1)
	if result.OCRText != "" {
		parts = append(parts, result.OCRText)
	}
	for _, c := range chunks {
		parts = append(parts, c.Chunk.Text)
	}
	result.Context = strings.Join(parts, "\n")

	return result, nil
}

func (s *RetrievalService) readImage(ctx context.Context, imageBase64 string) (string, error) {
	data, err := DecodeImage(imageBase64)
	if err != nil {
		return "", err
	}
	if s.ocr == nil {
		return "", fmt.Errorf("%w: no OCR engine configured", domain.ErrOCRUnavailable)
	}

	if s.ocrTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.ocrTimeout)
		defer cancel()
	}

	text, err := s.ocr.ExtractText(ctx, data)
	if err != nil {
		if errors.Is(err, domain.ErrOCRFailure) || errors.Is(err, domain.ErrOCRUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %s: %w", domain.ErrOCRFailure, s.ocr.Name(), err)
	}
	logger.Debug("OCR (%s) read %d characters", s.ocr.Name(), len(text))
	return strings.TrimSpace(text), nil
}

// DecodeImage decodes standard base64, with or without padding, and
// accepts a data URL prefix such as "data:image/png;base64,".
func DecodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrImageDecodeFailure, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrImageDecodeFailure)
	}
	return data, nil
}
