package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

var _ driving.IngestService = (*IngestService)(nil)

// MaxDownloadBytes caps documents fetched by IngestURL.
const MaxDownloadBytes = 100 << 20

// ChunkSizer picks the chunk window for a file kind.
type ChunkSizer interface {
	OptionsFor(kind domain.FileKind) domain.ChunkOptions
}

// IngestService extracts, chunks and indexes uploaded files.
type IngestService struct {
	extractors driven.ExtractorRegistry
	sizer      ChunkSizer
	pipeline   driven.ChunkPipeline
	index      driven.IndexStore
	httpClient *http.Client
}

// NewIngestService creates an ingest service. pipeline may be nil.
func NewIngestService(
	extractors driven.ExtractorRegistry,
	sizer ChunkSizer,
	pipeline driven.ChunkPipeline,
	index driven.IndexStore,
) *IngestService {
	return &IngestService{
		extractors: extractors,
		sizer:      sizer,
		pipeline:   pipeline,
		index:      index,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// SetHTTPClient replaces the client used by IngestURL.
func (s *IngestService) SetHTTPClient(c *http.Client) {
	s.httpClient = c
}

// Upload indexes the file and then removes it. A failed removal is
// logged and does not fail the upload.
func (s *IngestService) Upload(ctx context.Context, path string) (*domain.UploadResult, error) {
	result, err := s.Ingest(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := os.Remove(path); err != nil {
		logger.Warn("Could not remove uploaded file %s: %v", path, err)
	}
	return result, nil
}

// Ingest indexes the file at path under the file_id derived from its name.
func (s *IngestService) Ingest(ctx context.Context, path string) (*domain.UploadResult, error) {
	logger.Section("Ingest")
	filename := filepath.Base(path)
	logger.Debug("File: %s", path)

	// 1. Resolve the file kind from the extension
	kind, err := domain.FileKindForPath(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtractionIO, filename, err)
	}

	extractor, err := s.extractors.For(kind)
	if err != nil {
		return nil, err
	}

	// 2. Extract page or row tagged chunks
	var opts domain.ChunkOptions
	if s.sizer != nil {
		opts = s.sizer.OptionsFor(kind)
	}
	chunks, err := extractor.Extract(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("Extracted %d chunks from %s (%s)", len(chunks), filename, kind)

	// 3. Post-process
	if s.pipeline != nil {
		chunks, err = s.pipeline.Process(ctx, chunks)
		if err != nil {
			return nil, fmt.Errorf("process chunks: %w", err)
		}
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyContent, filename)
	}

	// 4. Attach provenance
	ext := domain.NormaliseExt(filepath.Ext(filename))
	metas := make([]domain.ChunkMetadata, len(chunks))
	for i, c := range chunks {
		page := c.SourcePage
		if page <= 0 {
			page = i + 1
		}
		metas[i] = domain.ChunkMetadata{
			Filename:   filename,
			ChunkIndex: i,
			PageOrRow:  page,
			FileType:   ext,
			Extra:      c.Extra,
		}
	}

	// 5. Embed and persist, replacing any previous index for this file_id
	fileID := domain.FileIDFromPath(path)
	idx, err := s.index.Build(ctx, fileID, chunks, metas)
	if err != nil {
		return nil, err
	}

	logger.Info("Indexed %s as %s (%d chunks)", filename, fileID, idx.Len())

	return &domain.UploadResult{
		FileID:   fileID,
		Filename: filename,
		FileType: ext,
		Icon:     kind.Icon(),
		Chunks:   idx.Len(),
	}, nil
}

// IngestURL downloads an http(s) document into a temporary directory and
// indexes it. The file name comes from Content-Disposition or the URL path.
func (s *IngestService) IngestURL(ctx context.Context, rawURL string) (*domain.UploadResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an http(s) URL", domain.ErrInvalidInput, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download %s: %w", domain.ErrExtractionIO, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: download %s: status %d", domain.ErrExtractionIO, rawURL, resp.StatusCode)
	}

	filename := downloadName(u, resp.Header.Get("Content-Disposition"))
	if _, err := domain.FileKindForPath(filename); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "docqa-download-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionIO, err)
	}
	defer os.RemoveAll(dir)

	dst := filepath.Join(dir, filename)
	if err := saveBody(dst, resp.Body); err != nil {
		return nil, fmt.Errorf("%w: download %s: %w", domain.ErrExtractionIO, rawURL, err)
	}

	return s.Ingest(ctx, dst)
}

func downloadName(u *url.URL, disposition string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := filepath.Base(params["filename"]); name != "." && name != "/" && name != "" {
				return name
			}
		}
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "download"
	}
	return name
}

func saveBody(dst string, body io.Reader) error {
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	n, err := io.Copy(f, io.LimitReader(body, MaxDownloadBytes+1))
	if err == nil && n > MaxDownloadBytes {
		err = errors.New("document exceeds the download size limit")
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
