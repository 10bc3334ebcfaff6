package mcp

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	resp      *domain.QueryResponse
	err       error
	sessionID string
	req       domain.QueryRequest
}

func (m *mockQueryService) Retrieve(_ context.Context, req domain.QueryRequest) (*domain.RetrievalResult, error) {
	m.req = req
	return &domain.RetrievalResult{}, m.err
}

func (m *mockQueryService) Ask(
	_ context.Context, _ *domain.QuerySession, req domain.QueryRequest,
) (*domain.QuerySession, *domain.QueryResponse, error) {
	m.req = req
	return nil, m.resp, m.err
}

func (m *mockQueryService) AskInSession(
	_ context.Context, sessionID string, req domain.QueryRequest,
) (*domain.QueryResponse, error) {
	m.sessionID = sessionID
	m.req = req
	return m.resp, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result   *domain.UploadResult
	err      error
	ingested string
	fetched  string
}

func (m *mockIngestService) Upload(ctx context.Context, path string) (*domain.UploadResult, error) {
	return m.Ingest(ctx, path)
}

func (m *mockIngestService) Ingest(_ context.Context, path string) (*domain.UploadResult, error) {
	m.ingested = path
	return m.result, m.err
}

func (m *mockIngestService) IngestURL(_ context.Context, rawURL string) (*domain.UploadResult, error) {
	m.fetched = rawURL
	return m.result, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	infos []driving.IndexInfo
	index *domain.DocumentIndex
	err   error
}

func (m *mockIndexService) List(_ context.Context) ([]driving.IndexInfo, error) {
	return m.infos, m.err
}

func (m *mockIndexService) Get(_ context.Context, _ string) (*domain.DocumentIndex, error) {
	return m.index, m.err
}

func (m *mockIndexService) Delete(_ context.Context, _ string) error {
	return m.err
}
