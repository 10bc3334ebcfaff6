package httpapi

import (
	"context"
	"os"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

type mockQueryService struct {
	mu        sync.Mutex
	answer    string
	err       error
	sessionID string
	reqs      []domain.QueryRequest
	sessions  []*domain.QuerySession
}

func (m *mockQueryService) Retrieve(context.Context, domain.QueryRequest) (*domain.RetrievalResult, error) {
	return &domain.RetrievalResult{}, m.err
}

func (m *mockQueryService) Ask(
	_ context.Context, session *domain.QuerySession, req domain.QueryRequest,
) (*domain.QuerySession, *domain.QueryResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reqs = append(m.reqs, req)
	m.sessions = append(m.sessions, session)
	if m.err != nil {
		return nil, nil, m.err
	}

	next := domain.NewQuerySession("ws-session")
	if session != nil {
		next.ID = session.ID
		next.History = session.Turns()
	}
	next.Record(req.Question, m.answer)
	return next, &domain.QueryResponse{
		Answer:    m.answer,
		Sources:   []domain.Source{{Filename: "thesis.pdf", Page: 2}},
		SessionID: next.ID,
	}, nil
}

func (m *mockQueryService) AskInSession(
	_ context.Context, sessionID string, req domain.QueryRequest,
) (*domain.QueryResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionID = sessionID
	m.reqs = append(m.reqs, req)
	if m.err != nil {
		return nil, m.err
	}
	if sessionID == "" {
		sessionID = "new-session"
	}
	return &domain.QueryResponse{
		Answer:    m.answer,
		Context:   "ctx",
		Sources:   []domain.Source{{Filename: "thesis.pdf", Page: 2, Icon: "📄"}},
		SessionID: sessionID,
	}, nil
}

type mockIngestService struct {
	err      error
	path     string
	content  string
	existed  bool
	uploaded int
}

func (m *mockIngestService) Upload(_ context.Context, path string) (*domain.UploadResult, error) {
	m.path = path
	m.uploaded++
	data, err := os.ReadFile(path)
	m.existed = err == nil
	m.content = string(data)
	if m.err != nil {
		return nil, m.err
	}
	os.Remove(path)
	return &domain.UploadResult{
		FileID:   domain.FileIDFromPath(path),
		Filename: "report.txt",
		FileType: ".txt",
		Icon:     domain.FileKindTXT.Icon(),
		Chunks:   2,
	}, nil
}

func (m *mockIngestService) Ingest(ctx context.Context, path string) (*domain.UploadResult, error) {
	return m.Upload(ctx, path)
}

func (m *mockIngestService) IngestURL(context.Context, string) (*domain.UploadResult, error) {
	return nil, domain.ErrInvalidInput
}

type mockIndexService struct {
	infos   []driving.IndexInfo
	err     error
	deleted string
}

func (m *mockIndexService) List(context.Context) ([]driving.IndexInfo, error) {
	return m.infos, m.err
}

func (m *mockIndexService) Get(context.Context, string) (*domain.DocumentIndex, error) {
	return nil, m.err
}

func (m *mockIndexService) Delete(_ context.Context, fileID string) error {
	m.deleted = fileID
	return m.err
}
