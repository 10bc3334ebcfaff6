package tui

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// MockQueryService implements driving.QueryService for testing.
type MockQueryService struct {
	mu       sync.Mutex
	Answer   string
	Err      error
	Requests []domain.QueryRequest
}

func (m *MockQueryService) Retrieve(context.Context, domain.QueryRequest) (*domain.RetrievalResult, error) {
	return nil, m.Err
}

func (m *MockQueryService) Ask(
	_ context.Context, session *domain.QuerySession, req domain.QueryRequest,
) (*domain.QuerySession, *domain.QueryResponse, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.Err != nil {
		return session, nil, m.Err
	}
	if session == nil {
		session = domain.NewQuerySession("tui-session")
	}
	session.Record(req.Question, m.Answer)
	return session, &domain.QueryResponse{Answer: m.Answer, SessionID: session.ID}, nil
}

func (m *MockQueryService) AskInSession(
	ctx context.Context, _ string, req domain.QueryRequest,
) (*domain.QueryResponse, error) {
	_, resp, err := m.Ask(ctx, nil, req)
	return resp, err
}

// MockIndexService implements driving.IndexService for testing.
type MockIndexService struct {
	Infos []driving.IndexInfo
	Err   error
}

func (m *MockIndexService) List(context.Context) ([]driving.IndexInfo, error) {
	return m.Infos, m.Err
}

func (m *MockIndexService) Get(context.Context, string) (*domain.DocumentIndex, error) {
	return nil, m.Err
}

func (m *MockIndexService) Delete(context.Context, string) error {
	return m.Err
}

var (
	_ driving.QueryService = (*MockQueryService)(nil)
	_ driving.IndexService = (*MockIndexService)(nil)
)

func TestNewPorts(t *testing.T) {
	query := &MockQueryService{}
	index := &MockIndexService{}

	ports := NewPorts(query, index)

	assert.Same(t, query, ports.Query)
	assert.Same(t, index, ports.Index)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		err   error
	}{
		{name: "query and index", ports: NewPorts(&MockQueryService{}, &MockIndexService{})},
		{name: "index optional", ports: NewPorts(&MockQueryService{}, nil)},
		{name: "missing query", ports: NewPorts(nil, &MockIndexService{}), err: ErrMissingQueryService},
		{name: "nil ports", ports: nil, err: ErrMissingQueryService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
