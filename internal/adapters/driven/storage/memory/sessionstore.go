package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore keeps sessions in process memory. Sessions are lost on
// restart.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.QuerySession
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.QuerySession)}
}

// Get returns a copy of the stored session.
func (s *SessionStore) Get(_ context.Context, id string) (*domain.QuerySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	session.History = session.Turns()
	return &session, nil
}

// Save stores a copy of session.
func (s *SessionStore) Save(_ context.Context, session *domain.QuerySession) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidInput
	}
	stored := *session
	stored.History = session.Turns()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = stored
	return nil
}

// Delete removes the session.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
