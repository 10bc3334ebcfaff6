package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// SessionStore persists conversation history between requests.
type SessionStore interface {
	// Get returns the session, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.QuerySession, error)

	// Save stores the session, replacing any previous version.
	Save(ctx context.Context, session *domain.QuerySession) error

	// Delete removes the session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}
