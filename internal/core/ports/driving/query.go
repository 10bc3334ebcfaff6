package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// QueryService answers questions over indexed documents.
type QueryService interface {
	// Retrieve assembles the context for a question without calling the LLM.
	Retrieve(ctx context.Context, req domain.QueryRequest) (*domain.RetrievalResult, error)

	// Ask answers a question within an explicit session and returns the
	// session with the new turn recorded. A nil session starts a new one.
	Ask(ctx context.Context, session *domain.QuerySession, req domain.QueryRequest) (*domain.QuerySession, *domain.QueryResponse, error)

	// AskInSession loads the session by id (creating it when empty or
	// unknown), answers and persists the updated history.
	AskInSession(ctx context.Context, sessionID string, req domain.QueryRequest) (*domain.QueryResponse, error)
}
