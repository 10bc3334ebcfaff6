// Package messages defines the Bubbletea messages exchanged by TUI views.
package messages

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// ViewType identifies the active view.
type ViewType int

const (
	// ViewChat is the question input and transcript.
	ViewChat ViewType = iota
	// ViewIndexes picks which documents the chat searches.
	ViewIndexes
	// ViewHelp lists keybindings.
	ViewHelp
)

// String returns the view name.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewIndexes:
		return "indexes"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged switches the active view.
type ViewChanged struct {
	View ViewType
}

// QuestionAsked is sent when the user submits a question.
type QuestionAsked struct {
	Request domain.QueryRequest
}

// AnswerReceived carries the outcome of one question. Session is the
// updated session on success and nil on failure.
type AnswerReceived struct {
	Question string
	Session  *domain.QuerySession
	Response *domain.QueryResponse
	Err      error
}

// IndexesLoaded carries the indexed documents.
type IndexesLoaded struct {
	Indexes []driving.IndexInfo
	Err     error
}

// ScopeChanged restricts the chat to FileIDs. Empty means all documents.
type ScopeChanged struct {
	FileIDs []string
}

// ErrorOccurred signals an error outside a question.
type ErrorOccurred struct {
	Err error
}

// Quit exits the application.
type Quit struct{}
