package domain

import "time"

// Turn is one question and answer exchange.
type Turn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

// QuerySession holds the conversation history for multi-turn questions.
// History is append-only and grows without bound.
type QuerySession struct {
	// ID identifies the session across requests.
	ID string `json:"id"`

	// History lists prior turns, oldest first.
	History []Turn `json:"history"`

	// CreatedAt is when the session started.
	CreatedAt time.Time `json:"created_at"`
}

// NewQuerySession returns an empty session.
func NewQuerySession(id string) *QuerySession {
	return &QuerySession{ID: id, CreatedAt: time.Now()}
}

// Record appends a completed turn.
func (s *QuerySession) Record(question, answer string) {
	s.History = append(s.History, Turn{
		Question: question,
		Answer:   answer,
		AskedAt:  time.Now(),
	})
}

// Turns returns a copy of the history.
func (s *QuerySession) Turns() []Turn {
	if s == nil || len(s.History) == 0 {
		return nil
	}
	out := make([]Turn, len(s.History))
	copy(out, s.History)
	return out
}

// Len returns the number of recorded turns.
func (s *QuerySession) Len() int {
	if s == nil {
		return 0
	}
	return len(s.History)
}
