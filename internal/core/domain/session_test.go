package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuerySession_Record(t *testing.T) {
	s := NewQuerySession("sess-1")
	assert.Equal(t, "sess-1", s.ID)
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.CreatedAt.IsZero())

	s.Record("who is the supervisor?", "Dr. Rahman")
	s.Record("and the examiner?", "Dr. Akter")

	require.Equal(t, 2, s.Len())
	assert.Equal(t, "who is the supervisor?", s.History[0].Question)
	assert.Equal(t, "Dr. Akter", s.History[1].Answer)
	assert.False(t, s.History[1].AskedAt.IsZero())
}

func TestQuerySession_TurnsIsCopy(t *testing.T) {
	s := NewQuerySession("sess-2")
	s.Record("q", "a")

	turns := s.Turns()
	turns[0].Answer = "changed"

	assert.Equal(t, "a", s.History[0].Answer)
}

func TestQuerySession_Nil(t *testing.T) {
	var s *QuerySession
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Turns())
}
