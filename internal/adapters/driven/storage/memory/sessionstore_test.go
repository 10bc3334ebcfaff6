package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestSessionStore_SaveAndGet(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	session := domain.NewQuerySession("abc")
	session.Record("q1", "a1")
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
	assert.Equal(t, "a1", got.History[0].Answer)
}

func TestSessionStore_CopiesOnSaveAndGet(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	session := domain.NewQuerySession("abc")
	session.Record("q1", "a1")
	require.NoError(t, store.Save(ctx, session))

	session.Record("q2", "a2")
	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len(), "caller mutation leaked into the store")

	got.History[0].Answer = "changed"
	again, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "a1", again.History[0].Answer)
}

func TestSessionStore_NotFoundAndDelete(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Save(ctx, domain.NewQuerySession("x")))
	require.NoError(t, store.Delete(ctx, "x"))
	_, err = store.Get(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "x"))
}

func TestSessionStore_SaveRejectsMissingID(t *testing.T) {
	store := NewSessionStore()

	assert.ErrorIs(t, store.Save(context.Background(), &domain.QuerySession{}), domain.ErrInvalidInput)
}
