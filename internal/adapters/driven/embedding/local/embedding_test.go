package local

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(0)
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, ModelName, svc.ModelName())

	custom := NewEmbeddingService(64)
	assert.Equal(t, 64, custom.Dimensions())
	assert.Equal(t, "hashing-64", custom.ModelName())
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"who", "is", "the", "supervisor", "2024"}, Tokenize("Who is the Supervisor? (2024)"))
	assert.Equal(t, []string{"তত্ত্বাবধায়ক", "কে"}, Tokenize("তত্ত্বাবধায়ক কে?"))
	assert.Empty(t, Tokenize("  ?! "))
}

func TestEmbed_UnitLength(t *testing.T) {
	svc := NewEmbeddingService(0)
	vec, err := svc.Embed(context.Background(), "The internal members of the thesis committee")
	require.NoError(t, err)
	require.Len(t, vec, DefaultDimensions)
	assert.InDelta(t, 1.0, math.Sqrt(dot(vec, vec)), 1e-5)
}

func TestEmbed_EmptyTextIsZeroVector(t *testing.T) {
	vec, err := NewEmbeddingService(0).Embed(context.Background(), "   ")
	require.NoError(t, err)
	assert.Zero(t, dot(vec, vec))
}

func TestEmbed_Deterministic(t *testing.T) {
	svc := NewEmbeddingService(0)
	a, err := svc.Embed(context.Background(), "quarterly revenue")
	require.NoError(t, err)
	b, err := svc.Embed(context.Background(), "Quarterly Revenue")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmbed_SimilarTextScoresHigher(t *testing.T) {
	svc := NewEmbeddingService(0)
	ctx := context.Background()

	q, _ := svc.Embed(ctx, "who is the supervisor")
	near, _ := svc.Embed(ctx, "Supervisor: Dr. Rahman is the supervisor of this thesis")
	far, _ := svc.Embed(ctx, "Revenue grew in the third quarter of 2023")

	assert.Greater(t, dot(q, near), dot(q, far))
}

func TestEmbed_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEmbeddingService(0).Embed(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmbedBatch(t *testing.T) {
	svc := NewEmbeddingService(32)
	vecs, err := svc.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	single, _ := svc.Embed(context.Background(), "two")
	assert.Equal(t, single, vecs[1])
}

func TestPingAndClose(t *testing.T) {
	svc := NewEmbeddingService(0)
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}
