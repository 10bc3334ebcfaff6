// Package local provides an offline embedding service that needs no model
// download and no network access.
//
// Text is tokenised into letter, mark and digit runs, lower-cased and
// hashed into a fixed number of buckets. Bucket counts are damped with a
// sublinear term frequency and the vector is L2 normalised, so cosine
// similarity reduces to a dot product.
package local

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions is the number of hash buckets.
const DefaultDimensions = 512

// ModelName is recorded with every index built by this service.
const ModelName = "hashing-512"

// tokenPattern matches runs of letters, combining marks and digits. Marks
// are included so Bengali vowel signs stay attached to their consonants.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}]+`)

// EmbeddingService hashes tokens into a fixed-size vector.
type EmbeddingService struct {
	dimensions int
	model      string
}

// NewEmbeddingService creates a hashing embedder with dims buckets.
// A non-positive dims selects DefaultDimensions.
func NewEmbeddingService(dims int) *EmbeddingService {
	model := ModelName
	if dims <= 0 {
		dims = DefaultDimensions
	} else if dims != DefaultDimensions {
		model = "hashing-" + strconv.Itoa(dims)
	}
	return &EmbeddingService{dimensions: dims, model: model}
}

// Tokenize splits text into lower-cased tokens.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Embed hashes the tokens of text into a unit vector. Text without tokens
// yields the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make([]float64, s.dimensions)
	for _, tok := range Tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		counts[int(h.Sum32()%uint32(s.dimensions))]++
	}

	var norm float64
	for i, c := range counts {
		if c > 0 {
			counts[i] = 1 + math.Log(c)
			norm += counts[i] * counts[i]
		}
	}

	vec := make([]float32, s.dimensions)
	if norm == 0 {
		return vec, nil
	}
	inv := 1 / math.Sqrt(norm)
	for i, c := range counts {
		vec[i] = float32(c * inv)
	}
	return vec, nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the number of hash buckets.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the model identifier stored with each index.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (s *EmbeddingService) Close() error {
	return nil
}
