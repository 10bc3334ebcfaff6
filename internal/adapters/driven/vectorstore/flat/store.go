// Package flat stores one brute-force cosine index per uploaded file.
//
// Each index lives in <root>/<file_id>/ as index.bin (a small header
// followed by little-endian float32 vectors) and chunks.json (the chunk
// texts, their metadata and the embedding model). A build writes both
// files into a hidden temporary directory and renames it into place, so
// a reader never sees a half-written index.
//
// Index files are trusted: they are only ever produced by this package.
package flat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

var _ driven.IndexStore = (*Store)(nil)

// DefaultBatchSize is the number of chunks sent per embedding request.
const DefaultBatchSize = 64

// Store is a driven.IndexStore on the local filesystem.
type Store struct {
	root      string
	embedder  driven.EmbeddingService
	limiter   *RateLimiter
	batchSize int
	timeout   time.Duration

	mu    sync.Mutex
	locks map[string]*fileLock
}

// fileLock serialises builds of one file_id. swap is held for writing
// only while the directories are renamed.
type fileLock struct {
	build sync.Mutex
	swap  sync.RWMutex
}

// Option configures a Store.
type Option func(*Store)

// WithRateLimiter throttles embedding requests.
func WithRateLimiter(l *RateLimiter) Option {
	return func(s *Store) { s.limiter = l }
}

// WithBatchSize sets how many chunks are embedded per request.
func WithBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithTimeout bounds each embedding request.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a store rooted at root. The directory is created on the
// first build.
func New(root string, embedder driven.EmbeddingService, opts ...Option) *Store {
	s := &Store{
		root:      root,
		embedder:  embedder,
		batchSize: DefaultBatchSize,
		locks:     make(map[string]*fileLock),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the index root directory.
func (s *Store) Root() string {
	return s.root
}

// Build embeds chunks and replaces the index for fileID.
func (s *Store) Build(
	ctx context.Context, fileID string, chunks []domain.Chunk, metas []domain.ChunkMetadata,
) (*domain.DocumentIndex, error) {
	if err := validateFileID(fileID); err != nil {
		return nil, err
	}
	if len(chunks) != len(metas) {
		return nil, fmt.Errorf("%w: %d chunks but %d metadata entries", domain.ErrInvalidInput, len(chunks), len(metas))
	}
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyContent
	}

	lock := s.lockFor(fileID)
	lock.build.Lock()
	defer lock.build.Unlock()

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedAll(ctx, texts)
	if err != nil {
		return nil, err
	}

	idx := &domain.DocumentIndex{
		FileID:   fileID,
		Chunks:   chunks,
		Metadata: metas,
		Vectors:  vectors,
		Model:    s.embedder.ModelName(),
		BuiltAt:  time.Now().UTC(),
	}

	if err := s.persist(lock, idx); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIndexPersistFailure, fileID, err)
	}

	logger.Debug("flat: built index %s with %d chunks (%d dims)", fileID, len(chunks), len(vectors[0]))
	return idx, nil
}

// Load reads the index for fileID from disk.
func (s *Store) Load(_ context.Context, fileID string) (*domain.DocumentIndex, error) {
	if err := validateFileID(fileID); err != nil {
		return nil, err
	}

	lock := s.lockFor(fileID)
	lock.swap.RLock()
	defer lock.swap.RUnlock()

	dir := filepath.Join(s.root, fileID)
	m, err := readManifest(filepath.Join(dir, chunksFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, fileID)
		}
		return nil, fmt.Errorf("load index %s: %w", fileID, err)
	}

	vectors, err := readVectors(filepath.Join(dir, indexFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, fileID)
		}
		return nil, fmt.Errorf("load index %s: %w", fileID, err)
	}

	if len(vectors) != len(m.Chunks) {
		return nil, fmt.Errorf("load index %s: %w: %d vectors for %d chunks",
			fileID, errCorruptIndex, len(vectors), len(m.Chunks))
	}

	idx := &domain.DocumentIndex{
		FileID:   fileID,
		Chunks:   make([]domain.Chunk, len(m.Chunks)),
		Metadata: make([]domain.ChunkMetadata, len(m.Chunks)),
		Vectors:  vectors,
		Model:    m.Model,
		BuiltAt:  m.BuiltAt,
	}
	for i, rec := range m.Chunks {
		idx.Chunks[i] = domain.Chunk{Text: rec.Text, SourcePage: rec.Metadata.PageOrRow, Extra: rec.Metadata.Extra}
		idx.Metadata[i] = rec.Metadata
	}
	return idx, nil
}

// Search returns the k chunks of fileID closest to query by cosine
// similarity, best first. Ties keep ingest order.
func (s *Store) Search(ctx context.Context, fileID, query string, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		k = domain.DefaultMaxChunks
	}

	idx, err := s.Load(ctx, fileID)
	if err != nil {
		return nil, err
	}

	vecs, err := s.embedBatch(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	q := vecs[0]

	if len(idx.Vectors) > 0 && len(idx.Vectors[0]) != len(q) {
		return nil, fmt.Errorf("%w: index %s has %d dimensions (model %s), query has %d",
			domain.ErrEmbeddingFailure, fileID, len(idx.Vectors[0]), idx.Model, len(q))
	}

	results := make([]domain.RetrievedChunk, len(idx.Chunks))
	for i := range idx.Chunks {
		results[i] = domain.RetrievedChunk{
			Chunk:    idx.Chunks[i],
			Metadata: idx.Metadata[i],
			FileID:   fileID,
			Score:    cosine(q, idx.Vectors[i]),
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// List returns the file_ids with a complete index, sorted.
func (s *Store) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list indexes: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, e.Name(), indexFileName)); err != nil {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the index for fileID.
func (s *Store) Delete(_ context.Context, fileID string) error {
	if err := validateFileID(fileID); err != nil {
		return err
	}

	lock := s.lockFor(fileID)
	lock.build.Lock()
	defer lock.build.Unlock()
	lock.swap.Lock()
	defer lock.swap.Unlock()

	dir := filepath.Join(s.root, fileID)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", domain.ErrIndexNotFound, fileID)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete index %s: %w", fileID, err)
	}
	return nil
}

func (s *Store) persist(lock *fileLock, idx *domain.DocumentIndex) error {
	if err := os.MkdirAll(s.root, 0700); err != nil {
		return err
	}

	tmp := filepath.Join(s.root, ".tmp-"+idx.FileID+"-"+uuid.NewString())
	if err := os.Mkdir(tmp, 0700); err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	if err := writeVectors(filepath.Join(tmp, indexFileName), idx.Vectors); err != nil {
		return err
	}

	m := &manifest{
		FileID:  idx.FileID,
		Model:   idx.Model,
		BuiltAt: idx.BuiltAt,
		Chunks:  make([]chunkRecord, len(idx.Chunks)),
	}
	for i, c := range idx.Chunks {
		m.Chunks[i] = chunkRecord{Text: c.Text, Metadata: idx.Metadata[i]}
	}
	if err := writeManifest(filepath.Join(tmp, chunksFileName), m); err != nil {
		return err
	}

	target := filepath.Join(s.root, idx.FileID)
	old := filepath.Join(s.root, ".old-"+idx.FileID+"-"+uuid.NewString())

	lock.swap.Lock()
	defer lock.swap.Unlock()

	replaced := false
	if err := os.Rename(target, old); err == nil {
		replaced = true
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.Rename(tmp, target); err != nil {
		if replaced {
			_ = os.Rename(old, target)
		}
		return err
	}

	if replaced {
		if err := os.RemoveAll(old); err != nil {
			logger.Warn("flat: could not remove previous index %s: %v", old, err)
		}
	}
	return nil
}

func (s *Store) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		end := min(start+s.batchSize, len(texts))
		batch, err := s.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (s *Store) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrEmbeddingFailure, len(vectors), len(texts))
	}
	return vectors, nil
}

func (s *Store) lockFor(fileID string) *fileLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[fileID]
	if !ok {
		l = &fileLock{}
		s.locks[fileID] = l
	}
	return l
}

// validateFileID rejects ids that would escape the root or collide with
// temporary directories.
func validateFileID(fileID string) error {
	switch {
	case strings.TrimSpace(fileID) == "":
		return fmt.Errorf("%w: empty file_id", domain.ErrInvalidInput)
	case strings.HasPrefix(fileID, "."):
		return fmt.Errorf("%w: file_id %q starts with a dot", domain.ErrInvalidInput, fileID)
	case strings.ContainsAny(fileID, `/\`):
		return fmt.Errorf("%w: file_id %q contains a path separator", domain.ErrInvalidInput, fileID)
	}
	return nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
