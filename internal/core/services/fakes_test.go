package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// fakeIndexStore serves canned search results per file_id.
type fakeIndexStore struct {
	mu       sync.Mutex
	results  map[string][]domain.RetrievedChunk
	errs     map[string]error
	indexes  map[string]*domain.DocumentIndex
	listErr  error
	searched []string
	depths   []int
}

func newFakeIndexStore() *fakeIndexStore {
	return &fakeIndexStore{
		results: make(map[string][]domain.RetrievedChunk),
		errs:    make(map[string]error),
		indexes: make(map[string]*domain.DocumentIndex),
	}
}

// add registers n chunks for fileID with texts "<fileID>-<i>".
func (f *fakeIndexStore) add(fileID string, texts ...string) {
	hits := make([]domain.RetrievedChunk, len(texts))
	for i, text := range texts {
		hits[i] = domain.RetrievedChunk{
			Chunk:    domain.Chunk{Text: text, SourcePage: i + 1},
			Metadata: domain.ChunkMetadata{Filename: fileID + ".pdf", ChunkIndex: i, PageOrRow: i + 1, FileType: ".pdf"},
			FileID:   fileID,
			Score:    1 - float64(i)/100,
		}
	}
	f.results[fileID] = hits
}

func (f *fakeIndexStore) Build(
	_ context.Context, fileID string, chunks []domain.Chunk, metas []domain.ChunkMetadata,
) (*domain.DocumentIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[fileID]; err != nil {
		return nil, err
	}
	idx := &domain.DocumentIndex{FileID: fileID, Chunks: chunks, Metadata: metas, Model: "fake"}
	f.indexes[fileID] = idx
	return idx, nil
}

func (f *fakeIndexStore) Load(_ context.Context, fileID string) (*domain.DocumentIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[fileID]; err != nil {
		return nil, err
	}
	idx, ok := f.indexes[fileID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, fileID)
	}
	return idx, nil
}

func (f *fakeIndexStore) Search(_ context.Context, fileID, _ string, k int) ([]domain.RetrievedChunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searched = append(f.searched, fileID)
	f.depths = append(f.depths, k)
	if err := f.errs[fileID]; err != nil {
		return nil, err
	}
	hits, ok := f.results[fileID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, fileID)
	}
	out := make([]domain.RetrievedChunk, min(k, len(hits)))
	copy(out, hits)
	return out, nil
}

func (f *fakeIndexStore) List(_ context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	seen := make(map[string]bool)
	var ids []string
	for id := range f.results {
		seen[id] = true
		ids = append(ids, id)
	}
	for id := range f.indexes {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (f *fakeIndexStore) Delete(_ context.Context, fileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.indexes[fileID]; !ok {
		return domain.ErrIndexNotFound
	}
	delete(f.indexes, fileID)
	return nil
}

// fakeOCR returns fixed text.
type fakeOCR struct {
	text  string
	err   error
	input []byte
}

func (f *fakeOCR) ExtractText(_ context.Context, image []byte) (string, error) {
	f.input = image
	return f.text, f.err
}

func (f *fakeOCR) Name() string { return "fake-ocr" }

// fakeLLM records the messages it was sent.
type fakeLLM struct {
	answer   string
	err      error
	messages []driven.ChatMessage
	opts     driven.ChatOptions
	deadline bool
}

func (f *fakeLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	f.messages = messages
	f.opts = opts
	_, f.deadline = ctx.Deadline()
	return f.answer, f.err
}

func (f *fakeLLM) ModelName() string         { return "fake-llm" }
func (f *fakeLLM) Ping(context.Context) error { return nil }
func (f *fakeLLM) Close() error               { return nil }

// fakePrompts serves the answer template used in tests.
type fakePrompts struct {
	err error
}

const testAnswerTemplate = "CONTEXT:\n%s\nQUESTION: %s"

func (f *fakePrompts) Load(name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if name == driven.PromptAnswer {
		return testAnswerTemplate, nil
	}
	return "", fmt.Errorf("unknown prompt %s", name)
}

func (f *fakePrompts) Reload() {}
