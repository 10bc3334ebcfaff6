package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockProcessor is a test processor that returns predefined chunks.
type mockProcessor struct {
	name   string
	chunks []domain.Chunk
	err    error
}

func (m *mockProcessor) Name() string {
	return m.name
}

func (m *mockProcessor) Process(_ context.Context, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.chunks != nil {
		return m.chunks, nil
	}
	return chunks, nil
}

func TestNewPipeline(t *testing.T) {
	p := NewPipeline()
	if p == nil {
		t.Fatal("expected non-nil pipeline")
	}
	if p.Len() != 0 {
		t.Errorf("expected 0 processors, got %d", p.Len())
	}
}

func TestPipeline_Process_EmptyPipeline(t *testing.T) {
	in := []domain.Chunk{{Text: "a"}}
	out, err := NewPipeline().Process(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("expected chunks to pass through, got %d", len(out))
	}
}

func TestPipeline_Process_Order(t *testing.T) {
	replaced := []domain.Chunk{{Text: "replaced"}}
	p := NewPipeline(&mockProcessor{name: "first", chunks: replaced}, &mockProcessor{name: "second"})

	out, err := p.Process(context.Background(), []domain.Chunk{{Text: "orig"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Text != "replaced" {
		t.Errorf("unexpected output: %+v", out)
	}
	if got := p.Names(); len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("unexpected names: %v", got)
	}
}

func TestPipeline_Process_Error(t *testing.T) {
	boom := errors.New("boom")
	p := NewPipeline(&mockProcessor{name: "bad", err: boom})

	_, err := p.Process(context.Background(), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if err.Error() != "processor bad: boom" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestDropBlank(t *testing.T) {
	out, err := (&DropBlank{}).Process(context.Background(), []domain.Chunk{
		{Text: "keep"}, {Text: "\n\t "}, {Text: ""}, {Text: " also "},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0].Text != "keep" || out[1].Text != " also " {
		t.Errorf("unexpected output: %+v", out)
	}
}

func TestPageFill(t *testing.T) {
	out, err := (&PageFill{}).Process(context.Background(), []domain.Chunk{
		{Text: "a"}, {Text: "b", SourcePage: 9}, {Text: "c"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].SourcePage != 1 || out[1].SourcePage != 9 || out[2].SourcePage != 3 {
		t.Errorf("unexpected pages: %+v", out)
	}
}

func TestNewDefaultPipeline(t *testing.T) {
	p := NewDefaultPipeline()
	names := p.Names()
	if len(names) != len(DefaultProcessors) {
		t.Fatalf("expected %d processors, got %d", len(DefaultProcessors), len(names))
	}
	for i, n := range DefaultProcessors {
		if names[i] != n {
			t.Errorf("processor %d: expected %q, got %q", i, n, names[i])
		}
	}
}
