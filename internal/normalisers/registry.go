package normalisers

import (
	"fmt"
	"sort"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/normalisers/csv"
	"github.com/custodia-labs/docqa/internal/normalisers/docx"
	"github.com/custodia-labs/docqa/internal/normalisers/image"
	"github.com/custodia-labs/docqa/internal/normalisers/pdf"
	"github.com/custodia-labs/docqa/internal/normalisers/plaintext"
	"github.com/custodia-labs/docqa/internal/normalisers/sqlitedb"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps file kinds to extractors.
type Registry struct {
	extractors map[domain.FileKind]driven.Extractor
}

// NewRegistry creates a registry holding the given extractors.
// A later extractor for the same kind replaces an earlier one.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{extractors: make(map[domain.FileKind]driven.Extractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// NewDefaultRegistry registers an extractor for every domain.FileKind.
// ocr may be nil; image uploads then fail with domain.ErrOCRUnavailable.
// A positive ocrTimeout bounds each OCR call during extraction.
func NewDefaultRegistry(ocr driven.OCREngine, ocrTimeout time.Duration) *Registry {
	return NewRegistry(
		pdf.New(),
		docx.New(),
		plaintext.New(),
		csv.New(),
		image.New(ocr, image.WithTimeout(ocrTimeout)),
		sqlitedb.New(),
	)
}

// Register adds or replaces the extractor for its kind.
func (r *Registry) Register(e driven.Extractor) {
	r.extractors[e.Kind()] = e
}

// For returns the extractor for kind.
func (r *Registry) For(kind domain.FileKind) (driven.Extractor, error) {
	e, ok := r.extractors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no extractor for %s", domain.ErrUnsupportedFileType, kind)
	}
	return e, nil
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []domain.FileKind {
	kinds := make([]domain.FileKind, 0, len(r.extractors))
	for k := range r.extractors {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
