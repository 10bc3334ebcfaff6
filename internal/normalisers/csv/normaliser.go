// Package csv extracts chunks from comma-separated files.
//
// Two modes are supported. Row mode (the default) emits one chunk per
// data row and derives a fiscal quarter from a "Period" column. Table mode
// renders the whole file as an aligned table and packs its lines.
package csv

import (
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Mode selects how a CSV file is chunked.
type Mode int

const (
	// ModeRows emits one chunk per data row.
	ModeRows Mode = iota
	// ModeTable packs the lines of an aligned table rendering.
	ModeTable
)

// PeriodColumn is the header whose value is converted to a quarter.
const PeriodColumn = "Period"

// Extra keys set on row chunks.
const (
	ExtraPeriod  = "period"
	ExtraQuarter = "quarter"
)

// Extractor handles CSV documents.
type Extractor struct {
	mode Mode
}

// New creates a row mode CSV extractor.
func New() *Extractor {
	return &Extractor{mode: ModeRows}
}

// NewWithMode creates a CSV extractor using mode.
func NewWithMode(mode Mode) *Extractor {
	return &Extractor{mode: mode}
}

// Kind returns domain.FileKindCSV.
func (e *Extractor) Kind() domain.FileKind {
	return domain.FileKindCSV
}

// Extract reads the file and chunks it according to the extractor's mode.
func (e *Extractor) Extract(_ context.Context, path string, opts domain.ChunkOptions) ([]domain.Chunk, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtractionIO, path, err)
	}

	if e.mode == ModeTable {
		opts = opts.OrDefault(chunker.DefaultChunkSize, chunker.DefaultChunkOverlap)
		return chunker.Lines(renderTable(records), opts.Size, opts.Overlap)
	}
	return rowChunks(records), nil
}

func readRecords(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := stdcsv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

// rowChunks emits one chunk per data row. The header row names the
// columns; when a Period column is present its quarter is appended to the
// text and recorded in Extra.
func rowChunks(records [][]string) []domain.Chunk {
	if len(records) < 2 {
		return nil
	}

	header := records[0]
	periodCol := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), PeriodColumn) {
			periodCol = i
			break
		}
	}

	chunks := make([]domain.Chunk, 0, len(records)-1)
	for i, row := range records[1:] {
		text := strings.Join(row, ",")
		if strings.TrimSpace(strings.ReplaceAll(text, ",", "")) == "" {
			continue
		}

		chunk := domain.Chunk{Text: text, SourcePage: i + 1}
		if periodCol >= 0 {
			period := ""
			if periodCol < len(row) {
				period = strings.TrimSpace(row[periodCol])
			}
			quarter := PeriodToQuarter(period)
			if quarter != "" {
				chunk.Text += "\nPeriod_as_quarter: " + quarter
			}
			chunk.Extra = map[string]string{
				ExtraPeriod:  period,
				ExtraQuarter: quarter,
			}
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

var quarters = map[string]string{
	"03": "Q1",
	"06": "Q2",
	"09": "Q3",
	"12": "Q4",
}

// PeriodToQuarter converts a "YYYY.MM" period to "YYYY Qn" for quarter-end
// months and "YYYY MM" otherwise. Periods that are not exactly two
// dot-separated parts are returned unchanged.
func PeriodToQuarter(period string) string {
	if period == "" {
		return ""
	}
	parts := strings.Split(period, ".")
	if len(parts) != 2 {
		return period
	}
	year, month := parts[0], parts[1]
	if q, ok := quarters[month]; ok {
		month = q
	}
	return year + " " + month
}

// renderTable lays the records out as aligned columns, one line per record.
func renderTable(records [][]string) []string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.TabIndent)
	for _, rec := range records {
		fmt.Fprintln(tw, strings.Join(rec, "\t"))
	}
	tw.Flush()

	lines := strings.Split(sb.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimRight(line, " "); line != "" {
			out = append(out, line)
		}
	}
	return out
}
