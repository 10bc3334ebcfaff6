package csv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Extractor = (*Extractor)(nil)
	assert.Equal(t, domain.FileKindCSV, New().Kind())
}

func TestPeriodToQuarter(t *testing.T) {
	tests := []struct {
		period   string
		expected string
	}{
		{"2023.03", "2023 Q1"},
		{"2023.06", "2023 Q2"},
		{"2023.09", "2023 Q3"},
		{"2023.12", "2023 Q4"},
		{"2023.11", "2023 11"},
		{"2023", "2023"},
		{"2023.06.01", "2023.06.01"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.period, func(t *testing.T) {
			assert.Equal(t, tc.expected, PeriodToQuarter(tc.period))
		})
	}
}

func TestExtract_Rows(t *testing.T) {
	path := writeCSV(t, "Period,Revenue\n2023.06,100\n2023.11,250\n")

	chunks, err := New().Extract(context.Background(), path, domain.ChunkOptions{})
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "2023.06,100\nPeriod_as_quarter: 2023 Q2", chunks[0].Text)
	assert.Equal(t, 1, chunks[0].SourcePage)
	assert.Equal(t, "2023.06", chunks[0].Extra[ExtraPeriod])
	assert.Equal(t, "2023 Q2", chunks[0].Extra[ExtraQuarter])

	assert.Equal(t, "2023.11,250\nPeriod_as_quarter: 2023 11", chunks[1].Text)
	assert.Equal(t, 2, chunks[1].SourcePage)
}

func TestExtract_RowsWithoutPeriodColumn(t *testing.T) {
	path := writeCSV(t, "Name,Role\nRahman,Supervisor\n")

	chunks, err := New().Extract(context.Background(), path, domain.ChunkOptions{})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Rahman,Supervisor", chunks[0].Text)
	assert.Nil(t, chunks[0].Extra)
}

func TestExtract_RowsEmptyPeriod(t *testing.T) {
	path := writeCSV(t, "Period,Revenue\n,100\n")

	chunks, err := New().Extract(context.Background(), path, domain.ChunkOptions{})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, ",100", chunks[0].Text)
	assert.Equal(t, "", chunks[0].Extra[ExtraQuarter])
}

func TestExtract_HeaderOnly(t *testing.T) {
	path := writeCSV(t, "Period,Revenue\n")

	chunks, err := New().Extract(context.Background(), path, domain.ChunkOptions{})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestExtract_Table(t *testing.T) {
	path := writeCSV(t, "Name,Role\nRahman,Supervisor\nAkter,Internal member\n")

	chunks, err := NewWithMode(ModeTable).Extract(context.Background(), path, domain.ChunkOptions{Size: 1000})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Name    Role\nRahman  Supervisor\nAkter   Internal member", chunks[0].Text)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), "/nonexistent/sales.csv", domain.ChunkOptions{})
	assert.ErrorIs(t, err, domain.ErrExtractionIO)
}
