package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadCmd_IngestsAndKeepsFiles(t *testing.T) {
	ingest := &mockIngestService{}
	setupTestServices(t, Services{Ingest: ingest})
	dir := t.TempDir()
	a := writeFile(t, dir, "notes.txt", "hello")
	b := writeFile(t, dir, "grades.csv", "name,grade\nada,A\n")

	stdout, _, err := runCLI(t, "", "upload", a, b)

	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, ingest.ingested)
	assert.Empty(t, ingest.uploaded)
	assert.Contains(t, stdout, "notes.txt → notes (3 chunks)")
	assert.Contains(t, stdout, "grades.csv → grades (3 chunks)")
}

func TestUploadCmd_RemoveUsesUpload(t *testing.T) {
	ingest := &mockIngestService{}
	setupTestServices(t, Services{Ingest: ingest})
	path := writeFile(t, t.TempDir(), "notes.txt", "hello")

	_, _, err := runCLI(t, "", "upload", "--remove", path)

	require.NoError(t, err)
	assert.Equal(t, []string{path}, ingest.uploaded)
	assert.Empty(t, ingest.ingested)
}

func TestUploadCmd_FileURI(t *testing.T) {
	ingest := &mockIngestService{}
	setupTestServices(t, Services{Ingest: ingest})

	_, _, err := runCLI(t, "", "upload", "file:///tmp/My%20Notes.txt")

	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/My Notes.txt"}, ingest.ingested)
}

func TestUploadCmd_URL(t *testing.T) {
	ingest := &mockIngestService{}
	setupTestServices(t, Services{Ingest: ingest})

	_, _, err := runCLI(t, "", "upload", "https://example.com/report.pdf")

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/report.pdf"}, ingest.urls)
	assert.Empty(t, ingest.ingested)
}

func TestUploadCmd_PartialFailure(t *testing.T) {
	ingest := &mockIngestService{failFor: "empty"}
	setupTestServices(t, Services{Ingest: ingest})
	dir := t.TempDir()
	good := writeFile(t, dir, "notes.txt", "hello")
	bad := writeFile(t, dir, "empty.txt", "")

	stdout, stderr, err := runCLI(t, "", "upload", bad, good)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 upload(s) failed")
	assert.Contains(t, stderr, "empty.txt")
	assert.Contains(t, stdout, "notes.txt → notes")
	assert.Len(t, ingest.ingested, 2)
}

func TestUploadCmd_ServiceError(t *testing.T) {
	setupTestServices(t, Services{Ingest: &mockIngestService{err: errors.New("embedder down")}})

	_, stderr, err := runCLI(t, "", "upload", "/tmp/a.txt")

	require.Error(t, err)
	assert.Contains(t, stderr, "embedder down")
}

func TestUploadCmd_RequiresArgs(t *testing.T) {
	setupTestServices(t, Services{Ingest: &mockIngestService{}})

	_, _, err := runCLI(t, "", "upload")

	assert.Error(t, err)
}

func TestUploadCmd_NotConfigured(t *testing.T) {
	setupTestServices(t, Services{})

	_, _, err := runCLI(t, "", "upload", "/tmp/a.txt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}
