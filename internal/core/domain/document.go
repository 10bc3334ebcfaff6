package domain

import "time"

// Chunk is a window of extracted text with the page or row it came from.
type Chunk struct {
	// Text is the chunk content. Never blank after trimming.
	Text string

	// SourcePage is the 1-based page (PDF) or row (CSV) number.
	// Zero means unknown and is replaced by a sequential index during ingest.
	SourcePage int

	// Extra carries format-specific attributes copied into ChunkMetadata.
	Extra map[string]string
}

// ChunkMetadata records the provenance of one chunk in a DocumentIndex.
type ChunkMetadata struct {
	// Filename is the name of the uploaded file.
	Filename string `json:"filename"`

	// ChunkIndex is the 0-based position of the chunk within the file.
	ChunkIndex int `json:"chunk"`

	// PageOrRow is the 1-based page or row the chunk came from.
	PageOrRow int `json:"page"`

	// FileType is the lower-cased extension including the dot (".pdf").
	FileType string `json:"filetype"`

	// Extra holds format-specific fields such as a CSV period and quarter.
	Extra map[string]string `json:"extra,omitempty"`
}

// ChunkOptions controls the window size used when splitting text.
type ChunkOptions struct {
	// Size is the maximum chunk length in characters.
	Size int

	// Overlap is the number of characters shared by consecutive windows.
	Overlap int
}

// OrDefault returns o with a non-positive Size replaced by size and overlap.
func (o ChunkOptions) OrDefault(size, overlap int) ChunkOptions {
	if o.Size <= 0 {
		return ChunkOptions{Size: size, Overlap: overlap}
	}
	return o
}

// DocumentIndex is the searchable state built from one uploaded file.
// It is replaced wholesale when the same file_id is uploaded again.
type DocumentIndex struct {
	// FileID is the filename without its extension.
	FileID string

	// Chunks are the indexed texts in ingest order.
	Chunks []Chunk

	// Metadata is parallel to Chunks.
	Metadata []ChunkMetadata

	// Vectors is parallel to Chunks.
	Vectors [][]float32

	// Model names the embedding model that produced Vectors.
	Model string

	// BuiltAt is when the index was written.
	BuiltAt time.Time
}

// Len returns the number of chunks in the index.
func (d *DocumentIndex) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Chunks)
}

// UploadResult describes a successfully indexed upload.
type UploadResult struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	FileType string `json:"filetype"`
	Icon     string `json:"icon"`
	Chunks   int    `json:"chunks"`
}
