package domain

import "strings"

const (
	// DefaultMaxChunks caps the number of chunks in a retrieval context.
	DefaultMaxChunks = 10

	// KeywordMaxChunks is the per-index depth used by keyword-filtered queries.
	KeywordMaxChunks = 12
)

// RetrievedChunk is a chunk returned from an index search.
type RetrievedChunk struct {
	// Chunk is the matched text.
	Chunk Chunk

	// Metadata is the provenance stored with the chunk.
	Metadata ChunkMetadata

	// FileID is the index the chunk came from.
	FileID string

	// Score is the cosine similarity to the query.
	Score float64

	// Icon is the display icon for the chunk's file type.
	Icon string
}

// Source is chunk metadata annotated with its icon, as returned to callers.
type Source struct {
	Filename string            `json:"filename" yaml:"filename"`
	Chunk    int               `json:"chunk" yaml:"chunk"`
	Page     int               `json:"page" yaml:"page"`
	FileType string            `json:"filetype" yaml:"filetype"`
	Icon     string            `json:"icon" yaml:"icon"`
	Extra    map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Source returns the caller-facing provenance of the chunk.
func (r RetrievedChunk) Source() Source {
	return Source{
		Filename: r.Metadata.Filename,
		Chunk:    r.Metadata.ChunkIndex,
		Page:     r.Metadata.PageOrRow,
		FileType: r.Metadata.FileType,
		Icon:     r.Icon,
		Extra:    r.Metadata.Extra,
	}
}

// RetrievalResult is the assembled context for one question.
type RetrievalResult struct {
	// Context is the text handed to the language model.
	Context string

	// OCRText is the text read from the question image, if any.
	OCRText string

	// Chunks are the retrieved chunks in context order.
	Chunks []RetrievedChunk
}

// Sources returns the provenance of every chunk in the result.
func (r *RetrievalResult) Sources() []Source {
	out := make([]Source, 0, len(r.Chunks))
	for _, c := range r.Chunks {
		out = append(out, c.Source())
	}
	return out
}

// QueryRequest is a question against one or more indexes.
type QueryRequest struct {
	// Question is required and must not be blank.
	Question string

	// ImageBase64 is an optional base64 image whose OCR text joins the context.
	ImageBase64 string

	// FileIDs restricts the search. Empty means every index.
	FileIDs []string

	// MaxChunks caps the context. Zero means the configured default.
	MaxChunks int

	// KeywordFilter narrows chunks by committee role keywords.
	KeywordFilter bool
}

// QueryResponse is the answer to a QueryRequest.
type QueryResponse struct {
	Answer    string   `json:"answer" yaml:"answer"`
	Context   string   `json:"context" yaml:"context"`
	Sources   []Source `json:"sources" yaml:"sources"`
	SessionID string   `json:"session_id,omitempty" yaml:"session_id,omitempty"`
}

// ParseFileIDs splits a comma-separated file_id list, dropping blanks.
func ParseFileIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
