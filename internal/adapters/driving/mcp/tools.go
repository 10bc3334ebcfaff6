package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question      string   `json:"question" jsonschema:"the question to answer from the indexed documents"`
	FileIDs       []string `json:"file_ids,omitempty" jsonschema:"restrict the search to these file ids (default all)"`
	SessionID     string   `json:"session_id,omitempty" jsonschema:"continue an earlier conversation"`
	ImageBase64   string   `json:"image_base64,omitempty" jsonschema:"optional base64 image whose text is added to the context"`
	MaxChunks     int      `json:"max_chunks,omitempty" jsonschema:"maximum number of chunks in the context (default retrieval.max_chunks)"`
	KeywordFilter bool     `json:"keyword_filter,omitempty" jsonschema:"narrow chunks by committee role keywords"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string          `json:"answer"`
	SessionID string          `json:"session_id"`
	Sources   []domain.Source `json:"sources"`
}

// UploadInput is the input schema for the upload tool.
type UploadInput struct {
	Path string `json:"path,omitempty" jsonschema:"local path of the document to index"`
	URL  string `json:"url,omitempty" jsonschema:"http(s) URL of the document to index"`
}

// UploadOutput is the output schema for the upload tool.
type UploadOutput struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
}

// ListIndexesInput is the (empty) input schema for the list_indexes tool.
type ListIndexesInput struct{}

// IndexOutput summarises one index.
type IndexOutput struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	FileType string `json:"filetype"`
	Chunks   int    `json:"chunks"`
	BuiltAt  string `json:"built_at"`
}

// ListIndexesOutput is the output schema for the list_indexes tool.
type ListIndexesOutput struct {
	Indexes []IndexOutput `json:"indexes"`
	Count   int           `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed documents",
	}, s.handleAsk)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "upload",
			Description: "Index a local file or a document URL so it can be queried",
		}, s.handleUpload)
	}

	if s.ports.Index != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_indexes",
			Description: "List the documents that have been indexed",
		}, s.handleListIndexes)
	}
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	req := domain.QueryRequest{
		Question:      input.Question,
		ImageBase64:   input.ImageBase64,
		FileIDs:       input.FileIDs,
		MaxChunks:     input.MaxChunks,
		KeywordFilter: input.KeywordFilter,
	}

	resp, err := s.ports.Query.AskInSession(ctx, input.SessionID, req)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:    resp.Answer,
		SessionID: resp.SessionID,
		Sources:   resp.Sources,
	}, nil
}

// handleUpload indexes a file in place. Unlike the HTTP upload, the
// caller's file is never removed.
func (s *Server) handleUpload(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UploadInput,
) (*mcp.CallToolResult, UploadOutput, error) {
	path, url := strings.TrimSpace(input.Path), strings.TrimSpace(input.URL)

	var (
		result *domain.UploadResult
		err    error
	)
	switch {
	case path != "" && url != "":
		return nil, UploadOutput{}, errors.New("set either path or url, not both")
	case path != "":
		result, err = s.ports.Ingest.Ingest(ctx, path)
	case url != "":
		result, err = s.ports.Ingest.IngestURL(ctx, url)
	default:
		return nil, UploadOutput{}, errors.New("path or url is required")
	}
	if err != nil {
		return nil, UploadOutput{}, err
	}

	return nil, UploadOutput{
		FileID:   result.FileID,
		Filename: result.Filename,
		Chunks:   result.Chunks,
	}, nil
}

func (s *Server) handleListIndexes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListIndexesInput,
) (*mcp.CallToolResult, ListIndexesOutput, error) {
	infos, err := s.ports.Index.List(ctx)
	if err != nil {
		return nil, ListIndexesOutput{}, err
	}

	output := ListIndexesOutput{
		Indexes: make([]IndexOutput, len(infos)),
		Count:   len(infos),
	}
	for i, info := range infos {
		output.Indexes[i] = IndexOutput{
			FileID:   info.FileID,
			Filename: info.Filename,
			FileType: info.FileType,
			Chunks:   info.Chunks,
			BuiltAt:  info.BuiltAt,
		}
	}
	return nil, output, nil
}
