package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "docqa://"

// registerResources registers the index resources.
func (s *Server) registerResources() {
	if s.ports.Index == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "indexes",
		Name:        "indexes",
		Description: "All indexed documents",
		MIMEType:    "application/json",
	}, s.handleIndexesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "indexes/{fileId}/chunks",
		Name:        "index-chunks",
		Description: "The text chunks of one indexed document with their pages",
		MIMEType:    "application/json",
	}, s.handleChunksResource)
}

func (s *Server) handleIndexesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	infos, err := s.ports.Index.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing indexes: %w", err)
	}

	type indexInfo struct {
		FileID   string `json:"file_id"`
		Filename string `json:"filename"`
		Chunks   int    `json:"chunks"`
	}

	out := make([]indexInfo, len(infos))
	for i, info := range infos {
		out[i] = indexInfo{FileID: info.FileID, Filename: info.Filename, Chunks: info.Chunks}
	}
	return jsonResult(req.Params.URI, out)
}

func (s *Server) handleChunksResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	fileID := extractFileID(req.Params.URI)
	if fileID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	idx, err := s.ports.Index.Get(ctx, fileID)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	type chunkInfo struct {
		Chunk int    `json:"chunk"`
		Page  int    `json:"page"`
		Text  string `json:"text"`
	}

	out := make([]chunkInfo, len(idx.Chunks))
	for i, c := range idx.Chunks {
		out[i] = chunkInfo{Chunk: i, Page: c.SourcePage, Text: c.Text}
		if i < len(idx.Metadata) {
			out[i].Page = idx.Metadata[i].PageOrRow
		}
	}
	return jsonResult(req.Params.URI, out)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractFileID returns fileId from docqa://indexes/{fileId}/chunks.
func extractFileID(uri string) string {
	const prefix = uriScheme + "indexes/"
	const suffix = "/chunks"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
}
