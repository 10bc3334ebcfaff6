package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Question      string `json:"question" validate:"required"`
	ImageBase64   string `json:"image_base64,omitempty"`
	FileID        string `json:"file_id,omitempty"`
	SessionID     string `json:"session_id,omitempty" validate:"omitempty,max=128"`
	MaxChunks     int    `json:"max_chunks,omitempty" validate:"omitempty,min=1,max=100"`
	KeywordFilter bool   `json:"keyword_filter,omitempty"`
}

func (q QueryRequest) toDomain() domain.QueryRequest {
	return domain.QueryRequest{
		Question:      q.Question,
		ImageBase64:   q.ImageBase64,
		FileIDs:       domain.ParseFileIDs(q.FileID),
		MaxChunks:     q.MaxChunks,
		KeywordFilter: q.KeywordFilter,
	}
}

// IndexResponse describes one index in GET /indexes.
type IndexResponse struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	FileType string `json:"filetype"`
	Icon     string `json:"icon"`
	Chunks   int    `json:"chunks"`
	Model    string `json:"model"`
	BuiltAt  string `json:"built_at"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the docqa API. POST /upload to index a document and POST /query to ask about it.",
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded.")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "." || name == string(filepath.Separator) || strings.HasPrefix(name, ".") {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid filename %q", header.Filename))
		return
	}
	if _, err := domain.FileKindForPath(name); err != nil {
		writeDomainError(w, err)
		return
	}

	// Each upload gets its own directory so concurrent uploads of the
	// same filename do not overwrite each other before indexing.
	dir, err := os.MkdirTemp(s.uploadDir, "upload-*")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, name)
	if err := stage(path, file); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the upload size limit")
			return
		}
		writeDomainError(w, err)
		return
	}

	result, err := s.ports.Ingest.Upload(r.Context(), path)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func stage(path string, src io.Reader) error {
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	resp, err := s.ports.Query.AskInSession(r.Context(), req.SessionID, req.toDomain())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListIndexes(w http.ResponseWriter, r *http.Request) {
	if s.ports.Index == nil {
		writeJSON(w, http.StatusOK, []IndexResponse{})
		return
	}

	infos, err := s.ports.Index.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]IndexResponse, len(infos))
	for i, info := range infos {
		out[i] = IndexResponse(info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteIndex(w http.ResponseWriter, r *http.Request) {
	if s.ports.Index == nil {
		writeError(w, http.StatusNotFound, domain.ErrIndexNotFound.Error())
		return
	}
	if err := s.ports.Index.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
