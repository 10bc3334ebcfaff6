// Package httpapi serves the docqa HTTP API: document upload, question
// answering, index listing and a websocket chat.
package httpapi

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// MaxUploadBytes caps the size of a multipart upload.
const MaxUploadBytes = 100 << 20

// ErrMissingService is returned when a required port is nil.
var ErrMissingService = errors.New("httpapi: query and ingest services are required")

// Ports aggregates the driving ports used by the HTTP API.
type Ports struct {
	Query  driving.QueryService
	Ingest driving.IngestService
	Index  driving.IndexService
}

// Server handles HTTP requests for docqa.
type Server struct {
	ports     *Ports
	uploadDir string
	validate  *validator.Validate
	mux       *http.ServeMux
}

// NewServer creates a server. Uploaded files are staged under uploadDir,
// which is created if missing.
func NewServer(ports *Ports, uploadDir string) (*Server, error) {
	if ports == nil || ports.Query == nil || ports.Ingest == nil {
		return nil, ErrMissingService
	}
	if err := os.MkdirAll(uploadDir, 0700); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)

	s := &Server{
		ports:     ports,
		uploadDir: uploadDir,
		validate:  validate,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// jsonFieldName reports validation failures by their JSON key.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("POST /upload", s.handleUpload)
	s.mux.HandleFunc("POST /query", s.handleQuery)
	s.mux.HandleFunc("GET /indexes", s.handleListIndexes)
	s.mux.HandleFunc("DELETE /indexes/{id}", s.handleDeleteIndex)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Handler returns the HTTP handler with CORS and request logging applied.
func (s *Server) Handler() http.Handler {
	return withLogging(withCORS(s.mux))
}

// Run listens on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// withCORS allows any origin, for browser frontends served elsewhere.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack is required by the websocket upgrader.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("%s %s %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
