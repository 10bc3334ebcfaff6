package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

type stubPrompts struct {
	prompt string
	err    error
}

func (s *stubPrompts) Load(string) (string, error) { return s.prompt, s.err }
func (s *stubPrompts) Reload()                     {}

func TestNew_Defaults(t *testing.T) {
	e, err := New(Config{BaseURL: "http://localhost:11434"})
	require.NoError(t, err)
	assert.Equal(t, "ollama:"+DefaultModel, e.Name())
}

func TestPrompt(t *testing.T) {
	e, err := New(Config{BaseURL: "http://localhost:11434"})
	require.NoError(t, err)
	assert.Equal(t, defaultOCRPrompt, e.prompt())

	e.SetPromptStore(&stubPrompts{prompt: "read it"})
	assert.Equal(t, "read it", e.prompt())

	e.SetPromptStore(&stubPrompts{err: errors.New("missing")})
	assert.Equal(t, defaultOCRPrompt, e.prompt())
}

func TestExtractText(t *testing.T) {
	image := []byte{0x89, 'P', 'N', 'G'}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string   `json:"content"`
				Images  []string `json:"images"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llava", req.Model)
		require.Len(t, req.Messages, 1)
		require.Len(t, req.Messages[0].Images, 1)
		assert.Equal(t, base64.StdEncoding.EncodeToString(image), req.Messages[0].Images[0])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llava","message":{"role":"assistant","content":"  Examiner: Dr. Hossain \n"},"done":true}`))
	}))
	defer srv.Close()

	e, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	text, err := e.ExtractText(context.Background(), image)
	require.NoError(t, err)
	assert.Equal(t, "Examiner: Dr. Hossain", text)
}

func TestExtractText_Empty(t *testing.T) {
	e, err := New(Config{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	text, err := e.ExtractText(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractText_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	e, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = e.ExtractText(context.Background(), []byte("x"))
	assert.ErrorIs(t, err, domain.ErrOCRFailure)
}
