package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, domain.ErrOCRUnavailable)
}

func TestNew_Defaults(t *testing.T) {
	e, err := New(context.Background(), Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "gemini:"+DefaultModel, e.Name())
	assert.Equal(t, defaultOCRPrompt, e.prompt())
}

func TestImageContent(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	c := ImageContent(png, "read")

	assert.Equal(t, genai.RoleUser, c.Role)
	require.Len(t, c.Parts, 2)
	require.NotNil(t, c.Parts[0].InlineData)
	assert.Equal(t, "image/png", c.Parts[0].InlineData.MIMEType)
	assert.Equal(t, png, c.Parts[0].InlineData.Data)
	assert.Equal(t, "read", c.Parts[1].Text)
}

func TestExtractText_Empty(t *testing.T) {
	e, err := New(context.Background(), Config{APIKey: "k"})
	require.NoError(t, err)
	text, err := e.ExtractText(context.Background(), []byte{})
	require.NoError(t, err)
	assert.Empty(t, text)
}
