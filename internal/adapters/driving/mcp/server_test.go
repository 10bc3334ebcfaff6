package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil query service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingQueryService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Query: &mockQueryService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("query only is valid", func(t *testing.T) {
		assert.NoError(t, (&Ports{Query: &mockQueryService{}}).Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Query:  &mockQueryService{},
			Ingest: &mockIngestService{},
			Index:  &mockIndexService{},
		}
		assert.NoError(t, ports.Validate())
	})

	t.Run("missing query", func(t *testing.T) {
		ports := &Ports{Ingest: &mockIngestService{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingQueryService)
	})
}
