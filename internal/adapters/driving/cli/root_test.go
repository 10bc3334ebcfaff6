package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot_BootstrapReceivesConfigPath(t *testing.T) {
	setupTestServices(t, Services{Index: &mockIndexService{}})

	var got string
	SetBootstrap(func(path string) error {
		got = path
		return nil
	})
	t.Cleanup(func() { SetBootstrap(nil) })

	_, _, err := runCLI(t, "", "--config", "/etc/docqa.toml", "index", "list")

	require.NoError(t, err)
	assert.Equal(t, "/etc/docqa.toml", got)
}

func TestRoot_BootstrapErrorStopsCommand(t *testing.T) {
	index := &mockIndexService{}
	setupTestServices(t, Services{Index: index})

	SetBootstrap(func(string) error { return errors.New("bad config") })
	t.Cleanup(func() { SetBootstrap(nil) })

	_, _, err := runCLI(t, "", "index", "delete", "thesis")

	require.EqualError(t, err, "bad config")
	assert.Empty(t, index.deleted)
}

func TestRoot_Commands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"upload", "query", "index", "chat", "serve", "watch", "settings", "mcp", "version"} {
		assert.True(t, names[want], want)
	}
}
