package keymap

import (
	"testing"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	assert.Equal(t, []string{"ctrl+c"}, km.Quit.Keys())
	assert.Equal(t, []string{"enter"}, km.Send.Keys())
	assert.Equal(t, []string{"tab"}, km.Indexes.Keys())
	assert.Equal(t, []string{"ctrl+n"}, km.NewSession.Keys())
	assert.Contains(t, km.Up.Keys(), "k")
	assert.Contains(t, km.Down.Keys(), "j")
}

// Chat bindings must not steal characters the user types into a question.
func TestDefaultKeyMap_ChatBindingsAreNotPrintable(t *testing.T) {
	km := DefaultKeyMap()

	for _, b := range []key.Binding{km.Quit, km.Help, km.Back, km.Send, km.NewSession, km.Indexes, km.Keywords, km.ScrollUp, km.ScrollDown} {
		for _, k := range b.Keys() {
			runes := []rune(k)
			if len(runes) == 1 {
				assert.False(t, unicode.IsPrint(runes[0]), "binding %q is printable", k)
			}
		}
	}
}

func TestKeyMap_Help(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ChatHelp(), 4)
	assert.Len(t, km.IndexesHelp(), 4)
	for _, b := range km.ChatHelp() {
		assert.NotEmpty(t, b.Help().Key)
		assert.NotEmpty(t, b.Help().Desc)
	}

	full := km.FullHelp()
	require.Len(t, full, 3)
	assert.Contains(t, full[2], km.Quit)
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		key     string
		binding key.Binding
		want    bool
	}{
		{"ctrl+c", km.Quit, true},
		{"q", km.Quit, false},
		{"up", km.Up, true},
		{"k", km.Up, true},
		{"j", km.Up, false},
		{" ", km.Toggle, true},
		{"enter", km.Apply, true},
		{"", km.Send, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.key, tt.binding))
		})
	}
}
