// Package status provides the status bar for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

// State is what the status bar reports on its left side.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
	StatePicking  State = "picking"
)

// Bar shows the session state and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	state    State
	message  string
	turns    int
	scope    int
	keywords bool
	width    int
}

// NewBar creates a status bar.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// View renders the bar across the full width.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	inner := b.width - b.styles.StatusBar.GetHorizontalPadding()
	padding := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (b *Bar) renderLeft() string {
	switch b.state {
	case StateThinking:
		return b.styles.Muted.Render("Thinking...")
	case StateError:
		if b.message != "" {
			return b.styles.Error.Render("Error: " + b.message)
		}
		return b.styles.Error.Render("Error")
	case StatePicking:
		return b.styles.Normal.Render("Select documents")
	}

	parts := []string{fmt.Sprintf("%d turns", b.turns)}
	if b.scope > 0 {
		parts = append(parts, fmt.Sprintf("%d documents", b.scope))
	} else {
		parts = append(parts, "all documents")
	}
	if b.keywords {
		parts = append(parts, "keyword filter")
	}
	if b.message != "" {
		parts = append(parts, b.message)
	}
	return b.styles.Normal.Render(strings.Join(parts, " · "))
}

func (b *Bar) renderRight() string {
	bindings := b.keymap.ChatHelp()
	if b.state == StatePicking {
		bindings = b.keymap.IndexesHelp()
	}
	return b.styles.Muted.Render(formatHints(bindings))
}

func formatHints(bindings []key.Binding) string {
	hints := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return strings.Join(hints, " | ")
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets a transient message or the error text.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetTurns sets the number of turns in the session.
func (b *Bar) SetTurns(n int) {
	b.turns = n
}

// SetScope sets how many documents the chat is restricted to.
// Zero means all documents.
func (b *Bar) SetScope(n int) {
	b.scope = n
}

// SetKeywordFilter shows whether keyword filtering is on.
func (b *Bar) SetKeywordFilter(on bool) {
	b.keywords = on
}

// SetWidth sets the bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the bar width.
func (b *Bar) Width() int {
	return b.width
}

// Clear resets state and message.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
}
