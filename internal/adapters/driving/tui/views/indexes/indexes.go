// Package indexes provides the document picker view.
package indexes

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// View lists indexed documents and lets the user pick which ones the
// chat searches.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.IndexList
	statusbar *status.Bar

	index driving.IndexService
	ctx   context.Context

	loading bool
	err     error
	width   int
	height  int
}

// NewView creates the picker. index may be nil, in which case the list
// stays empty and the chat always searches every document.
func NewView(s *styles.Styles, km *keymap.KeyMap, index driving.IndexService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetState(status.StatePicking)

	return &View{
		styles:    s,
		keymap:    km,
		list:      list.NewIndexList(s),
		statusbar: bar,
		index:     index,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context used to list indexes.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the index list.
func (v *View) Init() tea.Cmd {
	if v.index == nil {
		return nil
	}
	v.loading = true
	index, ctx := v.index, v.ctx
	return func() tea.Msg {
		infos, err := index.List(ctx)
		return messages.IndexesLoaded{Indexes: infos, Err: err}
	}
}

// Update handles messages for the picker.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.IndexesLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.list.SetItems(msg.Indexes)
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		return v, changeView(messages.ViewChat)
	case keymap.Matches(keyStr, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(keyStr, v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(keyStr, v.keymap.Toggle):
		v.list.Toggle()
	case keymap.Matches(keyStr, v.keymap.Clear):
		v.list.ClearChecked()
	case keymap.Matches(keyStr, v.keymap.Apply):
		// The app returns to the chat once it applies the scope.
		ids := v.list.Checked()
		return v, func() tea.Msg { return messages.ScopeChanged{FileIDs: ids} }
	}
	return v, nil
}

func changeView(view messages.ViewType) tea.Cmd {
	return func() tea.Msg { return messages.ViewChanged{View: view} }
}

// SetChecked marks fileIDs as selected, typically the chat's current scope.
func (v *View) SetChecked(fileIDs []string) {
	v.list.SetChecked(fileIDs)
}

// Checked returns the selected file ids.
func (v *View) Checked() []string {
	return v.list.Checked()
}

// View renders the picker.
func (v *View) View() string {
	body := v.list.View()
	switch {
	case v.loading:
		body = v.styles.Muted.Render("Loading documents...")
	case v.err != nil:
		body = v.styles.Error.Render("Error: " + v.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("docqa"),
		v.styles.Muted.Render("Pick the documents to ask about. None checked searches everything."),
		"",
		body,
		"",
		v.statusbar.View(),
	)
}

// SetDimensions sets the available space.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.list.SetDimensions(width, max(height-6, 3))
	v.statusbar.SetWidth(width)
}

// Count returns the number of listed documents.
func (v *View) Count() int {
	return v.list.Count()
}
