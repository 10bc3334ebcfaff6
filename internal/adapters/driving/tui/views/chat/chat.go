// Package chat provides the question and answer view.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// ErrNoQueryService is returned when a question is asked without a service.
var ErrNoQueryService = errors.New("chat: query service not available")

// entry is one rendered exchange in the transcript.
type entry struct {
	question string
	answer   string
	sources  []domain.Source
	err      error
}

// View holds one chat session: the transcript, the input and the
// conversation history sent with every question.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	statusbar *status.Bar
	viewport  viewport.Model
	spinner   spinner.Model

	query driving.QueryService
	ctx   context.Context

	session  *domain.QuerySession
	entries  []entry
	fileIDs  []string
	keywords bool
	pending  string

	width  int
	height int
	ready  bool
}

// NewView creates a chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, query driving.QueryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	return &View{
		styles:    s,
		keymap:    km,
		input:     input.NewQuestionInput(s),
		statusbar: status.NewBar(s, km),
		viewport:  viewport.New(80, 16),
		spinner:   sp,
		query:     query,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context used for questions.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the input cursor.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ScopeChanged:
		v.SetScope(msg.FileIDs)
		return v, v.input.Focus()

	case spinner.TickMsg:
		if v.pending == "" {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.refresh()
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Indexes):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewIndexes} }

	case keymap.Matches(keyStr, v.keymap.Help):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewHelp} }

	case keymap.Matches(keyStr, v.keymap.NewSession):
		v.NewSession()
		return v, nil

	case keymap.Matches(keyStr, v.keymap.Keywords):
		v.keywords = !v.keywords
		v.statusbar.SetKeywordFilter(v.keywords)
		return v, nil

	case keymap.Matches(keyStr, v.keymap.ScrollUp), keymap.Matches(keyStr, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case keymap.Matches(keyStr, v.keymap.Send):
		return v, v.submit()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the typed question. Only one question is in flight at a
// time because each answer extends the session the next one needs.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.pending != "" {
		return nil
	}

	v.pending = question
	v.input.Reset()
	v.statusbar.SetState(status.StateThinking)
	v.refresh()

	req := domain.QueryRequest{
		Question:      question,
		FileIDs:       v.fileIDs,
		KeywordFilter: v.keywords,
	}
	return tea.Batch(v.ask(v.session, req), v.spinner.Tick)
}

func (v *View) ask(session *domain.QuerySession, req domain.QueryRequest) tea.Cmd {
	query, ctx := v.query, v.ctx
	return func() tea.Msg {
		if query == nil {
			return messages.AnswerReceived{Question: req.Question, Err: ErrNoQueryService}
		}
		next, resp, err := query.Ask(ctx, session, req)
		return messages.AnswerReceived{Question: req.Question, Session: next, Response: resp, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.pending = ""

	e := entry{question: msg.Question, err: msg.Err}
	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
	} else {
		v.session = msg.Session
		if msg.Response != nil {
			e.answer = msg.Response.Answer
			e.sources = msg.Response.Sources
		}
		v.statusbar.Clear()
		v.statusbar.SetTurns(v.session.Len())
	}

	v.entries = append(v.entries, e)
	v.refresh()
}

// NewSession forgets the history and clears the transcript.
func (v *View) NewSession() {
	v.session = nil
	v.entries = nil
	v.statusbar.Clear()
	v.statusbar.SetTurns(0)
	v.refresh()
}

// SetScope restricts questions to fileIDs. Empty means all documents.
func (v *View) SetScope(fileIDs []string) {
	v.fileIDs = fileIDs
	v.statusbar.SetScope(len(fileIDs))
}

// Scope returns the file ids questions are restricted to.
func (v *View) Scope() []string {
	return v.fileIDs
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.entries) == 0 && v.pending == "" {
		return v.styles.Muted.Render("Ask anything about your indexed documents. Press tab to pick documents.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-6, 20))
	var b strings.Builder
	for _, e := range v.entries {
		b.WriteString(v.styles.Question.Render("› " + e.question))
		b.WriteString("\n")
		if e.err != nil {
			b.WriteString(v.styles.Error.Render("  " + e.err.Error()))
		} else {
			b.WriteString(v.styles.Answer.Render(wrap.Render(e.answer)))
			for _, src := range e.sources {
				b.WriteString("\n")
				b.WriteString(v.styles.Source.Render(fmt.Sprintf("%s %s, page %d", src.Icon, src.Filename, src.Page)))
			}
		}
		b.WriteString("\n\n")
	}
	if v.pending != "" {
		b.WriteString(v.styles.Question.Render("› " + v.pending))
		b.WriteString("\n  ")
		b.WriteString(v.spinner.View())
	}
	return strings.TrimRight(b.String(), "\n")
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("docqa"),
		"",
		v.viewport.View(),
		"",
		v.input.View(),
		v.statusbar.View(),
	)
}

// SetDimensions lays out the view for a terminal of the given size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.viewport.Width = width
	v.viewport.Height = max(height-8, 3)
	v.refresh()
}

// Session returns the current session, nil before the first answer.
func (v *View) Session() *domain.QuerySession {
	return v.session
}

// Pending returns the question awaiting an answer.
func (v *View) Pending() string {
	return v.pending
}

// KeywordFilter reports whether keyword filtering is on.
func (v *View) KeywordFilter() bool {
	return v.keywords
}

// Transcript returns the rendered transcript text.
func (v *View) Transcript() string {
	return v.renderTranscript()
}

// Ready reports whether the view has been sized.
func (v *View) Ready() bool {
	return v.ready
}

// Input returns the question input.
func (v *View) Input() *input.QuestionInput {
	return v.input
}

// StatusBar returns the status bar.
func (v *View) StatusBar() *status.Bar {
	return v.statusbar
}
