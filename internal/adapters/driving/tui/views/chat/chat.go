// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/components/input"
	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/components/list"
	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/components/status"
	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/keymap"
	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/messages"
	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/styles"
	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driving"
)

// Turn is one question and, once it arrives, its answer.
type Turn struct {
	Question string
	Answer   *domain.Answer
}

// View is the conversation view: transcript, sources panel, input and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input      *input.ChatInput
	sources    *list.SourceList
	statusbar  *status.Bar
	transcript viewport.Model

	chatService  driving.ChatService
	indexService driving.IndexService
	ctx          context.Context

	turns       []Turn
	pending     bool
	showSources bool

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new chat view. indexService may be nil, in which case the
// status bar shows readiness only.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	chatService driving.ChatService,
	indexService driving.IndexService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:       s,
		keymap:       km,
		input:        input.NewChatInput(s),
		sources:      list.NewSourceList(s),
		statusbar:    status.NewBar(s, km),
		transcript:   viewport.New(80, 15),
		chatService:  chatService,
		indexService: indexService,
		ctx:          context.Background(),
		width:        80,
		height:       24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.LoadStats())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		return v, v.handleAnswer(msg)

	case messages.StatsLoaded:
		v.statusbar.SetIndex(msg.Readiness, msg.Stats)
		return v, nil

	case messages.ErrorOccurred:
		v.pending = false
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, v.keymap.Back):
		if v.showSources {
			v.showSources = false
			v.input.Focus()
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(key, v.keymap.Sources):
		v.toggleSources()
		return v, nil

	case keymap.Matches(key, v.keymap.Clear):
		v.Reset()
		return v, nil

	case keymap.Matches(key, v.keymap.PageUp):
		v.transcript.SetYOffset(v.transcript.YOffset - v.transcript.Height)
		return v, nil

	case keymap.Matches(key, v.keymap.PageDn):
		v.transcript.SetYOffset(v.transcript.YOffset + v.transcript.Height)
		return v, nil
	}

	// Sources panel has focus: arrows navigate the list.
	if v.showSources {
		v.sources, _ = v.sources.Update(msg)
		return v, nil
	}

	if msg.Type == tea.KeyEnter {
		return v, v.submit()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) toggleSources() {
	if v.sources.Count() == 0 {
		v.showSources = false
		return
	}
	v.showSources = !v.showSources
	if v.showSources {
		v.input.Blur()
	} else {
		v.input.Focus()
	}
	v.syncTranscript()
}

// submit sends the typed question. Empty input and a second question while
// one is in flight are ignored.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.pending {
		return nil
	}

	v.turns = append(v.turns, Turn{Question: question})
	v.pending = true
	v.err = nil
	v.input.Remember(question)
	v.input.Reset()
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("")
	v.transcript.GotoBottom()
	v.syncTranscript()

	return v.ask(question)
}

// ask runs the answer pipeline off the update loop.
func (v *View) ask(question string) tea.Cmd {
	return func() tea.Msg {
		if v.chatService == nil {
			return messages.ErrorOccurred{Err: ErrNoChatService}
		}
		return messages.AnswerReceived{
			Question: question,
			Answer:   v.chatService.Answer(v.ctx, question),
		}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) tea.Cmd {
	v.pending = false
	if msg.Answer == nil {
		return nil
	}

	for i := len(v.turns) - 1; i >= 0; i-- {
		if v.turns[i].Answer == nil && v.turns[i].Question == msg.Question {
			v.turns[i].Answer = msg.Answer
			break
		}
	}

	v.syncTranscript()
	v.sources.SetMatches(msg.Answer.Matches)
	v.statusbar.SetState(status.StateAnswered)
	switch {
	case msg.Answer.Fallback:
		v.statusbar.SetMessage("No grounded answer")
	case len(msg.Answer.Matches) == 1:
		v.statusbar.SetMessage("1 source")
	default:
		v.statusbar.SetMessage(fmt.Sprintf("%d sources", len(msg.Answer.Matches)))
	}

	// Counts change while ingestion runs elsewhere.
	return v.LoadStats()
}

// LoadStats fetches embedder readiness and collection stats for the status bar
// and the menu.
func (v *View) LoadStats() tea.Cmd {
	return func() tea.Msg {
		msg := messages.StatsLoaded{Readiness: domain.ReadinessNotStarted}
		if v.chatService != nil {
			msg.Readiness = v.chatService.Readiness()
		}
		if v.indexService != nil {
			msg.Stats, msg.Err = v.indexService.Stats(v.ctx)
		}
		return msg
	}
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("Merkuze Hospital Assistant"), "")

	sections = append(sections, v.renderTranscript())

	if v.showSources {
		sections = append(sections, "", v.sources.View())
	}

	sections = append(sections, "", v.input.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderTranscript() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Ask a question about the hospital to get started.")
	}
	return v.transcript.View()
}

// syncTranscript re-renders the conversation into the viewport. A reader who
// scrolled up stays put; otherwise the newest lines stay in view.
func (v *View) syncTranscript() {
	follow := v.transcript.AtBottom()
	v.transcript.Width = v.width
	v.transcript.Height = v.transcriptHeight()

	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
	var b strings.Builder
	for _, t := range v.turns {
		b.WriteString(v.styles.Question.Render("You") + "\n")
		b.WriteString(wrap.Render(t.Question) + "\n")
		b.WriteString(v.styles.Answer.Render("Assistant") + "\n")
		switch {
		case t.Answer == nil:
			b.WriteString(v.styles.Muted.Render("..."))
		case t.Answer.Fallback:
			b.WriteString(v.styles.Fallback.Render(wrap.Render(t.Answer.Text)))
		default:
			b.WriteString(v.styles.Normal.Render(wrap.Render(t.Answer.Text)))
		}
		b.WriteString("\n\n")
	}
	v.transcript.SetContent(strings.TrimSuffix(b.String(), "\n"))
	if follow {
		v.transcript.GotoBottom()
	}
}

func (v *View) transcriptHeight() int {
	// title, input box, status bar and spacing
	reserved := 9
	if v.showSources {
		reserved += v.sourcesHeight() + 1
	}
	return max(v.height-reserved, 3)
}

func (v *View) sourcesHeight() int {
	return max(v.height/3, 4)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.sources.SetDimensions(width, v.sourcesHeight())
	v.statusbar.SetWidth(width)
	v.syncTranscript()
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Turns returns the conversation so far.
func (v *View) Turns() []Turn {
	return v.turns
}

// Pending reports whether a question is awaiting its answer.
func (v *View) Pending() bool {
	return v.pending
}

// ShowingSources reports whether the sources panel is open.
func (v *View) ShowingSources() bool {
	return v.showSources
}

// Input returns the current input text.
func (v *View) Input() string {
	return v.input.Value()
}

// SetInput sets the input text.
func (v *View) SetInput(text string) {
	v.input.SetValue(text)
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset clears the conversation and returns focus to the input.
func (v *View) Reset() {
	v.turns = nil
	v.pending = false
	v.showSources = false
	v.err = nil
	v.sources.SetMatches(nil)
	v.input.Reset()
	v.input.Focus()
	v.statusbar.Clear()
	v.transcript.GotoTop()
	v.syncTranscript()
}
