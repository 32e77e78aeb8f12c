// Package status renders the one-line bar under the chat.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/keymap"
	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/styles"
	"github.com/merkuze-health/merkuze/internal/core/domain"
)

// State is where the current question is in the pipeline.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateAnswered State = "answered"
	StateError    State = "error"
)

// Bar shows the pipeline state and index health on the left and key hints
// on the right. It holds no behaviour of its own; the chat view drives it.
type Bar struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	help   help.Model

	state     State
	message   string
	readiness domain.Readiness
	stats     *domain.IndexStats
	width     int
}

func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	h := help.New()
	h.ShortSeparator = " | "
	return &Bar{styles: s, keys: km, help: h, readiness: domain.ReadinessNotStarted, state: StateReady, width: 80}
}

func (s *Bar) Init() tea.Cmd { return nil }

func (s *Bar) Update(tea.Msg) (*Bar, tea.Cmd) { return s, nil }

func (s *Bar) View() string {
	left := s.stateLabel() + "  " + s.indexLabel()
	right := s.hints()
	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) stateLabel() string {
	switch s.state {
	case StateThinking:
		return s.styles.Muted.Render("Thinking...")
	case StateError:
		if s.message == "" {
			return s.styles.Error.Render("Error")
		}
		return s.styles.Error.Render("Error: " + s.message)
	case StateAnswered:
		if s.message == "" {
			return s.styles.Normal.Render("Answered")
		}
		return s.styles.Normal.Render(s.message)
	default:
		return s.styles.Muted.Render("Ready")
	}
}

// indexLabel reports a loading or failed embedder before anything about
// the collection, since an empty count means nothing while the model loads.
func (s *Bar) indexLabel() string {
	switch {
	case s.readiness == domain.ReadinessFailed:
		return s.styles.Error.Render("model failed")
	case s.readiness != domain.ReadinessReady:
		return s.styles.Warning.Render("model loading")
	case s.stats == nil:
		return s.styles.Muted.Render("index unknown")
	default:
		return s.styles.Muted.Render(fmt.Sprintf("%s · %d chunks", s.stats.Collection, s.stats.Count))
	}
}

// hints offers the sources key only once there is an answer to cite.
func (s *Bar) hints() string {
	bindings := s.keys.ShortHelp()
	if s.state == StateAnswered {
		bindings = s.keys.ChatHelp()
	}
	return s.help.ShortHelpView(bindings)
}

func (s *Bar) SetState(state State) { s.state = state }

func (s *Bar) State() State { return s.state }

func (s *Bar) SetMessage(message string) { s.message = message }

func (s *Bar) Message() string { return s.message }

// SetIndex records embedder readiness and collection stats. stats may be nil.
func (s *Bar) SetIndex(readiness domain.Readiness, stats *domain.IndexStats) {
	s.readiness, s.stats = readiness, stats
}

func (s *Bar) Readiness() domain.Readiness { return s.readiness }

func (s *Bar) Stats() *domain.IndexStats { return s.stats }

func (s *Bar) SetWidth(width int) { s.width = width }

func (s *Bar) Width() int { return s.width }

// Clear resets the conversation state. Index health is kept.
func (s *Bar) Clear() {
	s.state, s.message = StateReady, ""
}
