// Package menu is the TUI start screen.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/messages"
	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/styles"
	"github.com/merkuze-health/merkuze/internal/core/domain"
)

// Entry is one line of the menu. An entry with Quit set exits the app
// instead of switching views.
type Entry struct {
	Key   string
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

// DefaultEntries is the start screen of the hospital assistant.
func DefaultEntries() []Entry {
	return []Entry{
		{Key: "a", Label: "Ask a question", View: messages.ViewChat,
			Hint: "Answers come from the ingested hospital knowledge base."},
		{Key: "d", Label: "Knowledge documents", View: messages.ViewDocuments,
			Hint: "Browse or remove uploaded documents."},
		{Key: "?", Label: "Help", View: messages.ViewHelp,
			Hint: "Key bindings for every screen."},
		{Key: "q", Label: "Quit", Quit: true},
	}
}

// View is the menu model.
type View struct {
	styles  *styles.Styles
	entries []Entry
	cursor  int

	width  int
	height int
	ready  bool

	// knowledge base summary, filled by messages.StatsLoaded
	kb string
}

func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		entries: DefaultEntries(),
		width:   80,
		height:  24,
		kb:      "Knowledge base: checking...",
	}
}

func (v *View) Init() tea.Cmd { return nil }

// Update moves the cursor, follows shortcuts and records index stats.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.StatsLoaded:
		v.kb = summarise(msg)

	case tea.KeyMsg:
		return v, v.handleKey(msg.String())
	}
	return v, nil
}

func (v *View) handleKey(key string) tea.Cmd {
	switch key {
	case "up", "k":
		v.cursor = max(v.cursor-1, 0)
		return nil
	case "down", "j":
		v.cursor = min(v.cursor+1, len(v.entries)-1)
		return nil
	case "enter":
		return v.choose(v.cursor)
	}
	for i, e := range v.entries {
		if e.Key == key {
			v.cursor = i
			return v.choose(i)
		}
	}
	return nil
}

func (v *View) choose(i int) tea.Cmd {
	e := v.entries[i]
	if e.Quit {
		return tea.Quit
	}
	return func() tea.Msg { return messages.ViewChanged{View: e.View} }
}

// summarise turns readiness and collection stats into one status line.
func summarise(msg messages.StatsLoaded) string {
	switch {
	case msg.Readiness == domain.ReadinessFailed:
		return "Knowledge base: embedding model failed to load"
	case msg.Readiness == domain.ReadinessLoading:
		return "Knowledge base: embedding model loading..."
	case msg.Err != nil:
		return "Knowledge base: unavailable (" + msg.Err.Error() + ")"
	case msg.Stats == nil || msg.Stats.Count == 0:
		return "Knowledge base: empty, run `merkuze ingest` first"
	default:
		return fmt.Sprintf("Knowledge base: %d chunks in %s", msg.Stats.Count, msg.Stats.Collection)
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Merkuze"))
	b.WriteString("  ")
	b.WriteString(v.styles.Muted.Render("Hospital Information Assistant"))
	b.WriteString("\n\n")

	for i, e := range v.entries {
		label := fmt.Sprintf("[%s] %s", e.Key, e.Label)
		if i == v.cursor {
			b.WriteString("> " + v.styles.Answer.Render(label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label))
		}
		b.WriteString("\n")
	}

	if hint := v.entries[v.cursor].Hint; hint != "" {
		b.WriteString("\n" + v.styles.Muted.Render(hint) + "\n")
	}
	b.WriteString("\n" + v.styles.Normal.Render(v.kb) + "\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] move  [enter] open  [a/d/?] jump  [q] quit"))
	return b.String()
}

// SetDimensions records the terminal size and marks the view ready.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the cursor position.
func (v *View) Selected() int {
	return v.cursor
}

// KnowledgeBase returns the status line shown under the entries.
func (v *View) KnowledgeBase() string {
	return v.kb
}
