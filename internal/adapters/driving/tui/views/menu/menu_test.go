package menu

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/messages"
	"github.com/merkuze-health/merkuze/internal/core/domain"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// viewChange runs cmd and returns the view it switches to.
func viewChange(t *testing.T, cmd tea.Cmd) messages.ViewType {
	t.Helper()
	require.NotNil(t, cmd)
	changed, ok := cmd().(messages.ViewChanged)
	require.True(t, ok, "expected ViewChanged")
	return changed.View
}

func TestNewView(t *testing.T) {
	v := NewView(nil)

	require.NotNil(t, v.styles)
	assert.Equal(t, DefaultEntries(), v.entries)
	assert.Zero(t, v.Selected())
	assert.Nil(t, v.Init())
	assert.Equal(t, "Initialising...", v.View())
	assert.Contains(t, v.KnowledgeBase(), "checking")
}

func TestDefaultEntries_UniqueKeys(t *testing.T) {
	seen := map[string]bool{}
	for _, e := range DefaultEntries() {
		assert.False(t, seen[e.Key], "duplicate key %q", e.Key)
		seen[e.Key] = true
	}
}

func TestView_CursorStaysInBounds(t *testing.T) {
	v := NewView(nil)
	last := len(v.entries) - 1

	v.Update(key("up"))
	assert.Zero(t, v.Selected())

	for range 10 {
		v.Update(key("j"))
	}
	assert.Equal(t, last, v.Selected())

	v.Update(key("k"))
	v.Update(key("down"))
	assert.Equal(t, last, v.Selected())
}

func TestView_EnterOpensSelection(t *testing.T) {
	v := NewView(nil)
	assert.Equal(t, messages.ViewChat, viewChange(t, v.handleKey("enter")))

	v.Update(key("down"))
	_, cmd := v.Update(key("enter"))
	assert.Equal(t, messages.ViewDocuments, viewChange(t, cmd))
}

func TestView_Shortcuts(t *testing.T) {
	tests := []struct {
		key    string
		view   messages.ViewType
		cursor int
	}{
		{key: "a", view: messages.ViewChat, cursor: 0},
		{key: "d", view: messages.ViewDocuments, cursor: 1},
		{key: "?", view: messages.ViewHelp, cursor: 2},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := NewView(nil)

			_, cmd := v.Update(key(tt.key))

			assert.Equal(t, tt.view, viewChange(t, cmd))
			assert.Equal(t, tt.cursor, v.Selected())
		})
	}
}

func TestView_Quit(t *testing.T) {
	v := NewView(nil)
	_, cmd := v.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	v = NewView(nil)
	v.cursor = len(v.entries) - 1
	_, cmd = v.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_UnknownKeyIgnored(t *testing.T) {
	v := NewView(nil)

	_, cmd := v.Update(key("x"))

	assert.Nil(t, cmd)
	assert.Zero(t, v.Selected())
}

func TestSummarise(t *testing.T) {
	stats := &domain.IndexStats{Collection: "merkuze-hospital-d384", Count: 12, Dimension: 384}

	tests := []struct {
		name string
		msg  messages.StatsLoaded
		want string
	}{
		{
			name: "ready",
			msg:  messages.StatsLoaded{Readiness: domain.ReadinessReady, Stats: stats},
			want: "Knowledge base: 12 chunks in merkuze-hospital-d384",
		},
		{
			name: "empty collection",
			msg:  messages.StatsLoaded{Readiness: domain.ReadinessReady, Stats: &domain.IndexStats{}},
			want: "Knowledge base: empty, run `merkuze ingest` first",
		},
		{
			name: "loading wins over stats",
			msg:  messages.StatsLoaded{Readiness: domain.ReadinessLoading, Stats: stats},
			want: "Knowledge base: embedding model loading...",
		},
		{
			name: "model failed",
			msg:  messages.StatsLoaded{Readiness: domain.ReadinessFailed},
			want: "Knowledge base: embedding model failed to load",
		},
		{
			name: "index error",
			msg:  messages.StatsLoaded{Readiness: domain.ReadinessReady, Err: errors.New("vector index unavailable")},
			want: "Knowledge base: unavailable (vector index unavailable)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summarise(tt.msg))
		})
	}
}

func TestView_Render(t *testing.T) {
	v := NewView(nil)
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	v.Update(messages.StatsLoaded{
		Readiness: domain.ReadinessReady,
		Stats:     &domain.IndexStats{Collection: "merkuze-hospital-d384", Count: 3},
	})

	out := v.View()

	assert.Contains(t, out, "Merkuze")
	assert.Contains(t, out, "Hospital Information Assistant")
	assert.Contains(t, out, "> ")
	assert.Contains(t, out, "[a] Ask a question")
	assert.Contains(t, out, "[d] Knowledge documents")
	assert.Contains(t, out, "[q] Quit")
	assert.Contains(t, out, "ingested hospital knowledge base")
	assert.Contains(t, out, "3 chunks in merkuze-hospital-d384")

	// the hint follows the cursor
	v.Update(key("down"))
	assert.Contains(t, v.View(), "Browse or remove uploaded documents.")
}
