// Package doccontent shows the text of one uploaded knowledge document.
package doccontent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/messages"
	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/styles"
	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driving"
)

var errNoService = errors.New("document service not available")

// chrome is the number of rows taken by the title, rule, footer and help.
const chrome = 6

// View pages through a document. Lines are hard-wrapped by rune so long
// lines in other scripts never overflow the terminal.
type View struct {
	styles *styles.Styles
	docs   driving.DocumentService
	ctx    context.Context

	doc      *domain.KnowledgeDocument
	content  string
	lines    []string
	viewport viewport.Model
	width    int
	loading  bool
	err      error
}

func NewView(s *styles.Styles, docs driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	v := &View{styles: s, docs: docs, ctx: context.Background()}
	v.SetDimensions(80, 24)
	return v
}

func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

func (v *View) Init() tea.Cmd { return nil }

// SetDocument switches to doc and fetches it again, so a document removed
// since the list was loaded shows as an error instead of stale text.
func (v *View) SetDocument(doc *domain.KnowledgeDocument) tea.Cmd {
	v.doc = doc
	v.loading = true
	v.err = nil
	v.setContent("")

	docs, ctx := v.docs, v.ctx
	return func() tea.Msg {
		if doc == nil || docs == nil {
			return messages.DocumentContentLoaded{Err: errNoService}
		}
		fresh, err := docs.Get(ctx, doc.ID)
		if err != nil {
			return messages.DocumentContentLoaded{DocumentID: doc.ID, Err: err}
		}
		return messages.DocumentContentLoaded{DocumentID: doc.ID, Content: fresh.Content}
	}
}

func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		return v, v.scroll(msg.String())

	case messages.DocumentContentLoaded:
		if v.doc != nil && msg.DocumentID != "" && msg.DocumentID != v.doc.ID {
			return v, nil // the user already opened another document
		}
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.setContent(msg.Content)
		}

	case messages.ErrorOccurred:
		v.err = msg.Err
	}
	return v, nil
}

func (v *View) scroll(key string) tea.Cmd {
	vp := &v.viewport
	switch key {
	case "up", "k":
		vp.SetYOffset(vp.YOffset - 1)
	case "down", "j":
		vp.SetYOffset(vp.YOffset + 1)
	case "pgup", "ctrl+u":
		vp.SetYOffset(vp.YOffset - vp.Height)
	case "pgdown", "ctrl+d":
		vp.SetYOffset(vp.YOffset + vp.Height)
	case "home", "g":
		vp.GotoTop()
	case "end", "G":
		vp.GotoBottom()
	case "esc":
		return func() tea.Msg { return messages.ViewChanged{View: messages.ViewDocuments} }
	}
	return nil
}

func (v *View) setContent(content string) {
	v.content = content
	v.lines = wrap(content, max(v.width-4, 20))
	v.viewport.SetContent(strings.Join(v.lines, "\n"))
	v.viewport.GotoTop()
}

// wrap splits text into lines of at most width runes.
func wrap(text string, width int) []string {
	if text == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		for len(runes) > width {
			out = append(out, string(runes[:width]))
			runes = runes[width:]
		}
		out = append(out, string(runes))
	}
	return out
}

func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(v.title()))
	b.WriteString("\n" + strings.Repeat("─", max(min(v.width-4, 60), 0)) + "\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading content..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.lines) == 0:
		b.WriteString(v.styles.Muted.Render("(No content)"))
	default:
		b.WriteString(v.viewport.View())
		if footer := v.position(); footer != "" {
			b.WriteString("\n\n" + v.styles.Muted.Render(footer))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back"))
	return b.String()
}

func (v *View) title() string {
	switch {
	case v.doc == nil:
		return "Document"
	case v.doc.Title != "":
		return v.doc.Title
	default:
		return v.doc.ID
	}
}

// position is empty when the whole document fits on screen.
func (v *View) position() string {
	total, top, height := len(v.lines), v.viewport.YOffset, v.viewport.Height
	if total <= height {
		return ""
	}
	return fmt.Sprintf("  [%.0f%%] Line %d-%d of %d",
		v.viewport.ScrollPercent()*100, top+1, min(top+height, total), total)
}

// SetDimensions resizes the page and re-wraps the current text.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	offset := v.viewport.YOffset
	v.viewport = viewport.New(width, max(height-chrome, 1))
	v.lines = wrap(v.content, max(width-4, 20))
	v.viewport.SetContent(strings.Join(v.lines, "\n"))
	v.viewport.SetYOffset(offset)
}

func (v *View) Document() *domain.KnowledgeDocument { return v.doc }

func (v *View) Content() string { return v.content }

func (v *View) Err() error { return v.err }
