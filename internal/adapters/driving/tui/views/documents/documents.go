// Package documents lists the knowledge documents uploaded for ingestion.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/messages"
	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/styles"
	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driving"
)

var ErrNoDocumentService = errors.New("document service not available")

// ActionOption is an entry of the per-document action menu.
type ActionOption int

const (
	ActionShowContent ActionOption = iota
	ActionRemove
	ActionCancel
)

var actionLabels = [...]string{
	ActionShowContent: "Show Content",
	ActionRemove:      "Remove",
	ActionCancel:      "Cancel",
}

// chrome is the number of rows around the list: title, footer and help.
const chrome = 8

type View struct {
	styles *styles.Styles
	docs   driving.DocumentService
	ctx    context.Context

	list    []domain.KnowledgeDocument
	cursor  int
	offset  int
	width   int
	height  int
	loading bool
	err     error

	// menuOpen shows the actions for list[cursor]; action is the highlighted one.
	menuOpen bool
	action   ActionOption
}

func NewView(s *styles.Styles, docs driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s, docs: docs, ctx: context.Background(), width: 80, height: 24}
}

func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init is called each time the view is opened and starts from the top.
func (v *View) Init() tea.Cmd {
	v.cursor, v.offset = 0, 0
	v.menuOpen = false
	v.err = nil
	return v.reload()
}

func (v *View) reload() tea.Cmd {
	v.loading = true
	docs, ctx := v.docs, v.ctx
	return func() tea.Msg {
		if docs == nil {
			return messages.DocumentsLoaded{Err: ErrNoDocumentService}
		}
		list, err := docs.List(ctx)
		return messages.DocumentsLoaded{Documents: list, Err: err}
	}
}

// remove deletes the uploaded file only. Chunks already ingested from it stay
// searchable until the next full ingest or a reset.
func (v *View) remove(id string) tea.Cmd {
	docs, ctx := v.docs, v.ctx
	return func() tea.Msg {
		if docs == nil {
			return messages.DocumentRemoved{DocumentID: id, Err: ErrNoDocumentService}
		}
		return messages.DocumentRemoved{DocumentID: id, Err: docs.Remove(ctx, id)}
	}
}

func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		if v.menuOpen {
			return v, v.menuKey(msg.String())
		}
		return v, v.listKey(msg.String())

	case messages.DocumentsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.list = msg.Documents
			v.moveTo(min(v.cursor, len(v.list)-1))
		}

	case messages.DocumentRemoved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.reload()

	case messages.ErrorOccurred:
		v.err = msg.Err
	}
	return v, nil
}

func (v *View) listKey(key string) tea.Cmd {
	switch key {
	case "up", "k":
		v.moveTo(v.cursor - 1)
	case "down", "j":
		v.moveTo(v.cursor + 1)
	case "enter":
		if len(v.list) > 0 {
			v.menuOpen, v.action = true, ActionShowContent
		}
	case "r":
		return v.reload()
	case "esc":
		return func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	}
	return nil
}

func (v *View) menuKey(key string) tea.Cmd {
	switch key {
	case "up", "k":
		v.action = max(v.action-1, ActionShowContent)
	case "down", "j":
		v.action = min(v.action+1, ActionCancel)
	case "esc":
		v.menuOpen = false
	case "enter":
		v.menuOpen = false
		doc := v.SelectedDocument()
		if doc == nil {
			return nil
		}
		switch v.action {
		case ActionShowContent:
			picked := *doc
			return func() tea.Msg { return messages.DocumentSelected{Document: picked} }
		case ActionRemove:
			return v.remove(doc.ID)
		}
	}
	return nil
}

// moveTo clamps i into the list and scrolls it into view.
func (v *View) moveTo(i int) {
	v.cursor = max(min(i, len(v.list)-1), 0)
	rows := v.rows()
	switch {
	case v.cursor < v.offset:
		v.offset = v.cursor
	case v.cursor >= v.offset+rows:
		v.offset = v.cursor - rows + 1
	}
}

func (v *View) rows() int { return max(v.height-chrome, 1) }

func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Knowledge Documents (%d)", len(v.list))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.list) == 0:
		b.WriteString(v.styles.Muted.Render("No documents uploaded. Use `merkuze document add` to add one."))
	case v.menuOpen:
		return b.String() + v.menuView()
	default:
		b.WriteString(v.listView())
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] actions  [r] reload  [esc] back"))
	return b.String()
}

func (v *View) listView() string {
	var b strings.Builder
	end := min(v.offset+v.rows(), len(v.list))
	for i := v.offset; i < end; i++ {
		b.WriteString(v.row(i))
		b.WriteString("\n")
	}
	if len(v.list) > v.rows() {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", v.offset+1, end, len(v.list))))
	}
	return b.String()
}

// row renders one document: a title column, then file name and upload time.
func (v *View) row(i int) string {
	doc := &v.list[i]
	col := max(v.width/2-4, 10)
	name := label(doc)
	if len(name) > col {
		name = name[:col-3] + "..."
	}

	detail := doc.Filename
	if !doc.UploadedAt.IsZero() {
		detail = strings.TrimSpace(detail + "  " + doc.UploadedAt.Local().Format("2006-01-02 15:04"))
	}

	if i == v.cursor {
		return v.styles.Selected.Render(fmt.Sprintf("> %-*s  %s", col, name, detail))
	}
	return v.styles.Normal.Render(fmt.Sprintf("  %-*s  ", col, name)) + v.styles.Muted.Render(detail)
}

func (v *View) menuView() string {
	var b strings.Builder
	if doc := v.SelectedDocument(); doc != nil {
		b.WriteString(v.styles.Subtitle.Render("Actions for: " + label(doc)))
		b.WriteString("\n\n")
	}
	for opt, text := range actionLabels {
		if ActionOption(opt) == v.action {
			b.WriteString(v.styles.Selected.Render("> " + text))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + text))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] select  [esc] cancel"))
	return b.String()
}

// label is the title, or the ID for documents uploaded without one.
func label(doc *domain.KnowledgeDocument) string {
	if doc.Title != "" {
		return doc.Title
	}
	return doc.ID
}

func (v *View) SetDimensions(width, height int) {
	v.width, v.height = width, height
	v.moveTo(v.cursor)
}

func (v *View) Documents() []domain.KnowledgeDocument { return v.list }

func (v *View) SelectedIndex() int { return v.cursor }

// SelectedDocument is nil when the list is empty.
func (v *View) SelectedDocument() *domain.KnowledgeDocument {
	if v.cursor < len(v.list) {
		return &v.list[v.cursor]
	}
	return nil
}

func (v *View) IsShowingMenu() bool { return v.menuOpen }

func (v *View) Err() error { return v.err }
