// Package list renders the passages an answer was grounded on.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/styles"
	"github.com/merkuze-health/merkuze/internal/core/domain"
)

// linesPerMatch is the header line plus one line of preview.
const linesPerMatch = 2

// SourceList shows matches in retrieval order with a cursor. The window
// only scrolls when the cursor leaves it.
type SourceList struct {
	styles  *styles.Styles
	matches []domain.Match

	selected int
	offset   int
	width    int
	height   int
}

func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &SourceList{styles: s, width: 80, height: 10}
}

func (r *SourceList) Init() tea.Cmd { return nil }

func (r *SourceList) Update(msg tea.Msg) (*SourceList, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

func (r *SourceList) View() string {
	if len(r.matches) == 0 {
		return r.styles.Muted.Render("No sources")
	}

	var b strings.Builder
	b.WriteString(r.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(r.matches))))
	b.WriteString("\n")
	end := min(r.offset+r.visible(), len(r.matches))
	for i := r.offset; i < end; i++ {
		b.WriteString("\n")
		b.WriteString(r.row(i))
	}
	return b.String()
}

// visible is how many matches fit under the title and blank line.
func (r *SourceList) visible() int {
	return max((r.height-2)/linesPerMatch, 1)
}

func (r *SourceList) row(i int) string {
	m := &r.matches[i]
	idWidth := max(r.width-20, 10)
	id := runewidth.FillRight(truncate(m.ID, idWidth), idWidth)
	score := fmt.Sprintf("%.3f", m.Score)

	var header string
	if i == r.selected {
		header = r.styles.Selected.Render("> " + id + "  " + score)
	} else {
		header = r.styles.Normal.Render("  "+id+"  ") + r.styles.Muted.Render(score)
	}
	preview := strings.Join(strings.Fields(m.Text), " ")
	return header + "\n" + r.styles.Muted.Render("    "+truncate(preview, max(r.width-6, 20)))
}

// truncate cuts s to n terminal cells, ending in "..." when cut.
func truncate(s string, n int) string {
	return runewidth.Truncate(s, n, "...")
}

// SetMatches replaces the list and puts the cursor on the best match.
func (r *SourceList) SetMatches(matches []domain.Match) {
	r.matches = matches
	r.selected, r.offset = 0, 0
}

func (r *SourceList) Matches() []domain.Match { return r.matches }

func (r *SourceList) Selected() int { return r.selected }

// SelectedMatch is nil for an empty list.
func (r *SourceList) SelectedMatch() *domain.Match {
	if r.selected >= len(r.matches) {
		return nil
	}
	return &r.matches[r.selected]
}

func (r *SourceList) MoveUp() { r.moveTo(r.selected - 1) }

func (r *SourceList) MoveDown() { r.moveTo(r.selected + 1) }

func (r *SourceList) moveTo(i int) {
	r.selected = max(min(i, len(r.matches)-1), 0)
	switch n := r.visible(); {
	case r.selected < r.offset:
		r.offset = r.selected
	case r.selected >= r.offset+n:
		r.offset = r.selected - n + 1
	}
}

func (r *SourceList) SetDimensions(width, height int) {
	r.width, r.height = width, height
	r.moveTo(r.selected)
}

func (r *SourceList) Count() int { return len(r.matches) }
