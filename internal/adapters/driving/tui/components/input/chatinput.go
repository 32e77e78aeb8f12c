// Package input is the single-line question prompt of the chat screen.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/styles"
)

// MaxQuestionLength bounds a single chat message.
const MaxQuestionLength = 1000

// ChatInput is a text field that also recalls earlier questions with the
// up and down arrows. Recall keeps whatever was being typed and restores it
// when the user arrows past the newest question.
type ChatInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int

	history []string
	recall  int // index into history; len(history) means the draft
	draft   string
}

func NewChatInput(s *styles.Styles) *ChatInput {
	if s == nil {
		s = styles.DefaultStyles()
	}
	ti := textinput.New()
	ti.Placeholder = "Ask about departments, doctors, visiting hours..."
	ti.CharLimit = MaxQuestionLength
	ti.Width = 50
	ti.Focus()
	return &ChatInput{textinput: ti, styles: s, width: 50}
}

func (c *ChatInput) Init() tea.Cmd { return textinput.Blink }

func (c *ChatInput) Update(msg tea.Msg) (*ChatInput, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && c.Focused() {
		switch k.Type {
		case tea.KeyUp:
			c.step(-1)
			return c, nil
		case tea.KeyDown:
			c.step(1)
			return c, nil
		}
	}
	var cmd tea.Cmd
	c.textinput, cmd = c.textinput.Update(msg)
	return c, cmd
}

func (c *ChatInput) step(delta int) {
	next := max(min(c.recall+delta, len(c.history)), 0)
	if next == c.recall {
		return
	}
	if c.recall == len(c.history) {
		c.draft = c.textinput.Value()
	}
	c.recall = next
	if next == len(c.history) {
		c.textinput.SetValue(c.draft)
	} else {
		c.textinput.SetValue(c.history[next])
	}
	c.textinput.CursorEnd()
}

// Remember adds a sent question to the recall list. Repeating the previous
// question does not add it twice.
func (c *ChatInput) Remember(question string) {
	if n := len(c.history); question != "" && (n == 0 || c.history[n-1] != question) {
		c.history = append(c.history, question)
	}
	c.recall, c.draft = len(c.history), ""
}

func (c *ChatInput) History() []string { return c.history }

func (c *ChatInput) View() string {
	label := c.styles.Question.Render("You: ")
	field := c.styles.InputField.Render(c.textinput.View())
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

func (c *ChatInput) Value() string { return c.textinput.Value() }

func (c *ChatInput) SetValue(value string) { c.textinput.SetValue(value) }

func (c *ChatInput) Focus() tea.Cmd { return c.textinput.Focus() }

func (c *ChatInput) Blur() { c.textinput.Blur() }

func (c *ChatInput) Focused() bool { return c.textinput.Focused() }

// SetWidth leaves room for the label and the field border.
func (c *ChatInput) SetWidth(width int) {
	c.width = width
	c.textinput.Width = max(width-12, 20)
}

func (c *ChatInput) Width() int { return c.width }

func (c *ChatInput) Reset() { c.textinput.Reset() }
