// Package styles holds the colour palettes and lipgloss styles of the TUI.
package styles

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a named palette. Each colour has one role in the chat screen.
type Theme struct {
	Name string

	Assistant lipgloss.Color // titles, assistant turns, selection
	Patient   lipgloss.Color // the user's turns
	Text      lipgloss.Color
	Faint     lipgloss.Color // hints, help, timestamps
	Panel     lipgloss.Color // status bar background
	Frame     lipgloss.Color // input and list borders
	Caution   lipgloss.Color // fallback answers
	Alert     lipgloss.Color // errors
}

// Theme names accepted by ThemeByName.
const (
	ThemeDark         = "dark"
	ThemeLight        = "light"
	ThemeHighContrast = "high-contrast"
)

var themes = map[string]Theme{
	ThemeDark: {
		Assistant: "#14B8A6",
		Patient:   "#60A5FA",
		Text:      "#CDD6F4",
		Faint:     "#6C7086",
		Panel:     "#181825",
		Frame:     "#45475A",
		Caution:   "#F9E2AF",
		Alert:     "#F38BA8",
	},
	ThemeLight: {
		Assistant: "#0F766E",
		Patient:   "#1D4ED8",
		Text:      "#1F2937",
		Faint:     "#6B7280",
		Panel:     "#E5E7EB",
		Frame:     "#9CA3AF",
		Caution:   "#B45309",
		Alert:     "#B91C1C",
	},
	// ward terminals and kiosks; ANSI colours survive any profile
	ThemeHighContrast: {
		Assistant: "14",
		Patient:   "11",
		Text:      "15",
		Faint:     "7",
		Panel:     "0",
		Frame:     "15",
		Caution:   "11",
		Alert:     "9",
	},
}

// ThemeNames lists the palettes in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ThemeByName returns a copy of the named palette. An empty name is the dark theme.
func ThemeByName(name string) (*Theme, error) {
	if name == "" {
		name = ThemeDark
	}
	t, ok := themes[name]
	if !ok {
		return nil, fmt.Errorf("unknown theme %q (want one of %v)", name, ThemeNames())
	}
	t.Name = name
	return &t, nil
}

// DefaultTheme returns the dark palette.
func DefaultTheme() *Theme {
	t, _ := ThemeByName(ThemeDark)
	return t
}

// Styles are the rendered styles every view draws with.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style

	Question lipgloss.Style
	Answer   lipgloss.Style
	Fallback lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
}

// NewStyles builds the styles for a palette; nil means DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	bold := func(c lipgloss.Color) lipgloss.Style { return fg(c).Bold(true) }

	return &Styles{
		theme: theme,

		Title:    bold(theme.Assistant),
		Subtitle: bold(theme.Patient),
		Normal:   fg(theme.Text),
		Muted:    fg(theme.Faint),
		Selected: bold(theme.Text).Background(theme.Assistant),
		Warning:  fg(theme.Caution),
		Error:    fg(theme.Alert),
		Help:     fg(theme.Faint),

		Question: bold(theme.Patient),
		Answer:   bold(theme.Assistant),
		Fallback: fg(theme.Caution).Italic(true),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Frame).
			Padding(0, 1),
		StatusBar: fg(theme.Faint).
			Background(theme.Panel).
			Padding(0, 1),
	}
}

// DefaultStyles returns NewStyles(DefaultTheme()).
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}
