package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeByName(t *testing.T) {
	for _, name := range ThemeNames() {
		t.Run(name, func(t *testing.T) {
			theme, err := ThemeByName(name)
			require.NoError(t, err)

			assert.Equal(t, name, theme.Name)
			for role, c := range map[string]lipgloss.Color{
				"assistant": theme.Assistant,
				"patient":   theme.Patient,
				"text":      theme.Text,
				"faint":     theme.Faint,
				"panel":     theme.Panel,
				"frame":     theme.Frame,
				"caution":   theme.Caution,
				"alert":     theme.Alert,
			} {
				assert.NotEmpty(t, string(c), role)
			}
			assert.NotEqual(t, theme.Assistant, theme.Patient, "turns must be told apart")
			assert.NotEqual(t, theme.Caution, theme.Alert)
		})
	}
}

func TestThemeByName_Default(t *testing.T) {
	theme, err := ThemeByName("")

	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme.Name)
	assert.Equal(t, DefaultTheme(), theme)
}

func TestThemeByName_Unknown(t *testing.T) {
	theme, err := ThemeByName("solarized")

	assert.Nil(t, theme)
	assert.ErrorContains(t, err, `unknown theme "solarized"`)
	assert.ErrorContains(t, err, ThemeHighContrast)
}

func TestThemeByName_ReturnsCopy(t *testing.T) {
	a, _ := ThemeByName(ThemeLight)
	a.Assistant = "#000000"

	b, _ := ThemeByName(ThemeLight)
	assert.NotEqual(t, a.Assistant, b.Assistant)
}

func TestThemeNames(t *testing.T) {
	assert.Equal(t, []string{ThemeDark, ThemeHighContrast, ThemeLight}, ThemeNames())
}

func TestNewStyles(t *testing.T) {
	assert.Equal(t, ThemeDark, NewStyles(nil).Theme().Name)

	theme, _ := ThemeByName(ThemeHighContrast)
	s := NewStyles(theme)
	assert.Same(t, theme, s.Theme())

	for name, style := range map[string]lipgloss.Style{
		"title":    s.Title,
		"question": s.Question,
		"answer":   s.Answer,
		"fallback": s.Fallback,
		"error":    s.Error,
		"status":   s.StatusBar,
		"input":    s.InputField,
	} {
		assert.NotEqual(t, lipgloss.Style{}, style, name)
		assert.Contains(t, style.Render("visiting hours"), "visiting hours", name)
	}
}
