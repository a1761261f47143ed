// Package styles holds the colour palette and lipgloss styles of the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette every style is derived from.
type Theme struct {
	Primary    lipgloss.Color // titles, selection background
	Secondary  lipgloss.Color // section headers, recommendation frame
	Foreground lipgloss.Color
	Muted      lipgloss.Color // previews, help, hints
	Success    lipgloss.Color // verified and available badges
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
	Bar        lipgloss.Color // status bar background
}

// DefaultTheme is a dark palette with an orange accent.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    "#F97316",
		Secondary:  "#14B8A6",
		Foreground: "#CDD6F4",
		Muted:      "#6C7086",
		Success:    "#A6E3A1",
		Warning:    "#F9E2AF",
		Error:      "#F38BA8",
		Border:     "#45475A",
		Bar:        "#181825",
	}
}

// Styles are the rendered styles shared by every view.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Help     lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Border     lipgloss.Style

	// Badge marks a positive supplier attribute such as verified or available.
	Badge lipgloss.Style

	// Score renders the fused relevance next to a supplier name.
	Score lipgloss.Style

	// Recommendation frames the summary panel with a left rule.
	Recommendation lipgloss.Style
}

// NewStyles derives styles from theme, or from DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	framed := lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(theme.Border)

	return &Styles{
		theme:    theme,
		Title:    fg(theme.Primary).Bold(true),
		Subtitle: fg(theme.Secondary).Bold(true),
		Normal:   fg(theme.Foreground),
		Muted:    fg(theme.Muted),
		Selected: fg(theme.Foreground).Background(theme.Primary).Bold(true),
		Error:    fg(theme.Error),
		Success:  fg(theme.Success),
		Warning:  fg(theme.Warning),
		Help:     fg(theme.Muted),

		InputField: framed.Padding(0, 1),
		StatusBar:  fg(theme.Muted).Background(theme.Bar).Padding(0, 1),
		Border:     framed,

		Badge: fg(theme.Success).Italic(true),
		Score: fg(theme.Secondary),
		Recommendation: lipgloss.NewStyle().
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderForeground(theme.Secondary).
			PaddingLeft(1),
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
