// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/livepreview/internal/core/domain"
)

// Theme is the colour palette of the preview.
type Theme struct {
	Accent     lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Ready      lipgloss.Color
	Pending    lipgloss.Color
	Failed     lipgloss.Color
	BarBack    lipgloss.Color
	PageBorder lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:     lipgloss.Color("#7C3AED"),
		Text:       lipgloss.Color("#CDD6F4"),
		Muted:      lipgloss.Color("#6C7086"),
		Ready:      lipgloss.Color("#A6E3A1"),
		Pending:    lipgloss.Color("#F9E2AF"),
		Failed:     lipgloss.Color("#F38BA8"),
		BarBack:    lipgloss.Color("#181825"),
		PageBorder: lipgloss.Color("#45475A"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Page renders document lines.
	Page lipgloss.Style

	// PageBreak renders the separator between pages.
	PageBreak lipgloss.Style

	// Muted renders placeholders and hints.
	Muted lipgloss.Style

	// StatusBar frames the bottom line.
	StatusBar lipgloss.Style

	// Help renders key hints.
	Help lipgloss.Style

	states map[domain.PreviewState]lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	fg := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		theme:     theme,
		Page:      fg(theme.Text),
		PageBreak: fg(theme.PageBorder),
		Muted:     fg(theme.Muted),
		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.BarBack).
			Padding(0, 1),
		Help: fg(theme.Muted),
		states: map[domain.PreviewState]lipgloss.Style{
			domain.PreviewLoading:  fg(theme.Accent),
			domain.PreviewRetrying: fg(theme.Pending).Bold(true),
			domain.PreviewReady:    fg(theme.Ready),
			domain.PreviewFailed:   fg(theme.Failed).Bold(true),
		},
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// State returns the style for a preview state, Muted for unknown ones.
func (s *Styles) State(state domain.PreviewState) lipgloss.Style {
	if st, ok := s.states[state]; ok {
		return st
	}
	return s.Muted
}
