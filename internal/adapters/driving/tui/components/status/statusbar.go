// Package status provides the status bar shown under the preview.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/livepreview/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/livepreview/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/livepreview/internal/core/domain"
)

// Bar displays the coordinator status and keybinding hints.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	status domain.PreviewStatus
	width  int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		status: domain.PreviewStatus{State: domain.PreviewLoading},
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	st := s.status
	style := s.styles.State(st.State)

	var text string
	switch st.State {
	case domain.PreviewLoading:
		text = "Loading..."
	case domain.PreviewRetrying:
		text = fmt.Sprintf("Retrying (%d left)", st.RetriesLeft)
	case domain.PreviewReady:
		text = fmt.Sprintf("%d pages", st.Pages)
		if st.Pages == 1 {
			text = "1 page"
		}
	case domain.PreviewFailed:
		text = "Failed"
	default:
		text = string(st.State)
	}
	if st.Message != "" && st.State != domain.PreviewRetrying {
		text += ": " + st.Message
	}

	gen := s.styles.Muted.Render(fmt.Sprintf("#%d ", st.Generation))
	return gen + style.Render(text)
}

func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		hints = append(hints, hint(b))
	}
	return s.styles.Help.Render(strings.Join(hints, " | "))
}

func hint(b key.Binding) string {
	h := b.Help()
	return fmt.Sprintf("%s: %s", h.Key, h.Desc)
}

// SetStatus replaces the displayed status.
func (s *Bar) SetStatus(status domain.PreviewStatus) {
	s.status = status
}

// Status returns the displayed status.
func (s *Bar) Status() domain.PreviewStatus {
	return s.status
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}
