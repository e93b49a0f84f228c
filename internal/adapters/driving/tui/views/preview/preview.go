// Package preview provides the scrollable document view of the TUI.
package preview

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/custodia-labs/livepreview/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/livepreview/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/livepreview/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/livepreview/internal/core/domain"
)

// SettleDelay is the quiet period after the last scroll before the
// position is reported as settled.
const SettleDelay = 250 * time.Millisecond

// horizontalStep is the number of columns moved per left/right key.
const horizontalStep = 4

// View shows the committed pages and owns the scroll position.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	generation domain.Generation
	committed  bool
	lines      []string
	rules      map[int]bool
	maxWidth   int

	x, y   int
	width  int
	height int

	// seq increases with every scroll; only the newest settle tick fires.
	seq int

	onScroll func(domain.ScrollPosition)
}

// NewView creates an empty preview.
// onScroll, if set, receives every position change as it happens.
func NewView(s *styles.Styles, km *keymap.KeyMap, onScroll func(domain.ScrollPosition)) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:   s,
		keymap:   km,
		width:    80,
		height:   24,
		onScroll: onScroll,
	}
}

// Update handles messages for the preview.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.PagesCommitted:
		v.setPages(msg.Generation, msg.Pages)
		return v, nil

	case messages.PositionRequested:
		v.scrollTo(msg.Position.X, msg.Position.Y)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case tea.MouseMsg:
		return v.handleMouseMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	x, y := v.x, v.y
	switch {
	case keymap.Matches(k, v.keymap.Up):
		y--
	case keymap.Matches(k, v.keymap.Down):
		y++
	case keymap.Matches(k, v.keymap.Left):
		x -= horizontalStep
	case keymap.Matches(k, v.keymap.Right):
		x += horizontalStep
	case keymap.Matches(k, v.keymap.PageUp):
		y -= v.visibleLines()
	case keymap.Matches(k, v.keymap.PageDown):
		y += v.visibleLines()
	case keymap.Matches(k, v.keymap.Top):
		y = 0
	case keymap.Matches(k, v.keymap.Bottom):
		y = v.maxY()
	default:
		return v, nil
	}
	return v, v.userScroll(x, y)
}

func (v *View) handleMouseMsg(msg tea.MouseMsg) (*View, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return v, v.userScroll(v.x, v.y-3)
	case tea.MouseButtonWheelDown:
		return v, v.userScroll(v.x, v.y+3)
	case tea.MouseButtonWheelLeft:
		return v, v.userScroll(v.x-horizontalStep, v.y)
	case tea.MouseButtonWheelRight:
		return v, v.userScroll(v.x+horizontalStep, v.y)
	}
	return v, nil
}

// userScroll moves the view and schedules a settle tick for this scroll.
func (v *View) userScroll(x, y int) tea.Cmd {
	if !v.scrollTo(x, y) {
		return nil
	}
	v.seq++
	seq := v.seq
	return tea.Tick(SettleDelay, func(time.Time) tea.Msg {
		return messages.ScrollSettled{Seq: seq}
	})
}

// scrollTo clamps and applies a position. It reports whether it moved.
func (v *View) scrollTo(x, y int) bool {
	p := domain.ScrollPosition{X: x, Y: y}.Clamp(v.maxX(), v.maxY())
	if p.X == v.x && p.Y == v.y {
		return false
	}
	v.x, v.y = p.X, p.Y
	if v.onScroll != nil {
		v.onScroll(p)
	}
	return true
}

// setPages flattens pages into lines, separated by a page rule.
// The current offsets are re-clamped against the new content.
func (v *View) setPages(gen domain.Generation, pages []domain.RenderedPage) {
	v.generation = gen
	v.committed = true
	v.lines = nil
	v.rules = make(map[int]bool)
	v.maxWidth = 0
	for i, page := range pages {
		if i > 0 {
			v.rules[len(v.lines)] = true
			v.lines = append(v.lines, v.pageRule(page.Index))
		}
		for _, line := range page.Lines {
			v.lines = append(v.lines, line)
			if w := runewidth.StringWidth(line); w > v.maxWidth {
				v.maxWidth = w
			}
		}
	}
	v.scrollTo(v.x, v.y)
}

func (v *View) pageRule(index int) string {
	label := fmt.Sprintf(" page %d ", index+1)
	width := v.width - runewidth.StringWidth(label)
	if width < 4 {
		width = 4
	}
	left := width / 2
	return strings.Repeat("─", left) + label + strings.Repeat("─", width-left)
}

func (v *View) visibleLines() int {
	if v.height < 1 {
		return 1
	}
	return v.height
}

func (v *View) maxY() int {
	return len(v.lines) - v.visibleLines()
}

func (v *View) maxX() int {
	return v.maxWidth - v.width
}

// View renders the visible window of the document.
func (v *View) View() string {
	if !v.committed {
		return v.pad([]string{v.styles.Muted.Render("Waiting for document...")})
	}
	if len(v.lines) == 0 {
		return v.pad([]string{v.styles.Muted.Render("(empty document)")})
	}

	end := v.y + v.visibleLines()
	if end > len(v.lines) {
		end = len(v.lines)
	}
	out := make([]string, 0, end-v.y)
	for i := v.y; i < end; i++ {
		if v.rules[i] {
			out = append(out, v.styles.PageBreak.Render(v.lines[i]))
			continue
		}
		out = append(out, v.styles.Page.Render(v.window(v.lines[i])))
	}
	return v.pad(out)
}

// window cuts line to the horizontal viewport.
func (v *View) window(line string) string {
	if v.x > 0 {
		line = runewidth.TruncateLeft(line, v.x, "")
	}
	return runewidth.Truncate(line, v.width, "")
}

// pad fills the view to its full height so the status bar stays put.
func (v *View) pad(lines []string) string {
	for len(lines) < v.visibleLines() {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// Settled reports whether seq belongs to the most recent scroll.
func (v *View) Settled(seq int) bool {
	return seq == v.seq
}

// SetDimensions sets the size of the document area.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.scrollTo(v.x, v.y)
}

// Position returns the current offsets.
func (v *View) Position() domain.ScrollPosition {
	return domain.ScrollPosition{X: v.x, Y: v.y}
}

// Generation returns the generation on screen.
func (v *View) Generation() domain.Generation {
	return v.generation
}

// Lines returns the flattened document lines.
func (v *View) Lines() []string {
	return v.lines
}
