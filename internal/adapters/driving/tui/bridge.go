package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/livepreview/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
	"github.com/custodia-labs/livepreview/internal/logger"
)

var (
	_ driven.Surface  = (*Bridge)(nil)
	_ driven.Viewport = (*Bridge)(nil)
)

// Bridge is the surface and viewport seen by the coordinator.
// Calls arrive on coordinator goroutines and are forwarded to the
// program's event loop; the scroll position is mirrored here so it
// can be read without going through the loop.
type Bridge struct {
	mu      sync.Mutex
	send    func(tea.Msg)
	pos     domain.ScrollPosition
	settled func()
}

// NewBridge creates a bridge that drops messages until attached.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach routes messages to p.
func (b *Bridge) Attach(p *tea.Program) {
	b.attach(p.Send)
}

func (b *Bridge) attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *Bridge) dispatch(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send == nil {
		logger.Debug("Terminal not attached, dropping %T.", msg)
		return
	}
	send(msg)
}

// Commit shows pages in place of whatever is on screen.
func (b *Bridge) Commit(gen domain.Generation, pages []domain.RenderedPage) error {
	b.dispatch(messages.PagesCommitted{Generation: gen, Pages: pages})
	return nil
}

// ShowStatus updates the status bar.
func (b *Bridge) ShowStatus(status domain.PreviewStatus) {
	b.dispatch(messages.StatusChanged{Status: status})
}

// Position returns the last position reported by the view.
func (b *Bridge) Position() domain.ScrollPosition {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pos
}

// SetPosition asks the view to scroll. The view clamps p and reports
// the result back through record.
func (b *Bridge) SetPosition(p domain.ScrollPosition) {
	b.mu.Lock()
	b.pos = p
	b.mu.Unlock()
	b.dispatch(messages.PositionRequested{Position: p})
}

// OnScrollSettled registers fn, replacing any earlier callback.
func (b *Bridge) OnScrollSettled(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settled = fn
}

// record mirrors a position change made by the view.
func (b *Bridge) record(p domain.ScrollPosition) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pos = p
}

// notifySettled runs the registered callback, if any.
func (b *Bridge) notifySettled() {
	b.mu.Lock()
	fn := b.settled
	b.mu.Unlock()
	if fn != nil {
		fn()
	}
}
