// Package headless provides a surface for viewers without a terminal.
// Committed pages are written to a stream and status goes to the log.
package headless

import (
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
	"github.com/custodia-labs/livepreview/internal/logger"
)

var (
	_ driven.Surface  = (*Surface)(nil)
	_ driven.Viewport = (*Surface)(nil)
)

// Surface writes every committed generation to out.
// It has no user scrolling, so the position only changes through SetPosition.
type Surface struct {
	mu      sync.Mutex
	out     io.Writer
	pos     domain.ScrollPosition
	lines   int
	commits int
}

// New creates a surface writing to out. A nil out discards page content.
func New(out io.Writer) *Surface {
	if out == nil {
		out = io.Discard
	}
	return &Surface{out: out}
}

// Commit writes pages in order, each preceded by a header line.
func (s *Surface) Commit(gen domain.Generation, pages []domain.RenderedPage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := 0
	for _, p := range pages {
		if _, err := fmt.Fprintf(s.out, "--- generation %d, page %d/%d ---\n", gen, p.Index+1, len(pages)); err != nil {
			return fmt.Errorf("writing page header: %w", err)
		}
		for _, line := range p.Lines {
			if _, err := fmt.Fprintln(s.out, line); err != nil {
				return fmt.Errorf("writing page %d: %w", p.Index, err)
			}
		}
		lines += len(p.Lines)
	}
	s.lines = lines
	s.commits++
	s.pos = s.pos.Clamp(0, lines-1)

	logger.Info("Rendered generation %d (%d pages).", gen, len(pages))
	return nil
}

// ShowStatus logs status at a level matching its state.
func (s *Surface) ShowStatus(status domain.PreviewStatus) {
	switch status.State {
	case domain.PreviewFailed:
		logger.Error("Generation %d failed: %s", status.Generation, status.Message)
	case domain.PreviewRetrying:
		logger.Debug("Generation %d retrying, %d left.", status.Generation, status.RetriesLeft)
	default:
		logger.Debug("Generation %d %s.", status.Generation, status.State)
	}
}

// Position returns the stored position.
func (s *Surface) Position() domain.ScrollPosition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// SetPosition stores p clamped to the committed line count.
func (s *Surface) SetPosition(p domain.ScrollPosition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = p.Clamp(0, s.lines-1)
}

// OnScrollSettled is a no-op: nothing scrolls a headless surface.
func (s *Surface) OnScrollSettled(func()) {}

// Commits returns how many generations were written.
func (s *Surface) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}
