package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
)

// acquisition is the handle of one fetch+parse attempt.
// Destroy stops it delivering results; it never pre-empts host work.
type acquisition struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func newAcquisition(parent context.Context) *acquisition {
	ctx, cancel := context.WithCancel(parent)
	return &acquisition{ctx: ctx, cancel: cancel}
}

// Destroy tears the handle down. Calling it more than once is a no-op.
func (a *acquisition) Destroy() {
	a.cancel()
}

// Destroyed reports whether the handle was torn down or its parent ended.
func (a *acquisition) Destroyed() bool {
	return a.ctx.Err() != nil
}

// acquire obtains document bytes, from content when given or from source
// otherwise, and opens them with engine.
func (a *acquisition) acquire(
	source driven.DocumentSource,
	engine driven.RenderEngine,
	content []byte,
) (driven.Document, error) {
	data := content
	if data == nil {
		fetched, err := source.Fetch(a.ctx)
		if err != nil {
			return nil, a.tag(fmt.Errorf("fetching document: %w", err))
		}
		data = fetched
	}
	if a.Destroyed() {
		return nil, domain.ErrCancelled
	}

	doc, err := engine.Open(a.ctx, data)
	if err != nil {
		return nil, a.tag(fmt.Errorf("opening document: %w", err))
	}
	if a.Destroyed() {
		_ = doc.Release()
		return nil, domain.ErrCancelled
	}
	return doc, nil
}

// tag marks errors raised after teardown as cancellations.
func (a *acquisition) tag(err error) error {
	if a.Destroyed() {
		return fmt.Errorf("%w: %v", domain.ErrCancelled, err)
	}
	return err
}

// loadSession is one attempt, with retries, to render a generation.
type loadSession struct {
	gen     domain.Generation
	content []byte
	wg      *sync.WaitGroup

	mu          sync.Mutex
	retriesLeft int
	attempt     int
	handle      *acquisition
	retry       *time.Timer
	closed      bool
}

func newLoadSession(gen domain.Generation, content []byte, retries int, wg *sync.WaitGroup) *loadSession {
	return &loadSession{
		gen:         gen,
		content:     content,
		retriesLeft: retries,
		wg:          wg,
	}
}

// begin tears down the previous handle and starts a new attempt.
// It returns nil when the session has been closed.
func (s *loadSession) begin(parent context.Context) (*acquisition, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, s.attempt
	}
	if s.handle != nil {
		s.handle.Destroy()
	}
	s.attempt++
	s.handle = newAcquisition(parent)
	return s.handle, s.attempt
}

// scheduleRetry arms the retry timer with a decremented budget.
// It reports false when the budget is spent or the session is closed.
func (s *loadSession) scheduleRetry(delay time.Duration, fire func()) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.retriesLeft <= 0 {
		return s.retriesLeft, false
	}
	s.retriesLeft--
	s.wg.Add(1)
	s.retry = time.AfterFunc(delay, func() {
		defer s.wg.Done()
		fire()
	})
	return s.retriesLeft, true
}

// remaining returns the retry budget left.
func (s *loadSession) remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retriesLeft
}

// teardown destroys the active handle and drops any pending retry.
// It is idempotent.
func (s *loadSession) teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.handle != nil {
		s.handle.Destroy()
	}
	if s.retry != nil && s.retry.Stop() {
		s.wg.Done()
	}
	s.retry = nil
}
