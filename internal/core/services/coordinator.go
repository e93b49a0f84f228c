package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
	"github.com/custodia-labs/livepreview/internal/core/ports/driving"
	"github.com/custodia-labs/livepreview/internal/logger"
)

// Ensure Coordinator implements the interface.
var _ driving.PreviewCoordinator = (*Coordinator)(nil)

// Errors returned when constructing a Coordinator.
var (
	ErrMissingSource    = errors.New("coordinator: document source is required")
	ErrMissingEngine    = errors.New("coordinator: render engine is required")
	ErrMissingSurface   = errors.New("coordinator: surface is required")
	ErrMissingViewport  = errors.New("coordinator: viewport is required")
	ErrMissingPositions = errors.New("coordinator: position store is required")
)

// CoordinatorDeps aggregates the ports a Coordinator drives.
type CoordinatorDeps struct {
	Source    driven.DocumentSource
	Engine    driven.RenderEngine
	Surface   driven.Surface
	Viewport  driven.Viewport
	Positions driven.PositionStore

	// Render configures the pipeline. The zero value uses defaults.
	Render domain.RenderOptions

	// Retry bounds failing loads. The zero value uses domain.DefaultRetryPolicy.
	Retry domain.RetryPolicy
}

// Validate ensures all required ports are set.
func (d *CoordinatorDeps) Validate() error {
	switch {
	case d.Source == nil:
		return ErrMissingSource
	case d.Engine == nil:
		return ErrMissingEngine
	case d.Surface == nil:
		return ErrMissingSurface
	case d.Viewport == nil:
		return ErrMissingViewport
	case d.Positions == nil:
		return ErrMissingPositions
	}
	return nil
}

// Coordinator keeps the surface showing the most recently requested
// document. It owns the generation counter and the single active load
// session; starting a session always supersedes the previous one.
type Coordinator struct {
	source    driven.DocumentSource
	engine    driven.RenderEngine
	surface   driven.Surface
	viewport  driven.Viewport
	positions *PositionKeeper
	pipeline  *RenderPipeline
	policy    domain.RetryPolicy

	mu      sync.Mutex
	counter domain.GenerationCounter
	active  *loadSession
	status  domain.PreviewStatus

	// shown describes the last committed generation.
	shownGen   domain.Generation
	shownPages int

	wg sync.WaitGroup
}

// NewCoordinator creates a coordinator at generation 0.
func NewCoordinator(deps CoordinatorDeps) (*Coordinator, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}

	policy := deps.Retry
	if policy == (domain.RetryPolicy{}) {
		policy = domain.DefaultRetryPolicy()
	}
	render := deps.Render
	if render == (domain.RenderOptions{}) {
		render = domain.DefaultRenderOptions()
	}

	return &Coordinator{
		source:    deps.Source,
		engine:    deps.Engine,
		surface:   deps.Surface,
		viewport:  deps.Viewport,
		positions: NewPositionKeeper(deps.Positions, deps.Viewport),
		pipeline:  NewRenderPipeline(render),
		policy:    policy,
	}, nil
}

// Positions returns the keeper shared with the reload trigger.
func (c *Coordinator) Positions() *PositionKeeper {
	return c.positions
}

// InitialLoad binds scroll-settled to position capture and loads generation 0.
func (c *Coordinator) InitialLoad(ctx context.Context) {
	c.viewport.OnScrollSettled(func() {
		if err := c.positions.Capture(ctx); err != nil {
			logger.Warn("Failed to save scroll position: %v", err)
		}
	})
	c.Reload(ctx, domain.InitialGeneration, nil)
}

// Advance makes a new generation current.
func (c *Coordinator) Advance() domain.Generation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counter.Advance()
}

// Current returns the current generation.
func (c *Coordinator) Current() domain.Generation {
	return c.counter.Current()
}

// IsStale reports whether gen has been superseded.
func (c *Coordinator) IsStale(gen domain.Generation) bool {
	return c.counter.IsStale(gen)
}

// Reload starts a load session for gen, tearing down the active one.
// A gen that is already stale is dropped.
func (c *Coordinator) Reload(ctx context.Context, gen domain.Generation, content []byte) {
	c.mu.Lock()
	if c.counter.IsStale(gen) {
		c.mu.Unlock()
		logger.Debug("Cancelling outdated load for generation %d.", gen)
		return
	}
	if c.active != nil {
		c.active.teardown()
	}
	session := newLoadSession(gen, content, c.policy.Ceiling, &c.wg)
	c.active = session
	c.setStatusLocked(domain.PreviewStatus{
		State:       domain.PreviewLoading,
		Generation:  gen,
		RetriesLeft: c.policy.Ceiling,
	})
	c.mu.Unlock()

	c.startAttempt(ctx, session)
}

// Status returns the most recent status report.
func (c *Coordinator) Status() domain.PreviewStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Wait blocks until all session goroutines and pending retries finish.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// startAttempt begins one acquisition for session if it is still current.
func (c *Coordinator) startAttempt(ctx context.Context, session *loadSession) {
	c.mu.Lock()
	if c.counter.IsStale(session.gen) || c.active != session {
		c.mu.Unlock()
		logger.Debug("Cancelling outdated load for generation %d.", session.gen)
		return
	}
	handle, attempt := session.begin(ctx)
	if handle == nil {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		c.runAttempt(ctx, session, handle, attempt)
	}()
}

func (c *Coordinator) runAttempt(ctx context.Context, session *loadSession, handle *acquisition, attempt int) {
	started := time.Now()

	doc, err := handle.acquire(c.source, c.engine, session.content)
	if err != nil {
		c.handleFailure(ctx, session, attempt, err)
		return
	}
	logger.Debug("Downloaded document for generation %d in %s.", session.gen, time.Since(started))

	if c.IsStale(session.gen) {
		logger.Debug("Discarding outdated document for generation %d.", session.gen)
		if err := doc.Release(); err != nil {
			logger.Debug("Releasing outdated document: %v", err)
		}
		return
	}

	renderStart := time.Now()
	committed, err := c.pipeline.Render(handle.ctx, session.gen, doc, c.IsStale, c.commit)
	if err != nil {
		c.handleFailure(ctx, session, attempt, err)
		return
	}
	if !committed {
		return
	}
	logger.Debug("Rendered generation %d in %s.", session.gen, time.Since(renderStart))

	if _, err := c.positions.Restore(ctx); err != nil {
		logger.Warn("Failed to restore scroll position: %v", err)
	}
	c.finish(session)
}

// commit replaces the surface contents if gen is still current. The check
// and the replacement happen under the same lock as Advance.
func (c *Coordinator) commit(gen domain.Generation, pages []domain.RenderedPage) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counter.IsStale(gen) {
		return false, nil
	}
	if err := c.surface.Commit(gen, pages); err != nil {
		return false, fmt.Errorf("committing pages: %w", err)
	}
	c.shownGen, c.shownPages = gen, len(pages)
	c.setStatusLocked(domain.PreviewStatus{
		State:      domain.PreviewReady,
		Generation: gen,
		Pages:      len(pages),
	})
	return true, nil
}

// finish releases a session that rendered successfully.
func (c *Coordinator) finish(session *loadSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	session.teardown()
	if c.active == session {
		c.active = nil
	}
}

func (c *Coordinator) handleFailure(ctx context.Context, session *loadSession, attempt int, err error) {
	kind := domain.ClassifyLoadError(err)
	if kind == domain.LoadCancelled {
		logger.Debug("Document load for generation %d cancelled.", session.gen)
		return
	}
	if c.IsStale(session.gen) {
		logger.Debug("Ignoring failure of outdated generation %d: %v", session.gen, err)
		return
	}

	if kind == domain.LoadInvalidContent {
		// A document rewritten mid-read looks exactly like a corrupt one;
		// the next notification brings a fresh copy either way.
		logger.Warn("Document for generation %d could not be parsed, waiting for the next change: %v",
			session.gen, err)
		c.keepShown(session.gen, "document could not be parsed")
		c.finish(session)
		return
	}

	left, scheduled := session.scheduleRetry(c.policy.Delay, func() {
		c.startAttempt(ctx, session)
	})
	if scheduled {
		logger.Warn("Failed to load document. Retrying... (%d retries left): %v", left, err)
		c.setStatus(session.gen, domain.PreviewStatus{
			State:       domain.PreviewRetrying,
			Generation:  session.gen,
			RetriesLeft: left,
			Message:     err.Error(),
		})
		return
	}

	loadErr := &domain.LoadError{
		Kind:       domain.LoadExhausted,
		Generation: session.gen,
		Attempt:    attempt,
		Err:        err,
	}
	logger.Error("Failed to load document after %d attempts: %v", attempt, loadErr)
	c.setStatus(session.gen, domain.PreviewStatus{
		State:      domain.PreviewFailed,
		Generation: session.gen,
		Message:    loadErr.Error(),
	})
	c.finish(session)
}

// keepShown reports that the surface still holds the last committed
// generation, if gen is still current.
func (c *Coordinator) keepShown(gen domain.Generation, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counter.IsStale(gen) {
		return
	}
	c.setStatusLocked(domain.PreviewStatus{
		State:      domain.PreviewReady,
		Generation: c.shownGen,
		Pages:      c.shownPages,
		Message:    message,
	})
}

// setStatus records and shows status if gen is still current.
func (c *Coordinator) setStatus(gen domain.Generation, status domain.PreviewStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counter.IsStale(gen) {
		return
	}
	c.setStatusLocked(status)
}

// setStatusLocked records and shows status. Caller must hold c.mu.
func (c *Coordinator) setStatusLocked(status domain.PreviewStatus) {
	status.UpdatedAt = time.Now()
	c.status = status
	c.surface.ShowStatus(status)
}
