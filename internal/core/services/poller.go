package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/livepreview/internal/core/ports/driving"
	"github.com/custodia-labs/livepreview/internal/logger"
)

// Poller periodically asks a ServeService to check the served document.
// It backs up the filesystem watcher on mounts where events are unreliable.
type Poller struct {
	interval time.Duration
	serve    driving.ServeService

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewPoller creates a poller. A non-positive interval disables it.
func NewPoller(interval time.Duration, serve driving.ServeService) *Poller {
	return &Poller{
		interval: interval,
		serve:    serve,
	}
}

// Enabled reports whether the poller has a usable interval.
func (p *Poller) Enabled() bool {
	return p.interval > 0 && p.serve != nil
}

// Start runs the poll loop. It blocks until Stop is called or ctx ends.
func (p *Poller) Start(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil // Already running
	}
	p.running = true
	p.stopCh = make(chan struct{})
	stopCh := p.stopCh
	p.wg.Add(1)
	p.mu.Unlock()
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// Stop ends the poll loop and waits for it to return.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	close(p.stopCh)
	p.mu.Unlock()

	p.wg.Wait()

	return nil
}

func (p *Poller) poll(ctx context.Context) {
	changed, err := p.serve.Check(ctx)
	if err != nil {
		logger.Warn("poller: check failed: %v", err)
		return
	}
	if changed {
		logger.Debug("poller: picked up a change the watcher missed")
	}
}
