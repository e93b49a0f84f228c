package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
	"github.com/custodia-labs/livepreview/internal/core/ports/driving"
	"github.com/custodia-labs/livepreview/internal/logger"
)

// Ensure ChangeDetector implements the interface.
var _ driving.ServeService = (*ChangeDetector)(nil)

// Errors returned when constructing a ChangeDetector.
var (
	ErrMissingPath        = errors.New("serve: document path is required")
	ErrMissingBroadcaster = errors.New("serve: broadcaster is required")
)

// ChangeDetector decides when the served document has really changed.
// Filesystem events are only a hint: a change is published when the
// modification time moved and the bytes differ from the last published ones.
type ChangeDetector struct {
	path        string
	inline      bool
	broadcaster driven.Broadcaster

	mu        sync.Mutex
	modified  time.Time
	published []byte
	sent      int
}

// NewChangeDetector creates a detector for path. With inline set every
// published change carries the new bytes.
func NewChangeDetector(path string, inline bool, broadcaster driven.Broadcaster) (*ChangeDetector, error) {
	if path == "" {
		return nil, ErrMissingPath
	}
	if broadcaster == nil {
		return nil, ErrMissingBroadcaster
	}
	return &ChangeDetector{
		path:        path,
		inline:      inline,
		broadcaster: broadcaster,
	}, nil
}

// Path returns the served document path.
func (d *ChangeDetector) Path() string {
	return d.path
}

// Prime records the current file state without publishing, so the first
// event after startup is compared against what viewers already have.
func (d *ChangeDetector) Prime() error {
	data, modified, err := d.read()
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.modified = modified
	d.published = data
	return nil
}

// Check publishes a change if the file moved on since the last check.
func (d *ChangeDetector) Check(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	info, err := os.Stat(d.path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", d.path, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if info.ModTime().Equal(d.modified) {
		return false, nil
	}
	d.modified = info.ModTime()

	data, err := os.ReadFile(d.path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", d.path, err)
	}
	if d.published != nil && bytes.Equal(data, d.published) {
		logger.Debug("serve: %s touched but unchanged", d.path)
		return false, nil
	}
	d.published = data

	d.publishLocked(data)
	return true, nil
}

// ForceReload re-reads the file and publishes it whether or not it changed.
// If the read fails the last published bytes are sent instead.
func (d *ChangeDetector) ForceReload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	data, modified, err := d.read()
	switch {
	case err == nil:
		d.modified = modified
		d.published = data
	case d.published == nil:
		return err
	default:
		logger.Warn("serve: %v; republishing last known content", err)
	}
	d.publishLocked(d.published)
	return nil
}

func (d *ChangeDetector) read() ([]byte, time.Time, error) {
	info, err := os.Stat(d.path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("stat %s: %w", d.path, err)
	}
	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read %s: %w", d.path, err)
	}
	return data, info.ModTime(), nil
}

// Status summarises the serve side.
func (d *ChangeDetector) Status() domain.ServeStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return domain.ServeStatus{
		Path:              d.path,
		LastModified:      d.modified,
		Clients:           d.broadcaster.Clients(),
		NotificationsSent: d.sent,
	}
}

// Run checks the document after every debounced watcher batch until ctx ends.
// Check errors are logged and never stop the loop.
func (d *ChangeDetector) Run(ctx context.Context, watcher driven.ChangeWatcher) error {
	err := watcher.Watch(ctx, func() {
		if _, err := d.Check(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("Failed to check %s for changes: %v", d.path, err)
		}
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("watching for changes: %w", err)
	}
	return nil
}

// publishLocked sends a change. Caller must hold d.mu.
func (d *ChangeDetector) publishLocked(data []byte) {
	change := domain.DocumentChange{
		Path:       d.path,
		ModifiedAt: d.modified,
	}
	if d.inline {
		change.Content = bytes.Clone(data)
	}
	d.broadcaster.Publish(change)
	d.sent++
	logger.Info("Document changed, notified %d viewer(s).", d.broadcaster.Clients())
}
