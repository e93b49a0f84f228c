// Package watcher provides a debounced, recursive filesystem watcher
// built on fsnotify.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
	"github.com/custodia-labs/livepreview/internal/logger"
)

// Ensure Watcher implements the interfaces.
var (
	_ driven.ChangeWatcher  = (*Watcher)(nil)
	_ driven.ReloadNotifier = (*Watcher)(nil)
)

// Watcher reports one change per burst of filesystem events under root.
type Watcher struct {
	root     string
	debounce time.Duration
	fs       *fsnotify.Watcher

	closeOnce sync.Once
}

// New creates a watcher on root and every non-hidden directory below it.
// root may also be a single file.
func New(root string, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{root: root, debounce: debounce, fs: fw}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Watch blocks until ctx is cancelled, calling onChange after each quiet
// period of at least the debounce interval that follows relevant events.
func (w *Watcher) Watch(ctx context.Context, onChange func()) error {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				// Events were lost; assume something changed.
				timer.Reset(w.debounce)
				continue
			}
			logger.Warn("watcher: %v", err)

		case <-timer.C:
			onChange()
		}
	}
}

// Listen turns each debounced batch into a re-fetch event, so a viewer can
// follow a local file without a serve process.
func (w *Watcher) Listen(ctx context.Context, handle func(context.Context, domain.ReloadEvent)) error {
	err := w.Watch(ctx, func() {
		handle(ctx, domain.ReloadEvent{ReceivedAt: time.Now()})
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Close releases the underlying watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fs.Close()
	})
	return err
}

// handleEvent reports whether event should trigger a change. New
// directories are added to the watch so the watch stays recursive.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if isHidden(event.Name) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				logger.Warn("watcher: %v", err)
			}
			return false
		}
	}

	return event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) ||
		event.Has(fsnotify.Rename)
}

func (w *Watcher) addTree(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}
	if !info.IsDir() {
		if err := w.fs.Add(root); err != nil {
			return fmt.Errorf("watching %s: %w", root, err)
		}
		return nil
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// isHidden reports whether any path element starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
