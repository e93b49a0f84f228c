package driven

import (
	"context"

	"github.com/custodia-labs/livepreview/internal/core/domain"
)

// ChangeWatcher reports debounced filesystem activity.
type ChangeWatcher interface {
	// Watch blocks until ctx is cancelled, calling onChange once per
	// debounced batch of events.
	Watch(ctx context.Context, onChange func()) error

	// Close releases the underlying watcher.
	Close() error
}

// Broadcaster fans document changes out to every connected viewer.
type Broadcaster interface {
	// Publish sends change to all subscribers without blocking on slow ones.
	Publish(change domain.DocumentChange)

	// Clients returns the number of connected subscribers.
	Clients() int
}
