package driving

import (
	"context"

	"github.com/custodia-labs/livepreview/internal/core/domain"
)

// PreviewCoordinator keeps the surface in sync with the document source.
type PreviewCoordinator interface {
	// InitialLoad starts generation 0 with no inline content.
	InitialLoad(ctx context.Context)

	// Advance makes a new generation current and returns it.
	// All work tagged with older generations becomes stale.
	Advance() domain.Generation

	// Reload starts a load session for gen. Inline content, when non-nil,
	// is rendered instead of fetching from the source.
	Reload(ctx context.Context, gen domain.Generation, content []byte)

	// Status returns the most recent status report.
	Status() domain.PreviewStatus

	// Wait blocks until every session goroutine has returned.
	Wait()
}

// ServeService tracks the served document and notifies viewers.
type ServeService interface {
	// Check compares the served file against the last seen state and
	// publishes a change when it differs.
	Check(ctx context.Context) (bool, error)

	// ForceReload publishes a notification regardless of file state.
	ForceReload(ctx context.Context) error

	// Status summarises the serve side.
	Status() domain.ServeStatus
}

// ReloadHandler reacts to one reload notification.
type ReloadHandler interface {
	// Handle captures the scroll position and starts a newer generation.
	Handle(ctx context.Context, event domain.ReloadEvent)
}
