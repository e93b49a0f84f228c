package driven

import (
	"context"

	"github.com/custodia-labs/livepreview/internal/core/domain"
)

// ReloadNotifier delivers reload notifications over a persistent connection.
type ReloadNotifier interface {
	// Listen blocks, invoking handle for every inbound notification, until
	// ctx is cancelled. Handle is called from a single goroutine, in order.
	Listen(ctx context.Context, handle func(context.Context, domain.ReloadEvent)) error
}
