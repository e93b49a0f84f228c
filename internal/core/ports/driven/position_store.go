package driven

import "context"

// PositionStore persists small string values under named keys.
// It must survive a restart of the viewing process.
type PositionStore interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}
