package driven

import "context"

// DocumentSource yields the current document bytes.
// Every Fetch must defeat intermediary caches, e.g. with a unique query token.
type DocumentSource interface {
	// Fetch dereferences the source once and returns the full document.
	// Cancelling ctx aborts the transfer.
	Fetch(ctx context.Context) ([]byte, error)
}
