package domain

import "time"

// Retry defaults applied to every load session.
const (
	// DefaultRetryCeiling is the number of retries after the first attempt.
	DefaultRetryCeiling = 20

	// DefaultRetryDelay is the fixed delay between attempts.
	DefaultRetryDelay = 200 * time.Millisecond
)

// RetryPolicy bounds how long a failing load is pursued.
type RetryPolicy struct {
	// Ceiling is the number of retries allowed after the first attempt.
	Ceiling int

	// Delay is the fixed wait before each retry.
	Delay time.Duration
}

// DefaultRetryPolicy returns the fixed 20 x 200ms policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Ceiling: DefaultRetryCeiling,
		Delay:   DefaultRetryDelay,
	}
}

// ReloadEvent is one "reload requested" notification.
//
// Payload is nil when the document should be re-fetched from its source.
// Otherwise it carries replacement content in whatever shape the transport
// produced ([]byte, string, io.Reader); see services.NormalizePayload.
type ReloadEvent struct {
	Payload any

	// ReceivedAt is when the transport delivered the notification.
	ReceivedAt time.Time
}

// PreviewState describes what the viewer is currently doing.
type PreviewState string

// Preview states reported to the surface.
const (
	PreviewLoading  PreviewState = "loading"
	PreviewRetrying PreviewState = "retrying"
	PreviewReady    PreviewState = "ready"
	PreviewFailed   PreviewState = "failed"
)

// PreviewStatus is a user-visible progress report for one generation.
type PreviewStatus struct {
	State       PreviewState
	Generation  Generation
	RetriesLeft int
	Pages       int
	Message     string
	UpdatedAt   time.Time
}
