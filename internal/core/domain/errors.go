package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent coordination failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Load Errors.

	// ErrCancelled indicates an acquisition was torn down by the coordinator.
	// It is expected under rapid reloads and never reported as a failure.
	ErrCancelled = errors.New("load cancelled")

	// ErrInvalidContent indicates the document bytes could not be parsed.
	// This is also what a document replaced mid-read looks like.
	ErrInvalidContent = errors.New("invalid document content")

	// ErrRetriesExhausted indicates a load failed with no retry budget left.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrSourceUnavailable indicates the document source could not be reached.
	ErrSourceUnavailable = errors.New("document source unavailable")

	// ErrNotifierClosed indicates the notification channel has been closed.
	ErrNotifierClosed = errors.New("notifier closed")
)

// LoadErrorKind is the closed set of load failure variants.
type LoadErrorKind int

const (
	// LoadTransient is any failure that is not one of the other kinds.
	// It is retried while the session has budget left.
	LoadTransient LoadErrorKind = iota

	// LoadCancelled means the session was torn down deliberately.
	LoadCancelled

	// LoadInvalidContent means the bytes did not parse.
	LoadInvalidContent

	// LoadExhausted means a transient failure hit the retry ceiling.
	LoadExhausted
)

// String returns the string representation.
func (k LoadErrorKind) String() string {
	switch k {
	case LoadTransient:
		return "transient"
	case LoadCancelled:
		return "cancelled"
	case LoadInvalidContent:
		return "invalid_content"
	case LoadExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// LoadError tags a failed load attempt with its variant and generation.
type LoadError struct {
	Kind       LoadErrorKind
	Generation Generation
	Attempt    int
	Err        error
}

// Error implements error.
func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load generation %d attempt %d: %s", e.Generation, e.Attempt, e.Kind)
	}
	return fmt.Sprintf("load generation %d attempt %d: %s: %v", e.Generation, e.Attempt, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the sentinel for the error's kind.
func (e *LoadError) Is(target error) bool {
	switch e.Kind {
	case LoadCancelled:
		return target == ErrCancelled
	case LoadInvalidContent:
		return target == ErrInvalidContent
	case LoadExhausted:
		return target == ErrRetriesExhausted
	default:
		return false
	}
}

// ClassifyLoadError maps an error to its LoadErrorKind.
// Classification only uses sentinels and error types, never message text.
func ClassifyLoadError(err error) LoadErrorKind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	switch {
	case errors.Is(err, ErrCancelled):
		return LoadCancelled
	case errors.Is(err, ErrInvalidContent):
		return LoadInvalidContent
	case errors.Is(err, ErrRetriesExhausted):
		return LoadExhausted
	default:
		return LoadTransient
	}
}
