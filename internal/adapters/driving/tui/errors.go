package tui

import "errors"

// ErrMissingPreviewCoordinator is returned when the coordinator is not provided.
var ErrMissingPreviewCoordinator = errors.New("tui: preview coordinator is required")

// ErrMissingBridge is returned when the app has no bridge to the coordinator.
var ErrMissingBridge = errors.New("tui: bridge is required")
