package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
	"github.com/custodia-labs/livepreview/internal/core/ports/driving"
	"github.com/custodia-labs/livepreview/internal/logger"
)

// ErrMissingCoordinator is returned when a trigger has no coordinator.
var ErrMissingCoordinator = errors.New("trigger: coordinator is required")

// Ensure ReloadTrigger implements the interface.
var _ driving.ReloadHandler = (*ReloadTrigger)(nil)

// ReloadTrigger turns reload notifications into new generations.
type ReloadTrigger struct {
	coordinator driving.PreviewCoordinator
	positions   *PositionKeeper
}

// NewReloadTrigger creates a trigger. positions may be nil, in which case
// the scroll position is not captured before each reload.
func NewReloadTrigger(coordinator driving.PreviewCoordinator, positions *PositionKeeper) (*ReloadTrigger, error) {
	if coordinator == nil {
		return nil, ErrMissingCoordinator
	}
	return &ReloadTrigger{coordinator: coordinator, positions: positions}, nil
}

// Handle captures the scroll position, advances the generation and starts
// a reload with whatever content the event carried.
func (t *ReloadTrigger) Handle(ctx context.Context, event domain.ReloadEvent) {
	if t.positions != nil {
		if err := t.positions.Capture(ctx); err != nil {
			logger.Warn("Failed to save scroll position: %v", err)
		}
	}

	content := NormalizePayload(event.Payload)
	gen := t.coordinator.Advance()
	if content != nil {
		logger.Debug("Reload requested for generation %d with %d bytes inline.", gen, len(content))
	} else {
		logger.Debug("Reload requested for generation %d.", gen)
	}
	t.coordinator.Reload(ctx, gen, content)
}

// Run feeds notifier events into Handle until ctx is cancelled.
func (t *ReloadTrigger) Run(ctx context.Context, notifier driven.ReloadNotifier) error {
	err := notifier.Listen(ctx, t.Handle)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("listening for reloads: %w", err)
	}
	return nil
}

// NormalizePayload converts a notification payload into document bytes.
// It returns nil when the document should be re-fetched instead: for a nil
// or empty payload, and for payload shapes it does not recognise.
func NormalizePayload(payload any) []byte {
	switch p := payload.(type) {
	case nil:
		return nil
	case []byte:
		if len(p) == 0 {
			return nil
		}
		return bytes.Clone(p)
	case string:
		if p == "" {
			return nil
		}
		return []byte(p)
	case io.Reader:
		data, err := io.ReadAll(p)
		if err != nil {
			logger.Warn("Failed to read reload payload, re-fetching instead: %v", err)
			return nil
		}
		if len(data) == 0 {
			return nil
		}
		return data
	default:
		logger.Warn("Unrecognised reload payload of type %T, re-fetching instead.", payload)
		return nil
	}
}
