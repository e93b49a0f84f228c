package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
)

// PositionKeeper moves the viewport position in and out of the position store.
type PositionKeeper struct {
	store    driven.PositionStore
	viewport driven.Viewport
	key      string
}

// NewPositionKeeper creates a keeper using the fixed scroll position key.
func NewPositionKeeper(store driven.PositionStore, viewport driven.Viewport) *PositionKeeper {
	return &PositionKeeper{
		store:    store,
		viewport: viewport,
		key:      domain.ScrollPositionKey,
	}
}

// Capture writes the current viewport position to the store. Last write wins.
func (k *PositionKeeper) Capture(ctx context.Context) error {
	pos := k.viewport.Position()
	data, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("encoding scroll position: %w", err)
	}
	if err := k.store.Set(ctx, k.key, string(data)); err != nil {
		return fmt.Errorf("saving scroll position: %w", err)
	}
	return nil
}

// Saved returns the stored position, if any.
func (k *PositionKeeper) Saved(ctx context.Context) (domain.ScrollPosition, bool, error) {
	raw, ok, err := k.store.Get(ctx, k.key)
	if err != nil {
		return domain.ScrollPosition{}, false, fmt.Errorf("reading scroll position: %w", err)
	}
	if !ok {
		return domain.ScrollPosition{}, false, nil
	}

	var pos domain.ScrollPosition
	if err := json.Unmarshal([]byte(raw), &pos); err != nil {
		return domain.ScrollPosition{}, false, fmt.Errorf("%w: scroll position %q: %v", domain.ErrInvalidInput, raw, err)
	}
	return pos, true, nil
}

// Restore scrolls the viewport to the stored position.
// It reports false when nothing has been stored yet.
func (k *PositionKeeper) Restore(ctx context.Context) (bool, error) {
	pos, ok, err := k.Saved(ctx)
	if err != nil || !ok {
		return false, err
	}
	k.viewport.SetPosition(pos)
	return true, nil
}
