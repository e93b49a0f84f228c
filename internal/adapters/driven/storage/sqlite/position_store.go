package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
)

// positionStore implements driven.PositionStore.
type positionStore struct {
	store *Store
}

var _ driven.PositionStore = (*positionStore)(nil)

// Get returns the value stored under key.
func (s *positionStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.store.db.QueryRowContext(ctx,
		`SELECT value FROM positions WHERE key = ?`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying position %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key. Last write wins.
func (s *positionStore) Set(ctx context.Context, key, value string) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO positions (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving position %s: %w", key, err)
	}
	return nil
}
