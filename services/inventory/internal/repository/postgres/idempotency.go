package postgres

import (
	"context"
	"fmt"

	"github.com/avelis/shopworks/pkg/database"
)

// IdempotencyStore records processed event ids in the processed_events table
// so consumers survive restarts without reprocessing deliveries.
type IdempotencyStore struct {
	pool database.DBTX
}

// NewIdempotencyStore creates a Postgres-backed idempotency store.
func NewIdempotencyStore(pool database.DBTX) *IdempotencyStore {
	return &IdempotencyStore{pool: pool}
}

// Contains reports whether the event id has already been processed.
func (s *IdempotencyStore) Contains(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM processed_events WHERE event_id = $1)`, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check processed event: %w", err)
	}
	return exists, nil
}

// Add records the event id as processed. Duplicate inserts are ignored.
func (s *IdempotencyStore) Add(ctx context.Context, eventID string) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO processed_events (event_id) VALUES ($1) ON CONFLICT (event_id) DO NOTHING`, eventID)
	if err != nil {
		return fmt.Errorf("record processed event: %w", err)
	}
	return nil
}
