package store

import (
	"context"
	"time"
)

// Record is one persisted state transition of the supervised service.
// OccurredAt is stored in UTC. LastError is empty except for transitions
// into the error state.
type Record struct {
	ID         int64     `json:"id"`
	State      string    `json:"state"`
	Running    bool      `json:"running"`
	PID        int       `json:"pid"`
	LastError  string    `json:"last_error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Store persists lifecycle transitions so `status --history` and
// post-mortems survive supervisor restarts.
type Store interface {
	EnsureSchema(ctx context.Context) error
	RecordTransition(ctx context.Context, rec Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
	PurgeOlderThan(ctx context.Context, olderThan time.Time) (int64, error)
	Close() error
}
