package tokenstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Load when no record is stored.
var ErrNotFound = errors.New("token record not found")

// ErrRedisUnavailable wraps Redis transport failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Record is the persisted credential. Token is empty for OIDC sessions.
type Record struct {
	Token   string
	OIDC    bool
	SavedAt time.Time
}

// Store persists at most one Record.
type Store interface {
	// Save replaces the record. ttl <= 0 keeps it until Delete.
	Save(ctx context.Context, rec Record, ttl time.Duration) error
	// Load returns the record or ErrNotFound.
	Load(ctx context.Context) (Record, error)
	// Delete removes the record. Deleting nothing is not an error.
	Delete(ctx context.Context) error
}
