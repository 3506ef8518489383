package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a key does not exist.
	ErrNotFound = errors.New("store: key not found")
	// ErrConnection is returned when the store cannot be reached.
	ErrConnection = errors.New("store: connection failure")
	// ErrTimeout is returned when an operation does not complete within its deadline.
	ErrTimeout = errors.New("store: operation timed out")
	// ErrCommand is returned when the store rejects a command.
	ErrCommand = errors.New("store: command error")
	// ErrInvalidTTL is returned for writes with a non-positive TTL.
	ErrInvalidTTL = errors.New("store: ttl must be positive")
)

// Store is the key-value contract the session registry is built on.
//
// Implementations must be safe for concurrent use and must bound every call by a
// deadline so a degraded backend surfaces as [ErrTimeout] instead of blocking.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// Swap atomically deletes oldKey and writes newKey. If oldKey no longer exists
	// nothing is written and ErrNotFound is returned.
	Swap(ctx context.Context, oldKey, newKey, value string, ttl time.Duration) error
}

// IsInfrastructure reports whether err signals store degradation rather than a
// missing key.
func IsInfrastructure(err error) bool {
	return errors.Is(err, ErrConnection) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrCommand)
}
