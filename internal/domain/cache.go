package domain

import (
	"context"
	"time"
)

// RateLimiter provides distributed rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// LockManager grants a renewable lease on key to one owner at a time.
type LockManager interface {
	// Lead takes or renews the lease for owner. It returns ErrLockHeld while
	// another owner holds it.
	Lead(ctx context.Context, key, owner string, ttl time.Duration) error
	// Resign releases the lease if owner still holds it.
	Resign(ctx context.Context, key, owner string) error
}

// StreamMessage represents a single entry from a Redis stream.
type StreamMessage struct {
	ID      string
	Payload []byte
}

// SignalBus provides pub/sub and durable streams.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	StreamAppend(ctx context.Context, stream string, payload []byte) error
	StreamRead(ctx context.Context, stream string, lastID string, count int) ([]StreamMessage, error)
}
