package redis

import (
	"context"
	"time"
)

// Client is the slice of Redis used by the agent: a small key/value store
// for state that must survive restarts.
type Client interface {
	// Ping verifies the connection to the Redis server
	Ping(ctx context.Context) error

	// Set sets a key to a value with an optional TTL (0 = no expiry)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Get gets the value of a key. Returns ErrKeyNotFound if the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Close closes the connection to the Redis server
	Close() error
}
