package cache

import (
	"context"
	"time"
)

// Store is the key-value backend shared by the orchestrator and the
// invalidator. Implemented by the memory store (dev) and Redis (prod).
// Single-key operations are atomic; expiry is enforced by the store itself.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Keys returns all stored keys matching a glob pattern
	// (Redis MATCH semantics: * matches any run of characters).
	Keys(ctx context.Context, pattern string) ([]string, error)
}
