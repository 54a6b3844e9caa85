package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"opsdash-api/pkg/logging/logging"
)

// DefaultTTL is the standard entry lifetime when a dashboard does not
// override it. Kept short so stale reads after a missed invalidation are
// bounded to a couple of minutes.
const DefaultTTL = 2 * time.Minute

// Producer computes a dashboard payload on a cache miss. It must be
// read-only and idempotent; its error is propagated verbatim and never cached.
type Producer func(ctx context.Context) (any, error)

// Orchestrator is the cache-or-compute layer. A hit returns the stored bytes
// without touching the producer; a miss runs the producer, stores the encoded
// result under the key with the given ttl, and returns it.
//
// Concurrent misses on the same key within one process are coalesced through
// singleflight so the producer runs once and the other callers share its
// result. Across processes redundant computes are still possible and accepted.
type Orchestrator struct {
	store Store
	group singleflight.Group
}

func NewOrchestrator(store Store) *Orchestrator {
	return &Orchestrator{store: store}
}

// GetOrCompute serves the cached payload for key, computing and storing it
// first when absent or expired. A non-positive ttl falls back to DefaultTTL.
//
// A store read error is logged and treated as a miss (degrade to direct
// compute); a store write error is logged and the freshly computed value is
// still returned. The producer's own error fails the call with nothing stored.
func (o *Orchestrator) GetOrCompute(ctx context.Context, key string, ttl time.Duration, produce Producer) ([]byte, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	logger := logging.L(ctx)

	cached, hit, err := o.store.Get(ctx, key)
	if err != nil {
		logger.Warn("cache_get_error",
			zap.String("cache_key", key),
			zap.Error(err),
		)
	}
	if hit {
		return cached, nil
	}

	result, err, _ := o.group.Do(key, func() (any, error) {
		// A coalesced caller may find the entry already written by the
		// flight that finished while this one waited for the slot.
		if cached, hit, err := o.store.Get(ctx, key); err == nil && hit {
			return cached, nil
		}

		value, err := produce(ctx)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode cache value: %w", err)
		}

		if err := o.store.Set(ctx, key, payload, ttl); err != nil {
			logger.Warn("cache_set_error",
				zap.String("cache_key", key),
				zap.Error(err),
			)
		}

		return payload, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}
