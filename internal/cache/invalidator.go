package cache

import (
	"context"
	"fmt"
)

// Invalidator drops cached dashboard payloads when upstream records change.
//
// Invalidation is deliberately coarse: an order status change touches alerts,
// sales, logistics and executive views at once, so every dashboard for the
// scope is dropped rather than guessing which ones the mutation affected.
type Invalidator struct {
	store Store
}

func NewInvalidator(store Store) *Invalidator {
	return &Invalidator{store: store}
}

// Invalidate deletes all dashboard entries for tenant, or every dashboard
// entry when tenant is empty. Returns the number of keys removed. Zero
// matches is a no-op; deleting an already-deleted key is a no-op, so
// concurrent invalidations are safe.
func (inv *Invalidator) Invalidate(ctx context.Context, tenant string) (int, error) {
	patterns := []string{Prefix + ":*"}
	if tenant != "" {
		patterns = TenantPatterns(tenant)
	}

	removed := 0
	for _, pattern := range patterns {
		keys, err := inv.store.Keys(ctx, pattern)
		if err != nil {
			return removed, fmt.Errorf("enumerate %q: %w", pattern, err)
		}
		if len(keys) == 0 {
			continue
		}
		if err := inv.store.Delete(ctx, keys...); err != nil {
			return removed, fmt.Errorf("delete %d keys for %q: %w", len(keys), pattern, err)
		}
		removed += len(keys)
	}
	return removed, nil
}
