package cache

import (
	"context"
	"testing"
	"time"
)

func seedStore(t *testing.T, s Store, keys ...string) {
	t.Helper()
	ctx := context.Background()
	for _, k := range keys {
		if err := s.Set(ctx, k, []byte("v"), time.Minute); err != nil {
			t.Fatalf("seed %q: %v", k, err)
		}
	}
}

func TestInvalidateTenantScoped(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	inv := NewInvalidator(store)
	ctx := context.Background()

	seedStore(t, store,
		"dashboard:executive:acme:2024-03-01:2024-03-15",
		"dashboard:alerts:acme",
		"dashboard:executive:globex:2024-03-01:2024-03-15",
		"dashboard:alerts:globex",
	)

	removed, err := inv.Invalidate(ctx, "acme")
	if err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 keys removed, got %d", removed)
	}

	// acme gone, both key shapes.
	for _, k := range []string{
		"dashboard:executive:acme:2024-03-01:2024-03-15",
		"dashboard:alerts:acme",
	} {
		if _, hit, _ := store.Get(ctx, k); hit {
			t.Fatalf("expected %q to be invalidated", k)
		}
	}

	// globex untouched.
	for _, k := range []string{
		"dashboard:executive:globex:2024-03-01:2024-03-15",
		"dashboard:alerts:globex",
	} {
		if _, hit, _ := store.Get(ctx, k); !hit {
			t.Fatalf("expected %q to survive", k)
		}
	}
}

func TestInvalidateGlobal(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	inv := NewInvalidator(store)
	ctx := context.Background()

	seedStore(t, store,
		"dashboard:executive:acme:2024-03-01:2024-03-15",
		"dashboard:alerts:globex",
		"unrelated:key",
	)

	removed, err := inv.Invalidate(ctx, "")
	if err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 keys removed, got %d", removed)
	}
	if _, hit, _ := store.Get(ctx, "unrelated:key"); !hit {
		t.Fatalf("foreign key must not be touched")
	}
}

func TestInvalidateNoMatchesIsNoop(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	inv := NewInvalidator(store)

	removed, err := inv.Invalidate(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Invalidate on empty store failed: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected 0 removed, got %d", removed)
	}
}
