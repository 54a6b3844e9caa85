package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestOrchestratorProducerRunsOncePerTTLWindow(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	orch := NewOrchestrator(store)

	ctx := context.Background()
	var calls int32
	produce := func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return map[string]int{"orders": 42}, nil
	}

	first, err := orch.GetOrCompute(ctx, "k1", 50*time.Millisecond, produce)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}

	second, err := orch.GetOrCompute(ctx, "k1", 50*time.Millisecond, produce)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected producer to run once, ran %d times", got)
	}
	if string(first) != string(second) {
		t.Fatalf("hit returned different payload: %q vs %q", first, second)
	}

	var decoded map[string]int
	if err := json.Unmarshal(second, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded["orders"] != 42 {
		t.Fatalf("unexpected payload: %v", decoded)
	}

	// After the TTL elapses the producer must run again.
	time.Sleep(60 * time.Millisecond)
	if _, err := orch.GetOrCompute(ctx, "k1", 50*time.Millisecond, produce); err != nil {
		t.Fatalf("post-expiry call failed: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected recompute after expiry, producer ran %d times", got)
	}
}

func TestOrchestratorProducerErrorNotCached(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	orch := NewOrchestrator(store)

	ctx := context.Background()
	boom := errors.New("upstream query failed")
	var calls int32
	produce := func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return nil, boom
	}

	if _, err := orch.GetOrCompute(ctx, "k1", time.Minute, produce); !errors.Is(err, boom) {
		t.Fatalf("expected producer error, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("error result must not be cached, store has %d items", store.Len())
	}

	// A subsequent call still invokes the producer: nothing was stored.
	if _, err := orch.GetOrCompute(ctx, "k1", time.Minute, produce); !errors.Is(err, boom) {
		t.Fatalf("expected producer error again, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 producer calls, got %d", got)
	}
}

func TestOrchestratorCoalescesConcurrentMisses(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	orch := NewOrchestrator(store)

	ctx := context.Background()
	var calls int32
	release := make(chan struct{})
	produce := func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "payload", nil
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = orch.GetOrCompute(ctx, "k1", time.Minute, produce)
		}(i)
	}

	// Let the workers pile onto the miss, then let the flight finish.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d failed: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single coalesced producer call, got %d", got)
	}
}

func TestOrchestratorDegradesOnStoreError(t *testing.T) {
	orch := NewOrchestrator(failingStore{})

	ctx := context.Background()
	var calls int32
	produce := func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return "fresh", nil
	}

	// Store errors on read and write; the call still serves the computed
	// value (always fresh, possibly slower, never wrong).
	payload, err := orch.GetOrCompute(ctx, "k1", time.Minute, produce)
	if err != nil {
		t.Fatalf("expected degrade to compute, got error: %v", err)
	}
	if string(payload) != `"fresh"` {
		t.Fatalf("unexpected payload: %q", payload)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected producer to run once")
	}
}

type failingStore struct{}

var errStoreDown = errors.New("store unavailable")

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errStoreDown
}
func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errStoreDown
}
func (failingStore) Delete(context.Context, ...string) error { return errStoreDown }
func (failingStore) Keys(context.Context, string) ([]string, error) {
	return nil, errStoreDown
}
