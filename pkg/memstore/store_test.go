package memstore

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestIncrWithTTLCountsWithinWindow(t *testing.T) {
	store := New(Options{CounterTTL: time.Minute})
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := store.IncrWithTTL(ctx, "merchant-a", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("expected count %d, got %d", want, got)
		}
	}

	other, _ := store.IncrWithTTL(ctx, "merchant-b", time.Minute)
	if other != 1 {
		t.Fatalf("keys must be independent, got %d", other)
	}
}

func TestIncrWithTTLResetsAfterExpiry(t *testing.T) {
	store := New(Options{CounterTTL: 20 * time.Millisecond})
	ctx := context.Background()

	if _, err := store.IncrWithTTL(ctx, "k", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(60 * time.Millisecond)

	got, _ := store.IncrWithTTL(ctx, "k", 0)
	if got != 1 {
		t.Fatalf("expected a fresh window after expiry, got %d", got)
	}
}

func TestLocksAreExclusiveUntilReleased(t *testing.T) {
	store := New(Options{LockTTL: time.Minute})
	ctx := context.Background()

	if ok, _ := store.AcquireLock(ctx, "quiz-1", "a", 0); !ok {
		t.Fatalf("expected first acquire to succeed")
	}
	if ok, _ := store.AcquireLock(ctx, "quiz-1", "b", 0); ok {
		t.Fatalf("expected second acquire to fail")
	}
	_ = store.ReleaseLock(ctx, "quiz-1", "b")
	if ok, _ := store.AcquireLock(ctx, "quiz-1", "b", 0); ok {
		t.Fatalf("foreign release must not free the lock")
	}
	_ = store.ReleaseLock(ctx, "quiz-1", "a")
	if ok, _ := store.AcquireLock(ctx, "quiz-1", "b", 0); !ok {
		t.Fatalf("expected acquire after release")
	}
}

func TestConcurrentIncrements(t *testing.T) {
	store := New(Options{CounterTTL: time.Minute})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.IncrWithTTL(ctx, "shared", 0)
		}()
	}
	wg.Wait()

	got, _ := store.IncrWithTTL(ctx, "shared", 0)
	if got != 51 {
		t.Fatalf("expected 51 after concurrent increments, got %d", got)
	}
}
