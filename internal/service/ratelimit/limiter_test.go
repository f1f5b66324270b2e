package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"MoverScan/pkg/cache"
)

func TestTokenBucketBurstThenThrottle(t *testing.T) {
	l := NewTokenBucket(Rate{PerSecond: 100, Burst: 3})

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Acquire(ctx, "quotes"); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 5*time.Millisecond {
		t.Fatalf("burst of 3 took %v, want near-instant", elapsed)
	}

	// Fourth permit must wait for a refill (~10ms at 100/s).
	start = time.Now()
	if err := l.Acquire(ctx, "quotes"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Fatalf("throttled acquire took %v, want >= 5ms", elapsed)
	}
}

func TestTokenBucketPerProviderIsolation(t *testing.T) {
	l := NewTokenBucket(Rate{PerSecond: 1, Burst: 1})
	l.SetRate("fast", Rate{PerSecond: 1000, Burst: 1000})

	if !l.Allow("slow") {
		t.Fatal("first slow permit should be granted")
	}
	if l.Allow("slow") {
		t.Fatal("second slow permit should be throttled")
	}
	if !l.Allow("fast") {
		t.Fatal("fast provider should not share the slow bucket")
	}
}

func TestTokenBucketContextCancel(t *testing.T) {
	l := NewTokenBucket(Rate{PerSecond: 0.1, Burst: 1})
	ctx := context.Background()
	if err := l.Acquire(ctx, "quotes"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	cancelled, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if err := l.Acquire(cancelled, "quotes"); err == nil {
		t.Fatal("expected context deadline error while waiting for refill")
	}
}

func TestTokenBucketConcurrentAcquire(t *testing.T) {
	l := NewTokenBucket(Rate{PerSecond: 1000, Burst: 10})

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- l.Acquire(context.Background(), "quotes")
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Acquire() error = %v", err)
		}
	}
}

func TestSlidingWindowAllowsUpToLimit(t *testing.T) {
	store := cache.NewMemoryCache()
	w := NewSlidingWindow(store, nil, 3, time.Second)

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := w.Acquire(ctx, "quotes"); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Fatalf("within-limit acquires took %v, want near-instant", elapsed)
	}
}

func TestSlidingWindowBlocksUntilOldestExpires(t *testing.T) {
	store := cache.NewMemoryCache()
	w := NewSlidingWindow(store, nil, 2, 50*time.Millisecond)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := w.Acquire(ctx, "quotes"); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
	}

	start := time.Now()
	if err := w.Acquire(ctx, "quotes"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("third acquire took %v, want to wait for window", elapsed)
	}
}

type brokenStore struct {
	cache.Service
}

func (brokenStore) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("store unavailable")
}

func (brokenStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("store unavailable")
}

func TestSlidingWindowFailsOpenOnStoreError(t *testing.T) {
	w := NewSlidingWindow(brokenStore{}, nil, 1, time.Second)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := w.Acquire(ctx, "quotes"); err != nil {
			t.Fatalf("Acquire() error = %v, want fail-open nil", err)
		}
	}
}

func TestSlidingWindowContextCancel(t *testing.T) {
	store := cache.NewMemoryCache()
	w := NewSlidingWindow(store, nil, 1, time.Minute)

	ctx := context.Background()
	if err := w.Acquire(ctx, "quotes"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	cancelled, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if err := w.Acquire(cancelled, "quotes"); err == nil {
		t.Fatal("expected context error while window is full")
	}
}
