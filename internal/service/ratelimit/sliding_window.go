package ratelimit

import (
	"context"
	"errors"
	"time"

	"MoverScan/pkg/cache"
	"MoverScan/pkg/logger"
)

const windowKeyPrefix = "rate_limit:"

// SlidingWindow enforces a shared max-calls-per-window limit through the
// cache store so multiple processes see the same budget. Store failures
// never block callers: the limiter fails open with a warning, since a
// missed throttle is cheaper than a stalled scan.
type SlidingWindow struct {
	store  cache.Service
	log    *logger.Logger
	limit  int
	window time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSlidingWindow creates a shared limiter allowing at most limit calls
// per provider within the trailing window.
func NewSlidingWindow(store cache.Service, log *logger.Logger, limit int, window time.Duration) *SlidingWindow {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &SlidingWindow{
		store:  store,
		log:    log,
		limit:  limit,
		window: window,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Acquire blocks until a slot opens in the provider's window. Returns nil
// immediately when the store is unreachable.
func (w *SlidingWindow) Acquire(ctx context.Context, provider string) error {
	key := windowKeyPrefix + provider

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var stamps []int64
		err := w.store.Get(ctx, key, &stamps)
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			w.warn("rate limit store read failed, failing open", provider, err)
			return nil
		}

		now := w.now()
		cutoff := now.Add(-w.window).UnixMilli()
		live := stamps[:0]
		for _, ts := range stamps {
			if ts > cutoff {
				live = append(live, ts)
			}
		}

		if len(live) < w.limit {
			live = append(live, now.UnixMilli())
			if err := w.store.Set(ctx, key, live, w.window*2); err != nil {
				w.warn("rate limit store write failed, failing open", provider, err)
			}
			return nil
		}

		// Window is full: wait until the oldest timestamp ages out.
		wait := time.UnixMilli(live[0]).Add(w.window).Sub(now)
		if wait <= 0 {
			wait = time.Millisecond
		}
		if err := w.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func (w *SlidingWindow) warn(msg, provider string, err error) {
	if w.log == nil {
		return
	}
	w.log.Warn(msg, logger.String("provider", provider), logger.Error(err))
}
