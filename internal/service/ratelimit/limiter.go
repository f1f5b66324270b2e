package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter grants call permits per upstream provider. Acquire blocks until
// a permit is available or ctx is done; no caller may observe more than
// the configured rate for a provider across all goroutines sharing the
// limiter instance.
type Limiter interface {
	Acquire(ctx context.Context, provider string) error
}

// Rate is a sustained calls-per-second limit with burst capacity.
type Rate struct {
	PerSecond float64
	Burst     int
}

// TokenBucket is the single-process strategy: one token bucket per
// provider, refilled continuously, bursting up to capacity.
type TokenBucket struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rates    map[string]Rate
	fallback Rate
}

// NewTokenBucket creates a token-bucket limiter. Providers without an
// explicit rate get the fallback.
func NewTokenBucket(fallback Rate) *TokenBucket {
	if fallback.PerSecond <= 0 {
		fallback.PerSecond = 5
	}
	if fallback.Burst <= 0 {
		fallback.Burst = int(fallback.PerSecond)
	}
	return &TokenBucket{
		limiters: make(map[string]*rate.Limiter),
		rates:    make(map[string]Rate),
		fallback: fallback,
	}
}

// SetRate configures the limit for a provider. Takes effect immediately;
// an existing bucket is re-tuned in place.
func (t *TokenBucket) SetRate(provider string, r Rate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r.Burst <= 0 {
		r.Burst = 1
	}
	t.rates[provider] = r
	if l, ok := t.limiters[provider]; ok {
		l.SetLimit(rate.Limit(r.PerSecond))
		l.SetBurst(r.Burst)
	}
}

func (t *TokenBucket) limiter(provider string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	if l, ok := t.limiters[provider]; ok {
		return l
	}
	r, ok := t.rates[provider]
	if !ok {
		r = t.fallback
	}
	if r.Burst <= 0 {
		r.Burst = 1
	}
	l := rate.NewLimiter(rate.Limit(r.PerSecond), r.Burst)
	t.limiters[provider] = l
	return l
}

// Acquire blocks until a token is available for the provider.
func (t *TokenBucket) Acquire(ctx context.Context, provider string) error {
	return t.limiter(provider).Wait(ctx)
}

// Allow consumes a token without blocking when one is available.
func (t *TokenBucket) Allow(provider string) bool {
	return t.limiter(provider).Allow()
}

// Tokens reports the tokens currently available for a provider.
func (t *TokenBucket) Tokens(provider string) float64 {
	return t.limiter(provider).Tokens()
}
