package marketdata

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"MoverScan/internal/domain/models"
	"MoverScan/internal/domain/repository"
	"MoverScan/internal/service/monitor"
	"MoverScan/internal/service/ratelimit"
	"MoverScan/pkg/cache"
	"MoverScan/pkg/logger"
)

const cachePrefix = "moverscan"

// Client is the single gateway to upstream market data. Every call goes
// through the rate limiter, the result cache, the circuit breaker and the
// call monitor; callers upstack never talk to a vendor directly.
type Client struct {
	provider Provider
	limiter  ratelimit.Limiter
	store    cache.Service
	mon      *monitor.CallMonitor
	breaker  *gobreaker.CircuitBreaker
	metrics  repository.Metrics
	log      *logger.Logger

	maxAttempts  int
	backoffBase  time.Duration
	backoffCap   time.Duration
	snapshotTTL  time.Duration
	barsTTL      time.Duration
	batchWorkers int

	sleep func(ctx context.Context, d time.Duration) error
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLimiter installs the rate limiter. Without one, calls are unmetered.
func WithLimiter(l ratelimit.Limiter) ClientOption {
	return func(c *Client) { c.limiter = l }
}

// WithCache installs the snapshot/bars result cache.
func WithCache(s cache.Service) ClientOption {
	return func(c *Client) { c.store = s }
}

// WithMonitor installs the call monitor.
func WithMonitor(m *monitor.CallMonitor) ClientOption {
	return func(c *Client) { c.mon = m }
}

// WithMetrics installs the metrics recorder.
func WithMetrics(m repository.Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// WithLogger installs the logger.
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// WithRetry tunes the retry policy. Attempts counts the first try.
func WithRetry(attempts int, base, max time.Duration) ClientOption {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
		if base > 0 {
			c.backoffBase = base
		}
		if max > 0 {
			c.backoffCap = max
		}
	}
}

// WithSnapshotTTL sets how long snapshots stay cached.
func WithSnapshotTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		if ttl > 0 {
			c.snapshotTTL = ttl
		}
	}
}

// WithBatchWorkers bounds batch fetch concurrency.
func WithBatchWorkers(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.batchWorkers = n
		}
	}
}

// NewClient wraps a provider with limiting, caching, retry, a circuit
// breaker and monitoring.
func NewClient(provider Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider:     provider,
		maxAttempts:  3,
		backoffBase:  time.Second,
		backoffCap:   8 * time.Second,
		snapshotTTL:  5 * time.Minute,
		barsTTL:      5 * time.Minute,
		batchWorkers: 8,
		sleep:        sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    provider.Name(),
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return c
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

// FetchSnapshot returns the symbol's snapshot, from cache when fresh.
func (c *Client) FetchSnapshot(ctx context.Context, symbol string) (*models.Snapshot, error) {
	key := c.cacheKey("snapshot", symbol)
	snap, hit, err := cache.Fetch(ctx, c.store, key, c.snapshotTTL,
		func(ctx context.Context) (*models.Snapshot, error) {
			v, err := c.call(ctx, func(ctx context.Context) (interface{}, error) {
				return c.provider.Quote(ctx, symbol)
			})
			if err != nil {
				return nil, err
			}
			return v.(*models.Snapshot), nil
		})
	c.recordCache(hit, err)
	return snap, err
}

// FetchSnapshots fetches a batch with bounded concurrency. The batch
// never aborts as a whole: per-symbol failures land in the error map,
// and a dead context marks the remaining symbols without fetching them.
func (c *Client) FetchSnapshots(ctx context.Context, symbols []string) (map[string]*models.Snapshot, map[string]error) {
	snaps := make(map[string]*models.Snapshot, len(symbols))
	errs := make(map[string]error)
	if len(symbols) == 0 {
		return snaps, errs
	}

	type result struct {
		symbol string
		snap   *models.Snapshot
		err    error
	}

	workers := c.batchWorkers
	if workers > len(symbols) {
		workers = len(symbols)
	}

	jobs := make(chan string)
	results := make(chan result)

	for i := 0; i < workers; i++ {
		go func() {
			for sym := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{symbol: sym, err: err}
					continue
				}
				snap, err := c.FetchSnapshot(ctx, sym)
				results <- result{symbol: sym, snap: snap, err: err}
			}
		}()
	}

	go func() {
		for _, sym := range symbols {
			jobs <- sym
		}
		close(jobs)
	}()

	for range symbols {
		r := <-results
		if r.err != nil {
			errs[r.symbol] = r.err
			continue
		}
		snaps[r.symbol] = r.snap
	}
	return snaps, errs
}

// FetchIntradayBars returns today's 5m bars for VWAP.
func (c *Client) FetchIntradayBars(ctx context.Context, symbol string) ([]models.Bar, error) {
	return c.fetchBars(ctx, symbol, SessionIntraday)
}

// FetchPreviousSessionBars returns the prior session's bars.
func (c *Client) FetchPreviousSessionBars(ctx context.Context, symbol string) ([]models.Bar, error) {
	return c.fetchBars(ctx, symbol, SessionPrevious)
}

func (c *Client) fetchBars(ctx context.Context, symbol string, session BarSession) ([]models.Bar, error) {
	key := c.cacheKey("bars", symbol, string(session))
	bars, hit, err := cache.Fetch(ctx, c.store, key, c.barsTTL,
		func(ctx context.Context) ([]models.Bar, error) {
			v, err := c.call(ctx, func(ctx context.Context) (interface{}, error) {
				return c.provider.Bars(ctx, symbol, session)
			})
			if err != nil {
				return nil, err
			}
			return v.([]models.Bar), nil
		})
	c.recordCache(hit, err)
	return bars, err
}

// Stats exposes the rolling call stats for the ops surface.
func (c *Client) Stats() []monitor.Stats {
	if c.mon == nil {
		return nil
	}
	return c.mon.AllStats()
}

// call runs one upstream operation through the limiter, breaker and
// monitor, retrying transient failures with exponential backoff.
// Permanent errors and an open breaker fail fast.
func (c *Client) call(ctx context.Context, op func(context.Context) (interface{}, error)) (interface{}, error) {
	name := c.provider.Name()

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, c.backoff(attempt)); err != nil {
				return nil, err
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Acquire(ctx, name); err != nil {
				return nil, err
			}
		}

		start := time.Now()
		v, err := c.breaker.Execute(func() (interface{}, error) {
			return op(ctx)
		})
		elapsed := time.Since(start)

		breakerShed := errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
		if !breakerShed {
			c.record(name, err, elapsed)
		}
		if err == nil {
			return v, nil
		}

		lastErr = err
		if breakerShed || IsPermanent(err) || ctx.Err() != nil {
			return nil, err
		}
		if c.log != nil {
			c.log.Debug("provider call failed, retrying",
				logger.String("provider", name),
				logger.Int("attempt", attempt+1),
				logger.Error(err))
		}
	}
	return nil, lastErr
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.backoffBase << (attempt - 1)
	if d > c.backoffCap {
		d = c.backoffCap
	}
	return d
}

func (c *Client) record(provider string, err error, elapsed time.Duration) {
	status := http.StatusOK
	if err != nil {
		if s := StatusOf(err); s != 0 {
			status = s
		} else {
			status = 0
		}
	}
	if c.mon != nil {
		c.mon.RecordCall(provider, err == nil, status, float64(elapsed.Milliseconds()))
	}
	if c.metrics != nil {
		c.metrics.RecordProviderCall(provider, err == nil, elapsed.Seconds())
	}
}

func (c *Client) recordCache(hit bool, err error) {
	if c.metrics == nil || err != nil {
		return
	}
	c.metrics.RecordCacheResult(hit)
}

func (c *Client) cacheKey(op string, args ...interface{}) string {
	key, err := cache.Key(cachePrefix, op, args...)
	if err != nil {
		if c.log != nil {
			c.log.Warn("cache key generation failed, bypassing cache", logger.Error(err))
		}
		return ""
	}
	return key
}
