package repository

import (
	"context"

	"MoverScan/internal/domain/models"
)

// SnapshotSource fetches normalized per-symbol snapshots from the upstream
// market-data provider. Implementations own rate limiting, caching, retry,
// and call monitoring; callers only see snapshots or per-symbol errors.
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context, symbol string) (*models.Snapshot, error)
	// FetchSnapshots fetches many symbols with bounded concurrency. It
	// never aborts the batch: failed symbols are returned in the error
	// map and missing from the result map.
	FetchSnapshots(ctx context.Context, symbols []string) (map[string]*models.Snapshot, map[string]error)
}

// BarSource supplies intraday OHLCV bars for VWAP computation.
type BarSource interface {
	FetchIntradayBars(ctx context.Context, symbol string) ([]models.Bar, error)
	// FetchPreviousSessionBars supports the stale-VWAP fallback when the
	// current session has no volume yet.
	FetchPreviousSessionBars(ctx context.Context, symbol string) ([]models.Bar, error)
}

// UniverseProvider supplies the candidate symbol set for a scan.
type UniverseProvider interface {
	GetUniverse(ctx context.Context, name string) ([]string, error)
	Names() []string
}

// CandidateSink receives surviving candidates, once each per scan pass.
// Persistence and notification are the sink's responsibility.
type CandidateSink interface {
	Emit(ctx context.Context, c *models.MoverCandidate) error
	Close() error
}

// NewsProvider fetches the top recent headline for a symbol. Best-effort:
// a nil article with nil error means "no news".
type NewsProvider interface {
	TopHeadline(ctx context.Context, symbol string) (*models.NewsArticle, error)
}

// ContextProvider supplies the cached broad-market context.
type ContextProvider interface {
	GetContext(ctx context.Context) (*models.MarketContext, error)
}

// Metrics records operational metrics for the scan pipeline.
type Metrics interface {
	RecordProviderCall(provider string, success bool, seconds float64)
	RecordError(kind string)
	RecordScan(universe string, candidates int, seconds float64)
	RecordCacheResult(hit bool)
}
