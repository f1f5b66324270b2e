package marketctx

import (
	"context"
	"time"

	"MoverScan/internal/domain/models"
	"MoverScan/internal/domain/repository"
	"MoverScan/internal/service/indicators"
	"MoverScan/pkg/cache"
	"MoverScan/pkg/logger"
)

const (
	primaryIndex   = "SPY"
	secondaryIndex = "QQQ"
	volatilityIdx  = "^VIX"
	indexFutures   = "ES=F"
	nasdaqFutures  = "NQ=F"

	defaultTTL = time.Minute
)

// Service assembles the broad-market context from index proxies. Each
// indicator degrades independently: a failed VIX fetch still yields a
// context with SPY and QQQ filled in and Quality lowered.
type Service struct {
	source repository.SnapshotSource
	store  cache.Service
	log    *logger.Logger
	ttl    time.Duration
}

// Option configures the context service.
type Option func(*Service)

// WithTTL overrides how long an assembled context is reused.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithCache installs the context cache.
func WithCache(store cache.Service) Option {
	return func(s *Service) { s.store = store }
}

// New creates the market context service.
func New(source repository.SnapshotSource, log *logger.Logger, opts ...Option) *Service {
	s := &Service{source: source, log: log, ttl: defaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetContext returns the current broad-market context, cached for the
// configured TTL. It never fails outright: with every indicator missing
// it returns a degraded context with unknown sentiment.
func (s *Service) GetContext(ctx context.Context) (*models.MarketContext, error) {
	key, err := cache.Key("moverscan", "market_context")
	if err != nil {
		key = ""
	}
	mc, _, err := cache.Fetch(ctx, s.store, key, s.ttl, s.assemble)
	if err != nil {
		// Assembly swallows indicator errors, so err here means the
		// context itself died.
		return nil, err
	}
	return mc, nil
}

func (s *Service) assemble(ctx context.Context) (*models.MarketContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	symbols := []string{primaryIndex, secondaryIndex, volatilityIdx, indexFutures, nasdaqFutures}
	snaps, errs := s.source.FetchSnapshots(ctx, symbols)
	for sym, err := range errs {
		if s.log != nil {
			s.log.Warn("market context indicator unavailable",
				logger.String("symbol", sym), logger.Error(err))
		}
	}

	mc := &models.MarketContext{FetchedAt: time.Now().UTC()}
	mc.PrimaryIndexChange = changeOf(snaps[primaryIndex])
	mc.SecondaryIndexChange = changeOf(snaps[secondaryIndex])
	mc.IndexFuturesChange = changeOf(snaps[indexFutures])
	mc.NasdaqFuturesChange = changeOf(snaps[nasdaqFutures])
	if vix := snaps[volatilityIdx]; vix != nil {
		mc.VolatilityIndexLevel = vix.ActivePrice()
	}

	mc.Quality = quality(mc)
	mc.Sentiment = models.DeriveSentiment(mc.PrimaryIndexChange, mc.VolatilityIndexLevel)
	return mc, nil
}

func changeOf(snap *models.Snapshot) *float64 {
	if snap == nil {
		return nil
	}
	return indicators.ChangePercent(snap.ActivePrice(), snap.PreviousClose)
}

// quality grades on the three core indicators; futures are a bonus.
func quality(mc *models.MarketContext) models.DataQuality {
	present := 0
	for _, v := range []*float64{mc.PrimaryIndexChange, mc.SecondaryIndexChange, mc.VolatilityIndexLevel} {
		if v != nil {
			present++
		}
	}
	switch present {
	case 3:
		return models.QualityFull
	case 0:
		return models.QualityDegraded
	default:
		return models.QualityPartial
	}
}
