package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"MoverScan/internal/domain/models"
	"MoverScan/internal/domain/repository"
	"MoverScan/internal/service/indicators"
	"MoverScan/pkg/logger"
)

var (
	// ErrUniverseUnavailable means the scan could not even start.
	ErrUniverseUnavailable = errors.New("scan: universe unavailable")
	// ErrUpstreamUnavailable means every snapshot fetch failed, which is
	// a provider outage, not an empty market.
	ErrUpstreamUnavailable = errors.New("scan: upstream fully unavailable")
)

// Scanner runs one scan pass at a time: resolve the universe, fetch
// snapshots, derive metrics, filter, rank, enrich and emit. Per-symbol
// failures are tolerated and reported; only a dead universe or a fully
// dead upstream fails the pass.
type Scanner struct {
	universes repository.UniverseProvider
	snapshots repository.SnapshotSource
	bars      repository.BarSource
	news      repository.NewsProvider
	market    repository.ContextProvider
	sinks     []repository.CandidateSink
	metrics   repository.Metrics
	log       *logger.Logger

	mu         sync.Mutex
	state      models.ScanState
	lastReport *models.ScanReport
}

// ScannerOption wires optional collaborators.
type ScannerOption func(*Scanner)

// WithBars enables VWAP enrichment of surviving candidates.
func WithBars(b repository.BarSource) ScannerOption {
	return func(s *Scanner) { s.bars = b }
}

// WithNews enables headline annotation of surviving candidates.
func WithNews(n repository.NewsProvider) ScannerOption {
	return func(s *Scanner) { s.news = n }
}

// WithMarketContext attaches the broad-market context provider.
func WithMarketContext(c repository.ContextProvider) ScannerOption {
	return func(s *Scanner) { s.market = c }
}

// WithSinks registers candidate sinks. Each surviving candidate is
// emitted to every sink once per pass.
func WithSinks(sinks ...repository.CandidateSink) ScannerOption {
	return func(s *Scanner) { s.sinks = append(s.sinks, sinks...) }
}

// WithMetrics attaches the metrics recorder.
func WithMetrics(m repository.Metrics) ScannerOption {
	return func(s *Scanner) { s.metrics = m }
}

// NewScanner builds a scan orchestrator around its two required inputs.
func NewScanner(universes repository.UniverseProvider, snapshots repository.SnapshotSource, log *logger.Logger, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		universes: universes,
		snapshots: snapshots,
		log:       log,
		state:     models.ScanIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the current lifecycle state.
func (s *Scanner) State() models.ScanState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastReport returns the most recent pass summary, or nil before the
// first run.
func (s *Scanner) LastReport() *models.ScanReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastReport == nil {
		return nil
	}
	r := *s.lastReport
	return &r
}

func (s *Scanner) setState(st models.ScanState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run executes one scan pass. A context deadline aborts remaining fetches
// and returns whatever was gathered, with Report.Complete false.
func (s *Scanner) Run(ctx context.Context, universeName string, policy models.FilterPolicy) (*models.ScanResult, error) {
	report := models.ScanReport{
		Universe:  universeName,
		StartedAt: time.Now().UTC(),
	}
	fail := func(err error) (*models.ScanResult, error) {
		report.State = models.ScanFailed
		report.Duration = time.Since(report.StartedAt)
		s.finish(&report)
		if s.metrics != nil {
			s.metrics.RecordError("scan_failed")
		}
		return nil, err
	}

	s.setState(models.ScanFetchingUniverse)
	symbols, err := s.universes.GetUniverse(ctx, universeName)
	if err != nil || len(symbols) == 0 {
		if err == nil {
			err = fmt.Errorf("%w: universe %q is empty", ErrUniverseUnavailable, universeName)
		} else {
			err = fmt.Errorf("%w: %v", ErrUniverseUnavailable, err)
		}
		return fail(err)
	}
	report.Scanned = len(symbols)

	s.setState(models.ScanFetchingSnapshots)
	snaps, fetchErrs := s.snapshots.FetchSnapshots(ctx, symbols)
	report.Fetched = len(snaps)
	report.FailedFetches = len(fetchErrs)
	if len(snaps) == 0 && len(fetchErrs) > 0 {
		return fail(fmt.Errorf("%w: all %d fetches failed", ErrUpstreamUnavailable, len(fetchErrs)))
	}

	s.setState(models.ScanComputingMetrics)
	type scored struct {
		snap    *models.Snapshot
		metrics models.DerivedMetrics
	}
	all := make([]scored, 0, len(snaps))
	for _, snap := range snaps {
		all = append(all, scored{snap: snap, metrics: indicators.Compute(snap, nil, nil)})
	}

	s.setState(models.ScanFiltering)
	var survivors []scored
	for _, c := range all {
		if passes(c.metrics, policy) {
			survivors = append(survivors, c)
		} else {
			report.Filtered++
		}
	}

	s.setState(models.ScanRanking)
	sort.Slice(survivors, func(i, j int) bool {
		ci, cj := *survivors[i].metrics.ChangePercent, *survivors[j].metrics.ChangePercent
		if ci != cj {
			return ci > cj
		}
		return survivors[i].snap.Symbol < survivors[j].snap.Symbol
	})
	if policy.MaxResults > 0 && len(survivors) > policy.MaxResults {
		report.Filtered += len(survivors) - policy.MaxResults
		survivors = survivors[:policy.MaxResults]
	}

	now := time.Now().UTC()
	candidates := make([]*models.MoverCandidate, 0, len(survivors))
	for i, c := range survivors {
		mc := &models.MoverCandidate{
			Snapshot:     *c.snap,
			Metrics:      c.metrics,
			Rank:         i + 1,
			IdentifiedAt: now,
		}
		s.enrich(ctx, mc)
		candidates = append(candidates, mc)
	}

	s.setState(models.ScanEmitting)
	for _, mc := range candidates {
		emitted := true
		for _, sink := range s.sinks {
			if err := sink.Emit(ctx, mc); err != nil {
				emitted = false
				if s.log != nil {
					s.log.Error("candidate emit failed",
						logger.String("symbol", mc.Snapshot.Symbol), logger.Error(err))
				}
				if s.metrics != nil {
					s.metrics.RecordError("emit_failed")
				}
			}
		}
		if emitted {
			report.Emitted++
		}
	}

	var market *models.MarketContext
	if s.market != nil {
		if mc, err := s.market.GetContext(ctx); err == nil {
			market = mc
		} else if s.log != nil {
			s.log.Warn("market context unavailable", logger.Error(err))
		}
	}

	report.State = models.ScanDone
	report.Complete = ctx.Err() == nil
	report.Duration = time.Since(report.StartedAt)
	s.finish(&report)

	if s.metrics != nil {
		s.metrics.RecordScan(universeName, len(candidates), report.Duration.Seconds())
	}
	if s.log != nil {
		s.log.Info("scan pass finished",
			logger.String("universe", universeName),
			logger.Int("scanned", report.Scanned),
			logger.Int("failed_fetches", report.FailedFetches),
			logger.Int("candidates", len(candidates)),
			logger.Duration("took", report.Duration))
	}

	return &models.ScanResult{Candidates: candidates, Report: report, Market: market}, nil
}

func (s *Scanner) finish(report *models.ScanReport) {
	s.mu.Lock()
	s.lastReport = report
	if report.State == models.ScanFailed {
		s.state = models.ScanFailed
	} else {
		s.state = models.ScanDone
	}
	s.mu.Unlock()
}

// passes applies the policy in its documented order: change%, sign and
// magnitude first, then the RVOL floor, then the spread cap. An absent
// change percent always rejects; an absent RVOL soft-passes unless the
// policy requires one.
func passes(m models.DerivedMetrics, p models.FilterPolicy) bool {
	if m.ChangePercent == nil {
		return false
	}
	change := *m.ChangePercent
	if p.PositiveOnly && change <= 0 {
		return false
	}
	if abs(change) < p.MinAbsChangePercent {
		return false
	}

	if m.RelativeVolumeRatio == nil {
		if p.RequireRelativeVolume {
			return false
		}
	} else if *m.RelativeVolumeRatio < p.MinRelativeVolume {
		return false
	}

	if p.MaxSpreadPercent > 0 && m.SpreadPercent != nil && *m.SpreadPercent > p.MaxSpreadPercent {
		return false
	}
	return true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// enrich adds VWAP metrics and a headline to a surviving candidate.
// Strictly best-effort; enrichment failures never drop a candidate.
func (s *Scanner) enrich(ctx context.Context, mc *models.MoverCandidate) {
	sym := mc.Snapshot.Symbol

	if s.bars != nil {
		intraday, err := s.bars.FetchIntradayBars(ctx, sym)
		if err != nil && s.log != nil {
			s.log.Debug("intraday bars unavailable", logger.String("symbol", sym), logger.Error(err))
		}
		var previous []models.Bar
		if len(intraday) == 0 {
			previous, _ = s.bars.FetchPreviousSessionBars(ctx, sym)
		}
		mc.Metrics.VWAP = indicators.VWAP(intraday)
		if mc.Metrics.VWAP == nil {
			if fallback := indicators.VWAP(previous); fallback != nil {
				mc.Metrics.VWAP = fallback
				mc.Metrics.VWAPStale = true
			}
		}
		mc.Metrics.DistanceFromVWAP = indicators.DistanceFromVWAP(mc.Snapshot.ActivePrice(), mc.Metrics.VWAP)
	}

	if s.news != nil {
		if article, err := s.news.TopHeadline(ctx, sym); err == nil && article != nil {
			mc.NewsHeadline = article.Headline
			mc.NewsSource = article.Source
			mc.NewsURL = article.URL
		}
	}
}
