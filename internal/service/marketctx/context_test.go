package marketctx

import (
	"context"
	"errors"
	"testing"
	"time"

	"MoverScan/internal/domain/models"
	"MoverScan/pkg/cache"
)

type stubSource struct {
	snaps map[string]*models.Snapshot
	errs  map[string]error
	calls int
}

func (s *stubSource) FetchSnapshot(ctx context.Context, symbol string) (*models.Snapshot, error) {
	if err, ok := s.errs[symbol]; ok {
		return nil, err
	}
	return s.snaps[symbol], nil
}

func (s *stubSource) FetchSnapshots(ctx context.Context, symbols []string) (map[string]*models.Snapshot, map[string]error) {
	s.calls++
	out := make(map[string]*models.Snapshot)
	errs := make(map[string]error)
	for _, sym := range symbols {
		if err, ok := s.errs[sym]; ok {
			errs[sym] = err
			continue
		}
		if snap, ok := s.snaps[sym]; ok {
			out[sym] = snap
		} else {
			errs[sym] = errors.New("no data")
		}
	}
	return out, errs
}

func snap(last, prev float64) *models.Snapshot {
	return &models.Snapshot{LastPrice: models.Float(last), PreviousClose: models.Float(prev)}
}

func TestBullishContext(t *testing.T) {
	src := &stubSource{snaps: map[string]*models.Snapshot{
		"SPY":  snap(101, 100), // +1%
		"QQQ":  snap(102, 100),
		"^VIX": {LastPrice: models.Float(15)},
	}}
	svc := New(src, nil)

	mc, err := svc.GetContext(context.Background())
	if err != nil {
		t.Fatalf("GetContext() error = %v", err)
	}
	if mc.Sentiment != models.SentimentBullish {
		t.Fatalf("Sentiment = %q, want bullish", mc.Sentiment)
	}
	if mc.Quality != models.QualityFull {
		t.Fatalf("Quality = %q, want full", mc.Quality)
	}
}

func TestBearishOnHighVIX(t *testing.T) {
	src := &stubSource{snaps: map[string]*models.Snapshot{
		"SPY":  snap(100.1, 100), // +0.1%, but VIX dominates
		"QQQ":  snap(100, 100),
		"^VIX": {LastPrice: models.Float(30)},
	}}
	svc := New(src, nil)

	mc, err := svc.GetContext(context.Background())
	if err != nil {
		t.Fatalf("GetContext() error = %v", err)
	}
	if mc.Sentiment != models.SentimentBearish {
		t.Fatalf("Sentiment = %q, want bearish", mc.Sentiment)
	}
}

func TestDegradesGracefully(t *testing.T) {
	src := &stubSource{
		snaps: map[string]*models.Snapshot{
			"SPY": snap(99, 100),
		},
		errs: map[string]error{
			"QQQ":  errors.New("timeout"),
			"^VIX": errors.New("timeout"),
		},
	}
	svc := New(src, nil)

	mc, err := svc.GetContext(context.Background())
	if err != nil {
		t.Fatalf("GetContext() error = %v, want degraded context", err)
	}
	if mc.Quality != models.QualityPartial {
		t.Fatalf("Quality = %q, want partial", mc.Quality)
	}
	if mc.Sentiment != models.SentimentUnknown {
		t.Fatalf("Sentiment = %q, want unknown without VIX", mc.Sentiment)
	}
	if mc.PrimaryIndexChange == nil {
		t.Fatal("SPY change should still be present")
	}
}

func TestAllIndicatorsMissing(t *testing.T) {
	src := &stubSource{errs: map[string]error{
		"SPY": errors.New("down"), "QQQ": errors.New("down"),
		"^VIX": errors.New("down"), "ES=F": errors.New("down"), "NQ=F": errors.New("down"),
	}}
	svc := New(src, nil)

	mc, err := svc.GetContext(context.Background())
	if err != nil {
		t.Fatalf("GetContext() error = %v, want degraded context", err)
	}
	if mc.Quality != models.QualityDegraded {
		t.Fatalf("Quality = %q, want degraded", mc.Quality)
	}
	if mc.Sentiment != models.SentimentUnknown {
		t.Fatalf("Sentiment = %q, want unknown", mc.Sentiment)
	}
}

func TestContextCachedWithinTTL(t *testing.T) {
	src := &stubSource{snaps: map[string]*models.Snapshot{
		"SPY":  snap(101, 100),
		"QQQ":  snap(101, 100),
		"^VIX": {LastPrice: models.Float(15)},
	}}
	svc := New(src, nil, WithCache(cache.NewMemoryCache()), WithTTL(time.Minute))

	ctx := context.Background()
	if _, err := svc.GetContext(ctx); err != nil {
		t.Fatalf("GetContext() error = %v", err)
	}
	if _, err := svc.GetContext(ctx); err != nil {
		t.Fatalf("GetContext() cached error = %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("source called %d times, want 1 (cached)", src.calls)
	}
}
