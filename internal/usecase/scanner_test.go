package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MoverScan/internal/domain/models"
)

type fakeUniverse struct {
	symbols []string
	err     error
}

func (f *fakeUniverse) GetUniverse(ctx context.Context, name string) ([]string, error) {
	return f.symbols, f.err
}

func (f *fakeUniverse) Names() []string { return []string{"test"} }

type fakeSource struct {
	snaps map[string]*models.Snapshot
	errs  map[string]error
}

func (f *fakeSource) FetchSnapshot(ctx context.Context, symbol string) (*models.Snapshot, error) {
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	return f.snaps[symbol], nil
}

func (f *fakeSource) FetchSnapshots(ctx context.Context, symbols []string) (map[string]*models.Snapshot, map[string]error) {
	out := make(map[string]*models.Snapshot)
	errs := make(map[string]error)
	for _, sym := range symbols {
		if err, ok := f.errs[sym]; ok {
			errs[sym] = err
			continue
		}
		if snap, ok := f.snaps[sym]; ok {
			out[sym] = snap
		}
	}
	return out, errs
}

type recordingSink struct {
	emitted []string
	err     error
}

func (r *recordingSink) Emit(ctx context.Context, c *models.MoverCandidate) error {
	if r.err != nil {
		return r.err
	}
	r.emitted = append(r.emitted, c.Snapshot.Symbol)
	return nil
}

func (r *recordingSink) Close() error { return nil }

// mover builds a snapshot whose change percent is changePct and whose
// RVOL is rvol (0 means no average-volume baseline at all).
func mover(symbol string, changePct, rvol float64) *models.Snapshot {
	s := &models.Snapshot{
		Symbol:        symbol,
		LastPrice:     models.Float(100 * (1 + changePct/100)),
		PreviousClose: models.Float(100),
		SessionVolume: int64(rvol * 1_000_000),
	}
	if rvol > 0 {
		s.AverageVolume = models.Int64(1_000_000)
	}
	return s
}

func symbolsOf(result *models.ScanResult) []string {
	out := make([]string, 0, len(result.Candidates))
	for _, c := range result.Candidates {
		out = append(out, c.Snapshot.Symbol)
	}
	return out
}

func TestPositiveOnlyThresholdRanking(t *testing.T) {
	src := &fakeSource{snaps: map[string]*models.Snapshot{
		"UP15": mover("UP15", 15, 1),
		"DN15": mover("DN15", -15, 1),
		"UP05": mover("UP05", 5, 1),
		"UP12": mover("UP12", 12, 1),
	}}
	s := NewScanner(&fakeUniverse{symbols: []string{"UP15", "DN15", "UP05", "UP12"}}, src, nil)

	result, err := s.Run(context.Background(), "test", models.FilterPolicy{
		MinAbsChangePercent: 10,
		PositiveOnly:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"UP15", "UP12"}, symbolsOf(result))
	assert.Equal(t, 1, result.Candidates[0].Rank)
	assert.Equal(t, 2, result.Candidates[1].Rank)
	assert.True(t, result.Report.Complete)
}

func TestRVOLFloorRejectsLowConviction(t *testing.T) {
	src := &fakeSource{snaps: map[string]*models.Snapshot{
		"A": mover("A", 12, 4),
		"B": mover("B", 3, 5),
		"C": mover("C", 20, 1),
	}}
	s := NewScanner(&fakeUniverse{symbols: []string{"A", "B", "C"}}, src, nil)

	result, err := s.Run(context.Background(), "test", models.FilterPolicy{
		MinAbsChangePercent: 10,
		MinRelativeVolume:   3,
		PositiveOnly:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, symbolsOf(result))
	assert.Equal(t, 2, result.Report.Filtered)
}

func TestNoRVOLFloorRanksByChange(t *testing.T) {
	src := &fakeSource{snaps: map[string]*models.Snapshot{
		"A": mover("A", 12, 4),
		"B": mover("B", 3, 5),
		"C": mover("C", 20, 1),
	}}
	s := NewScanner(&fakeUniverse{symbols: []string{"A", "B", "C"}}, src, nil)

	result, err := s.Run(context.Background(), "test", models.FilterPolicy{
		MinAbsChangePercent: 10,
		PositiveOnly:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, symbolsOf(result))
}

func TestAbsentRVOLSoftPasses(t *testing.T) {
	src := &fakeSource{snaps: map[string]*models.Snapshot{
		"NOAVG": mover("NOAVG", 14, 0), // no baseline: RVOL absent
	}}
	uni := &fakeUniverse{symbols: []string{"NOAVG"}}

	s := NewScanner(uni, src, nil)
	result, err := s.Run(context.Background(), "test", models.FilterPolicy{
		MinAbsChangePercent: 10,
		MinRelativeVolume:   3,
		PositiveOnly:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"NOAVG"}, symbolsOf(result), "absent RVOL must pass through")

	result, err = s.Run(context.Background(), "test", models.FilterPolicy{
		MinAbsChangePercent:   10,
		MinRelativeVolume:     3,
		RequireRelativeVolume: true,
		PositiveOnly:          true,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Candidates, "strict policy must reject absent RVOL")
}

func TestPartialFetchFailuresTolerated(t *testing.T) {
	snaps := make(map[string]*models.Snapshot)
	symbols := make([]string, 0, 10)
	for _, sym := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"} {
		snaps[sym] = mover(sym, 12, 4)
		symbols = append(symbols, sym)
	}
	symbols = append(symbols, "DEAD")
	src := &fakeSource{
		snaps: snaps,
		errs:  map[string]error{"DEAD": errors.New("timeout")},
	}
	s := NewScanner(&fakeUniverse{symbols: symbols}, src, nil)

	result, err := s.Run(context.Background(), "test", models.FilterPolicy{
		MinAbsChangePercent: 10,
		PositiveOnly:        true,
	})
	require.NoError(t, err)
	assert.Len(t, result.Candidates, 9)
	assert.Equal(t, 1, result.Report.FailedFetches)
	assert.Equal(t, 9, result.Report.Fetched)
	assert.Equal(t, 10, result.Report.Scanned)
}

func TestUniverseUnavailableFailsScan(t *testing.T) {
	s := NewScanner(&fakeUniverse{err: errors.New("store down")}, &fakeSource{}, nil)

	_, err := s.Run(context.Background(), "test", models.FilterPolicy{})
	require.ErrorIs(t, err, ErrUniverseUnavailable)
	assert.Equal(t, models.ScanFailed, s.State())
	require.NotNil(t, s.LastReport())
	assert.Equal(t, models.ScanFailed, s.LastReport().State)
}

func TestAllFetchesFailedFailsScan(t *testing.T) {
	src := &fakeSource{errs: map[string]error{
		"A": errors.New("down"), "B": errors.New("down"),
	}}
	s := NewScanner(&fakeUniverse{symbols: []string{"A", "B"}}, src, nil)

	_, err := s.Run(context.Background(), "test", models.FilterPolicy{})
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestEmptyResultIsNotAnError(t *testing.T) {
	src := &fakeSource{snaps: map[string]*models.Snapshot{
		"FLAT": mover("FLAT", 0.2, 1),
	}}
	s := NewScanner(&fakeUniverse{symbols: []string{"FLAT"}}, src, nil)

	result, err := s.Run(context.Background(), "test", models.FilterPolicy{
		MinAbsChangePercent: 10,
		PositiveOnly:        true,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Candidates)
	assert.Equal(t, models.ScanDone, result.Report.State)
	assert.Equal(t, 1, result.Report.Filtered)
}

func TestTiesBreakOnSymbol(t *testing.T) {
	src := &fakeSource{snaps: map[string]*models.Snapshot{
		"ZZZ": mover("ZZZ", 12, 1),
		"AAA": mover("AAA", 12, 1),
	}}
	s := NewScanner(&fakeUniverse{symbols: []string{"ZZZ", "AAA"}}, src, nil)

	result, err := s.Run(context.Background(), "test", models.FilterPolicy{
		MinAbsChangePercent: 10,
		PositiveOnly:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "ZZZ"}, symbolsOf(result))
}

func TestMaxResultsTruncates(t *testing.T) {
	src := &fakeSource{snaps: map[string]*models.Snapshot{
		"A": mover("A", 20, 1),
		"B": mover("B", 18, 1),
		"C": mover("C", 15, 1),
	}}
	s := NewScanner(&fakeUniverse{symbols: []string{"A", "B", "C"}}, src, nil)

	result, err := s.Run(context.Background(), "test", models.FilterPolicy{
		MinAbsChangePercent: 10,
		PositiveOnly:        true,
		MaxResults:          2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, symbolsOf(result))
}

func TestCandidatesReachEverySink(t *testing.T) {
	src := &fakeSource{snaps: map[string]*models.Snapshot{
		"A": mover("A", 15, 4),
	}}
	good := &recordingSink{}
	bad := &recordingSink{err: errors.New("broker down")}
	s := NewScanner(&fakeUniverse{symbols: []string{"A"}}, src, nil,
		WithSinks(bad, good))

	result, err := s.Run(context.Background(), "test", models.FilterPolicy{
		MinAbsChangePercent: 10,
		PositiveOnly:        true,
	})
	require.NoError(t, err)
	assert.Len(t, result.Candidates, 1, "sink failure must not drop candidates")
	assert.Equal(t, []string{"A"}, good.emitted)
	assert.Equal(t, 0, result.Report.Emitted, "a failed sink keeps the candidate out of the emitted count")
}

func TestNegativeMoversWhenNotPositiveOnly(t *testing.T) {
	src := &fakeSource{snaps: map[string]*models.Snapshot{
		"DN": mover("DN", -14, 2),
		"UP": mover("UP", 11, 2),
	}}
	s := NewScanner(&fakeUniverse{symbols: []string{"DN", "UP"}}, src, nil)

	result, err := s.Run(context.Background(), "test", models.FilterPolicy{
		MinAbsChangePercent: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"UP", "DN"}, symbolsOf(result))
}
