package indicators

import (
	"math"
	"testing"
	"time"

	"MoverScan/internal/domain/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestChangePercent(t *testing.T) {
	got := ChangePercent(models.Float(110), models.Float(100))
	if got == nil || !almostEqual(*got, 10) {
		t.Fatalf("ChangePercent(110, 100) = %v, want 10", got)
	}

	if got := ChangePercent(models.Float(110), nil); got != nil {
		t.Fatalf("ChangePercent with nil prevClose = %v, want nil", *got)
	}
	if got := ChangePercent(models.Float(110), models.Float(0)); got != nil {
		t.Fatalf("ChangePercent with zero prevClose = %v, want nil", *got)
	}
	if got := ChangePercent(nil, models.Float(100)); got != nil {
		t.Fatalf("ChangePercent with nil price = %v, want nil", *got)
	}
}

func TestRelativeVolume(t *testing.T) {
	got := RelativeVolume(3_000_000, models.Int64(1_000_000))
	if got == nil || !almostEqual(*got, 3) {
		t.Fatalf("RelativeVolume = %v, want 3", got)
	}

	if got := RelativeVolume(3_000_000, nil); got != nil {
		t.Fatalf("RelativeVolume with nil baseline = %v, want nil", *got)
	}
	if got := RelativeVolume(3_000_000, models.Int64(0)); got != nil {
		t.Fatalf("RelativeVolume with zero baseline = %v, want nil", *got)
	}
}

func TestSpreadPercent(t *testing.T) {
	got := SpreadPercent(models.Float(99), models.Float(101))
	if got == nil || !almostEqual(*got, 2) {
		t.Fatalf("SpreadPercent(99, 101) = %v, want 2", got)
	}

	if got := SpreadPercent(nil, models.Float(101)); got != nil {
		t.Fatalf("SpreadPercent missing bid = %v, want nil", *got)
	}
	if got := SpreadPercent(models.Float(101), models.Float(99)); got != nil {
		t.Fatalf("SpreadPercent crossed quotes = %v, want nil", *got)
	}
	if got := SpreadPercent(models.Float(0), models.Float(1)); got != nil {
		t.Fatalf("SpreadPercent zero bid = %v, want nil", *got)
	}
}

func bar(h, l, c float64, v int64) models.Bar {
	return models.Bar{Start: time.Now(), High: h, Low: l, Close: c, Volume: v}
}

func TestVWAP(t *testing.T) {
	bars := []models.Bar{
		bar(12, 10, 11, 100), // typical 11
		bar(14, 12, 13, 300), // typical 13
	}
	got := VWAP(bars)
	want := (11.0*100 + 13.0*300) / 400
	if got == nil || !almostEqual(*got, want) {
		t.Fatalf("VWAP = %v, want %v", got, want)
	}
}

func TestVWAPAbsentCases(t *testing.T) {
	if got := VWAP(nil); got != nil {
		t.Fatalf("VWAP(nil) = %v, want nil", *got)
	}
	if got := VWAP([]models.Bar{}); got != nil {
		t.Fatalf("VWAP(empty) = %v, want nil", *got)
	}
	if got := VWAP([]models.Bar{bar(10, 9, 9.5, 0)}); got != nil {
		t.Fatalf("VWAP with zero volume = %v, want nil", *got)
	}
}

func TestDistanceFromVWAP(t *testing.T) {
	got := DistanceFromVWAP(models.Float(105), models.Float(100))
	if got == nil || !almostEqual(*got, 5) {
		t.Fatalf("DistanceFromVWAP = %v, want 5", got)
	}
	if got := DistanceFromVWAP(models.Float(105), nil); got != nil {
		t.Fatalf("DistanceFromVWAP nil vwap = %v, want nil", *got)
	}
}

func TestComputeFallsBackToPreviousSession(t *testing.T) {
	snap := &models.Snapshot{
		Symbol:        "ACME",
		LastPrice:     models.Float(104),
		PreviousClose: models.Float(100),
		SessionVolume: 2_000_000,
		AverageVolume: models.Int64(1_000_000),
	}
	prev := []models.Bar{bar(12, 10, 11, 500)}

	m := Compute(snap, nil, prev)
	if m.VWAP == nil {
		t.Fatal("VWAP should fall back to previous session bars")
	}
	if !m.VWAPStale {
		t.Fatal("fallback VWAP must be marked stale")
	}
	if m.ChangePercent == nil || !almostEqual(*m.ChangePercent, 4) {
		t.Fatalf("ChangePercent = %v, want 4", m.ChangePercent)
	}
	if m.RelativeVolumeRatio == nil || !almostEqual(*m.RelativeVolumeRatio, 2) {
		t.Fatalf("RelativeVolumeRatio = %v, want 2", m.RelativeVolumeRatio)
	}
}

func TestComputeMetricsDegradeIndependently(t *testing.T) {
	snap := &models.Snapshot{
		Symbol:        "ACME",
		LastPrice:     models.Float(104),
		PreviousClose: models.Float(100),
		SessionVolume: 2_000_000,
		// No AverageVolume, no quotes.
	}

	m := Compute(snap, nil, nil)
	if m.ChangePercent == nil {
		t.Fatal("ChangePercent should still be computed")
	}
	if m.RelativeVolumeRatio != nil {
		t.Fatalf("RelativeVolumeRatio = %v, want nil", *m.RelativeVolumeRatio)
	}
	if m.SpreadPercent != nil {
		t.Fatalf("SpreadPercent = %v, want nil", *m.SpreadPercent)
	}
	if m.VWAP != nil || m.VWAPStale {
		t.Fatal("VWAP should be absent with no bars on either session")
	}
}

func TestComputePrefersPreMarketFields(t *testing.T) {
	snap := &models.Snapshot{
		Symbol:          "ACME",
		LastPrice:       models.Float(100),
		PreMarketPrice:  models.Float(108),
		PreviousClose:   models.Float(100),
		SessionVolume:   9_000_000,
		PreMarketVolume: 500_000,
		AverageVolume:   models.Int64(1_000_000),
	}

	m := Compute(snap, nil, nil)
	if m.ChangePercent == nil || !almostEqual(*m.ChangePercent, 8) {
		t.Fatalf("ChangePercent = %v, want 8 from pre-market price", m.ChangePercent)
	}
	if m.RelativeVolumeRatio == nil || !almostEqual(*m.RelativeVolumeRatio, 0.5) {
		t.Fatalf("RelativeVolumeRatio = %v, want 0.5 from pre-market volume", m.RelativeVolumeRatio)
	}
}
