package indicators

import (
	"MoverScan/internal/domain/models"
)

// All functions report "no signal" as a nil pointer. They never return
// zero, NaN or Inf in place of a missing input: a metric that cannot be
// computed is absent, not neutral.

// ChangePercent returns (price-prevClose)/prevClose*100, or nil when the
// previous close is missing or non-positive.
func ChangePercent(price, prevClose *float64) *float64 {
	if price == nil || prevClose == nil || *prevClose <= 0 {
		return nil
	}
	return models.Float((*price - *prevClose) / *prevClose * 100)
}

// RelativeVolume returns volume divided by the average-volume baseline,
// or nil when the baseline is missing or non-positive.
func RelativeVolume(volume int64, avgVolume *int64) *float64 {
	if avgVolume == nil || *avgVolume <= 0 {
		return nil
	}
	return models.Float(float64(volume) / float64(*avgVolume))
}

// SpreadPercent returns the bid/ask spread as a percentage of the
// midpoint. Nil unless both quotes are present, positive and ordered.
func SpreadPercent(bid, ask *float64) *float64 {
	if bid == nil || ask == nil || *bid <= 0 || *ask <= 0 || *ask < *bid {
		return nil
	}
	mid := (*bid + *ask) / 2
	if mid <= 0 {
		return nil
	}
	return models.Float((*ask - *bid) / mid * 100)
}

// VWAP computes the volume-weighted average price over the bars using
// typical price (H+L+C)/3. Nil on an empty series or zero total volume.
func VWAP(bars []models.Bar) *float64 {
	var pv, vol float64
	for _, b := range bars {
		pv += b.TypicalPrice() * float64(b.Volume)
		vol += float64(b.Volume)
	}
	if vol <= 0 {
		return nil
	}
	return models.Float(pv / vol)
}

// DistanceFromVWAP returns how far price sits from VWAP, as a percentage
// of VWAP. Nil when either input is absent or VWAP is non-positive.
func DistanceFromVWAP(price, vwap *float64) *float64 {
	if price == nil || vwap == nil || *vwap <= 0 {
		return nil
	}
	return models.Float((*price - *vwap) / *vwap * 100)
}

// Compute derives the full metric set for one snapshot. Intraday bars
// drive VWAP; when none are available the previous session's bars are
// used and the result is marked stale. Each metric degrades to absent
// independently of the others.
func Compute(snap *models.Snapshot, intraday, previous []models.Bar) models.DerivedMetrics {
	var m models.DerivedMetrics
	if snap == nil {
		return m
	}

	price := snap.ActivePrice()
	m.ChangePercent = ChangePercent(price, snap.PreviousClose)
	m.RelativeVolumeRatio = RelativeVolume(snap.ActiveVolume(), snap.AverageVolume)
	m.SpreadPercent = SpreadPercent(snap.Bid, snap.Ask)

	m.VWAP = VWAP(intraday)
	if m.VWAP == nil {
		if fallback := VWAP(previous); fallback != nil {
			m.VWAP = fallback
			m.VWAPStale = true
		}
	}
	m.DistanceFromVWAP = DistanceFromVWAP(price, m.VWAP)

	return m
}
