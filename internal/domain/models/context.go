package models

import "time"

// MarketSentiment is the broad-market read derived from index change and
// the volatility index.
type MarketSentiment string

const (
	SentimentBullish MarketSentiment = "bullish"
	SentimentBearish MarketSentiment = "bearish"
	SentimentNeutral MarketSentiment = "neutral"
	SentimentUnknown MarketSentiment = "unknown"
)

// DataQuality reflects how many of the context indicators were available.
type DataQuality string

const (
	QualityFull     DataQuality = "full"
	QualityPartial  DataQuality = "partial"
	QualityDegraded DataQuality = "degraded"
)

// MarketContext is a cached snapshot of broad-market conditions used to
// annotate scans. Individual indicators are optional; missing ones lower
// DataQuality instead of failing the fetch.
type MarketContext struct {
	PrimaryIndexChange   *float64 `json:"primary_index_change,omitempty"`   // SPY change % from previous close
	SecondaryIndexChange *float64 `json:"secondary_index_change,omitempty"` // QQQ change %
	VolatilityIndexLevel *float64 `json:"volatility_index_level,omitempty"` // VIX
	IndexFuturesChange   *float64 `json:"index_futures_change,omitempty"`   // ES futures, often absent
	NasdaqFuturesChange  *float64 `json:"nasdaq_futures_change,omitempty"`  // NQ futures, often absent

	Sentiment MarketSentiment `json:"sentiment"`
	Quality   DataQuality     `json:"quality"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// RiskOn reports a favorable environment: primary index up, volatility low.
func (c *MarketContext) RiskOn() bool {
	return c.PrimaryIndexChange != nil && c.VolatilityIndexLevel != nil &&
		*c.PrimaryIndexChange > 0 && *c.VolatilityIndexLevel < 20
}

// RiskOff reports a defensive environment: index down, volatility elevated.
func (c *MarketContext) RiskOff() bool {
	return c.PrimaryIndexChange != nil && c.VolatilityIndexLevel != nil &&
		*c.PrimaryIndexChange < -0.5 && *c.VolatilityIndexLevel > 25
}

// DeriveSentiment applies the classification rules to the primary inputs.
// Bullish needs index change above +0.5% with VIX under 18; bearish is a
// drop below -0.5% or VIX over 25; missing inputs yield unknown.
func DeriveSentiment(indexChange, vixLevel *float64) MarketSentiment {
	if indexChange == nil || vixLevel == nil {
		return SentimentUnknown
	}
	switch {
	case *indexChange > 0.5 && *vixLevel < 18:
		return SentimentBullish
	case *indexChange < -0.5 || *vixLevel > 25:
		return SentimentBearish
	default:
		return SentimentNeutral
	}
}

// VWAPSignal describes a price's relation to its session VWAP.
type VWAPSignal struct {
	Side     string // "above" or "below"
	Strength string // "strong", "moderate", "weak"
}

// ClassifyVWAPSignal buckets the distance-from-VWAP percentage the way the
// research UI expects: >=2% strong, >=0.5% moderate, else weak.
func ClassifyVWAPSignal(distancePercent float64) VWAPSignal {
	sig := VWAPSignal{Side: "above"}
	abs := distancePercent
	if abs < 0 {
		sig.Side = "below"
		abs = -abs
	}
	switch {
	case abs >= 2.0:
		sig.Strength = "strong"
	case abs >= 0.5:
		sig.Strength = "moderate"
	default:
		sig.Strength = "weak"
	}
	return sig
}
