package models

import "time"

// Snapshot is a point-in-time quote read for one symbol, normalized from
// the upstream provider. Price and volume fields that the provider did not
// return are nil: outside active trading most providers drop bid/ask and
// pre-market figures, and that is a valid state, not an error.
type Snapshot struct {
	Symbol         string   `json:"symbol"`
	CompanyName    string   `json:"company_name,omitempty"`
	LastPrice      *float64 `json:"last_price,omitempty"`
	PreviousClose  *float64 `json:"previous_close,omitempty"`
	PreMarketPrice *float64 `json:"pre_market_price,omitempty"`

	SessionVolume   int64  `json:"session_volume"`
	PreMarketVolume int64  `json:"pre_market_volume"`
	AverageVolume   *int64 `json:"average_volume,omitempty"` // trailing baseline, window per config

	Bid *float64 `json:"bid,omitempty"`
	Ask *float64 `json:"ask,omitempty"`

	FetchedAt time.Time `json:"fetched_at"`
}

// ActivePrice returns the most relevant price: pre-market when present,
// otherwise the regular session last price.
func (s *Snapshot) ActivePrice() *float64 {
	if s.PreMarketPrice != nil {
		return s.PreMarketPrice
	}
	return s.LastPrice
}

// ActiveVolume prefers the pre-market session volume and falls back to
// regular-session volume when the pre-market figure is zero.
func (s *Snapshot) ActiveVolume() int64 {
	if s.PreMarketVolume > 0 {
		return s.PreMarketVolume
	}
	return s.SessionVolume
}

// HasPreMarketData reports whether the provider returned a pre-market quote.
func (s *Snapshot) HasPreMarketData() bool {
	return s.PreMarketPrice != nil
}

// VolumeConviction classifies a relative volume ratio. The bands are
// advisory display classifications, not filter cutoffs.
type VolumeConviction string

const (
	ConvictionStrong   VolumeConviction = "strong"   // rvol >= 3.0
	ConvictionModerate VolumeConviction = "moderate" // rvol >= 2.0
	ConvictionWeak     VolumeConviction = "weak"
)

// DerivedMetrics holds the conviction metrics computed from a Snapshot.
// Every field is independently optional: a missing input leaves that one
// metric nil without blocking the others, so downstream filters can tell
// "no signal" apart from "zero signal".
type DerivedMetrics struct {
	ChangePercent       *float64 `json:"change_percent,omitempty"`
	RelativeVolumeRatio *float64 `json:"relative_volume_ratio,omitempty"`
	SpreadPercent       *float64 `json:"spread_percent,omitempty"`
	VWAP                *float64 `json:"vwap,omitempty"`
	DistanceFromVWAP    *float64 `json:"distance_from_vwap,omitempty"`
	VWAPStale           bool     `json:"vwap_stale,omitempty"` // carried over from the previous session
}

// Conviction returns the volume conviction band, or "" when RVOL is absent.
func (m *DerivedMetrics) Conviction() VolumeConviction {
	if m.RelativeVolumeRatio == nil {
		return ""
	}
	switch r := *m.RelativeVolumeRatio; {
	case r >= 3.0:
		return ConvictionStrong
	case r >= 2.0:
		return ConvictionModerate
	default:
		return ConvictionWeak
	}
}

// MoverCandidate is a snapshot plus its derived metrics that survived the
// active filter policy. Created once per scan pass, never mutated, handed
// to the candidate sink which owns durability.
type MoverCandidate struct {
	Snapshot Snapshot       `json:"snapshot"`
	Metrics  DerivedMetrics `json:"metrics"`
	Rank     int            `json:"rank"`

	// News annotation, best-effort. Empty when the news provider had
	// nothing or failed; never blocks a scan.
	NewsHeadline string `json:"news_headline,omitempty"`
	NewsSource   string `json:"news_source,omitempty"`
	NewsURL      string `json:"news_url,omitempty"`

	IdentifiedAt time.Time `json:"identified_at"`
}

// Float returns a pointer to v. Convenience for building optional fields.
func Float(v float64) *float64 { return &v }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }
