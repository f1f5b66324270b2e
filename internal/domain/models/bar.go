package models

import "time"

// Bar is one OHLCV interval of an intraday series.
type Bar struct {
	Start  time.Time `json:"start"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// TypicalPrice is (high + low + close) / 3, the per-interval price used by
// the VWAP computation.
func (b Bar) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3
}

// NewsArticle is the top headline attached to a candidate.
type NewsArticle struct {
	Headline    string    `json:"headline"`
	Source      string    `json:"source,omitempty"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}
