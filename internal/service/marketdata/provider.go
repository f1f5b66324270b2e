package marketdata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"MoverScan/internal/domain/models"
	httpclient "MoverScan/pkg/http"
)

// BarSession selects which trading session's bars to fetch.
type BarSession string

const (
	SessionIntraday BarSession = "intraday"
	SessionPrevious BarSession = "previous"
)

// Provider is the raw upstream quote API, before rate limiting, caching
// and retry are layered on. One implementation per vendor.
type Provider interface {
	Name() string
	Quote(ctx context.Context, symbol string) (*models.Snapshot, error)
	Bars(ctx context.Context, symbol string, session BarSession) ([]models.Bar, error)
}

// HTTPProviderConfig configures a vendor REST endpoint.
type HTTPProviderConfig struct {
	Name string
	// BaseURL is the API root, e.g. https://quotes.example.com/v1.
	BaseURL string
	APIKey  string
	// AvgVolumeWindow is the lookback the vendor should use for the
	// average-volume baseline, e.g. "3mo".
	AvgVolumeWindow string
}

// HTTPProvider talks to a quote vendor's REST API and normalizes its
// payloads into snapshots and bars.
type HTTPProvider struct {
	cfg    HTTPProviderConfig
	client *httpclient.Client
}

// NewHTTPProvider creates a REST quote provider.
func NewHTTPProvider(cfg HTTPProviderConfig, client *httpclient.Client) *HTTPProvider {
	if cfg.AvgVolumeWindow == "" {
		cfg.AvgVolumeWindow = "3mo"
	}
	if client == nil {
		client = httpclient.NewClient()
	}
	return &HTTPProvider{cfg: cfg, client: client}
}

func (p *HTTPProvider) Name() string {
	return p.cfg.Name
}

type quotePayload struct {
	Symbol          string   `json:"symbol"`
	CompanyName     string   `json:"company_name"`
	Last            *float64 `json:"last"`
	PreviousClose   *float64 `json:"previous_close"`
	PreMarketPrice  *float64 `json:"pre_market_price"`
	Volume          int64    `json:"volume"`
	PreMarketVolume int64    `json:"pre_market_volume"`
	AverageVolume   *int64   `json:"average_volume"`
	Bid             *float64 `json:"bid"`
	Ask             *float64 `json:"ask"`
}

// Quote fetches one symbol's current snapshot.
func (p *HTTPProvider) Quote(ctx context.Context, symbol string) (*models.Snapshot, error) {
	var payload quotePayload
	err := p.get(ctx, p.cfg.BaseURL+"/quotes/"+symbol, map[string][]string{
		"avg_volume_window": {p.cfg.AvgVolumeWindow},
	}, &payload)
	if err != nil {
		return nil, err
	}

	return &models.Snapshot{
		Symbol:          symbol,
		CompanyName:     payload.CompanyName,
		LastPrice:       payload.Last,
		PreviousClose:   payload.PreviousClose,
		PreMarketPrice:  payload.PreMarketPrice,
		SessionVolume:   payload.Volume,
		PreMarketVolume: payload.PreMarketVolume,
		AverageVolume:   payload.AverageVolume,
		Bid:             payload.Bid,
		Ask:             payload.Ask,
		FetchedAt:       time.Now().UTC(),
	}, nil
}

type barPayload struct {
	Start  int64   `json:"t"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume int64   `json:"v"`
}

// Bars fetches 5-minute OHLCV bars for the requested session.
func (p *HTTPProvider) Bars(ctx context.Context, symbol string, session BarSession) ([]models.Bar, error) {
	var payload struct {
		Bars []barPayload `json:"bars"`
	}
	err := p.get(ctx, p.cfg.BaseURL+"/bars/"+symbol, map[string][]string{
		"session":  {string(session)},
		"interval": {"5m"},
	}, &payload)
	if err != nil {
		return nil, err
	}

	bars := make([]models.Bar, 0, len(payload.Bars))
	for _, b := range payload.Bars {
		bars = append(bars, models.Bar{
			Start:  time.Unix(b.Start, 0).UTC(),
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	return bars, nil
}

func (p *HTTPProvider) get(ctx context.Context, url string, query map[string][]string, dest interface{}) error {
	headers := map[string]string{}
	if p.cfg.APIKey != "" {
		headers["X-Api-Key"] = p.cfg.APIKey
	}

	resp, err := p.client.SendRequest(ctx, &httpclient.RequestOptions{
		Method:      httpclient.MethodGet,
		URL:         url,
		Headers:     headers,
		QueryParams: query,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrSymbolNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Status: resp.StatusCode, Body: string(body)}
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}
