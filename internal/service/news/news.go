package news

import (
	"context"
	"time"

	"MoverScan/internal/domain/models"
	"MoverScan/pkg/cache"
	httpclient "MoverScan/pkg/http"
	"MoverScan/pkg/logger"
)

const (
	defaultTTL = 15 * time.Minute
	// lookback bounds the company-news query window.
	lookback = 48 * time.Hour
)

// Config configures the headline provider.
type Config struct {
	BaseURL string
	APIKey  string
	TTL     time.Duration
}

// Provider fetches the most recent headline per symbol to annotate
// candidates. Strictly best-effort: any failure degrades to no news.
type Provider struct {
	cfg    Config
	client *httpclient.Client
	store  cache.Service
	log    *logger.Logger
	now    func() time.Time
}

// New creates a headline provider. store may be nil to disable caching.
func New(cfg Config, client *httpclient.Client, store cache.Service, log *logger.Logger) *Provider {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if client == nil {
		client = httpclient.NewClient()
	}
	return &Provider{cfg: cfg, client: client, store: store, log: log, now: time.Now}
}

type articlePayload struct {
	Headline string `json:"headline"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Datetime int64  `json:"datetime"`
}

// TopHeadline returns the freshest headline for the symbol, or nil when
// there is none. Errors are logged and reported as no news so a flaky
// news vendor never degrades a scan.
func (p *Provider) TopHeadline(ctx context.Context, symbol string) (*models.NewsArticle, error) {
	key, err := cache.Key("moverscan", "news", symbol)
	if err != nil {
		key = ""
	}

	article, _, err := cache.Fetch(ctx, p.store, key, p.cfg.TTL,
		func(ctx context.Context) (*models.NewsArticle, error) {
			return p.fetch(ctx, symbol)
		})
	if err != nil {
		if p.log != nil {
			p.log.Warn("headline fetch failed",
				logger.String("symbol", symbol), logger.Error(err))
		}
		return nil, nil
	}
	return article, nil
}

func (p *Provider) fetch(ctx context.Context, symbol string) (*models.NewsArticle, error) {
	now := p.now().UTC()
	var payload []articlePayload
	err := p.client.SendAndParse(ctx, &httpclient.RequestOptions{
		Method: httpclient.MethodGet,
		URL:    p.cfg.BaseURL + "/company-news",
		Headers: map[string]string{
			"X-Finnhub-Token": p.cfg.APIKey,
		},
		QueryParams: map[string][]string{
			"symbol": {symbol},
			"from":   {now.Add(-lookback).Format("2006-01-02")},
			"to":     {now.Format("2006-01-02")},
		},
	}, &payload)
	if err != nil {
		return nil, err
	}

	var best *articlePayload
	for i := range payload {
		a := &payload[i]
		if a.Headline == "" {
			continue
		}
		if best == nil || a.Datetime > best.Datetime {
			best = a
		}
	}
	if best == nil {
		return nil, nil
	}
	return &models.NewsArticle{
		Headline:    best.Headline,
		Source:      best.Source,
		URL:         best.URL,
		PublishedAt: time.Unix(best.Datetime, 0).UTC(),
	}, nil
}
