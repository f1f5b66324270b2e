package news

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MoverScan/pkg/cache"
)

func newTestServer(t *testing.T, calls *atomic.Int64, articles []map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/company-news", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("X-Finnhub-Token"))
		assert.NotEmpty(t, r.URL.Query().Get("from"))
		assert.NotEmpty(t, r.URL.Query().Get("to"))
		_ = json.NewEncoder(w).Encode(articles)
	}))
}

func TestTopHeadlinePicksFreshest(t *testing.T) {
	var calls atomic.Int64
	srv := newTestServer(t, &calls, []map[string]interface{}{
		{"headline": "old story", "source": "wire", "url": "http://x/1", "datetime": 1000},
		{"headline": "", "source": "wire", "url": "http://x/2", "datetime": 9000},
		{"headline": "fresh story", "source": "wire", "url": "http://x/3", "datetime": 5000},
	})
	defer srv.Close()

	p := New(Config{BaseURL: srv.URL, APIKey: "test-token"}, nil, nil, nil)

	article, err := p.TopHeadline(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, article)
	assert.Equal(t, "fresh story", article.Headline)
	assert.Equal(t, "http://x/3", article.URL)
	assert.Equal(t, int64(5000), article.PublishedAt.Unix())
}

func TestTopHeadlineNoArticles(t *testing.T) {
	var calls atomic.Int64
	srv := newTestServer(t, &calls, []map[string]interface{}{})
	defer srv.Close()

	p := New(Config{BaseURL: srv.URL, APIKey: "test-token"}, nil, nil, nil)

	article, err := p.TopHeadline(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Nil(t, article)
}

func TestTopHeadlineVendorDownIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := New(Config{BaseURL: srv.URL, APIKey: "test-token"}, nil, nil, nil)

	article, err := p.TopHeadline(context.Background(), "AAPL")
	assert.NoError(t, err)
	assert.Nil(t, article)
}

func TestTopHeadlineCached(t *testing.T) {
	var calls atomic.Int64
	srv := newTestServer(t, &calls, []map[string]interface{}{
		{"headline": "cached story", "source": "wire", "url": "http://x/1", "datetime": 1234},
	})
	defer srv.Close()

	p := New(Config{BaseURL: srv.URL, APIKey: "test-token"}, nil, cache.NewMemoryCache(), nil)

	for i := 0; i < 3; i++ {
		article, err := p.TopHeadline(context.Background(), "TSLA")
		require.NoError(t, err)
		require.NotNil(t, article)
		assert.Equal(t, "cached story", article.Headline)
	}
	assert.Equal(t, int64(1), calls.Load())
}
