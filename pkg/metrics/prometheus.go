package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	providerCalls   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	scansTotal      *prometheus.CounterVec
	scanCandidates  *prometheus.HistogramVec
	scanDuration    *prometheus.HistogramVec
	cacheResults    *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		providerCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moverscan_provider_calls_total",
				Help: "Upstream provider calls by outcome",
			},
			[]string{"provider", "success"},
		),
		providerLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moverscan_provider_call_duration_seconds",
				Help:    "Upstream provider call latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moverscan_errors_total",
				Help: "Errors by kind",
			},
			[]string{"type"},
		),
		scansTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moverscan_scans_total",
				Help: "Completed scan passes per universe",
			},
			[]string{"universe"},
		),
		scanCandidates: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moverscan_scan_candidates",
				Help:    "Candidates surviving the filter per pass",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
			},
			[]string{"universe"},
		),
		scanDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moverscan_scan_duration_seconds",
				Help:    "Wall-clock duration of a scan pass",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"universe"},
		),
		cacheResults: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moverscan_cache_results_total",
				Help: "Result cache lookups by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// RecordProviderCall records an upstream call outcome with latency.
func (r *Recorder) RecordProviderCall(provider string, success bool, seconds float64) {
	r.providerCalls.WithLabelValues(provider, strconv.FormatBool(success)).Inc()
	r.providerLatency.WithLabelValues(provider).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordScan records one finished scan pass.
func (r *Recorder) RecordScan(universe string, candidates int, seconds float64) {
	r.scansTotal.WithLabelValues(universe).Inc()
	r.scanCandidates.WithLabelValues(universe).Observe(float64(candidates))
	r.scanDuration.WithLabelValues(universe).Observe(seconds)
}

// RecordCacheResult records a cache hit or miss.
func (r *Recorder) RecordCacheResult(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	r.cacheResults.WithLabelValues(outcome).Inc()
}
