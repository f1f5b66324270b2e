package monitor

import (
	"net/http"
	"sync"
	"time"

	"MoverScan/pkg/logger"
)

const (
	defaultWindow         = 5 * time.Minute
	defaultAlertThreshold = 0.05
	defaultMinSamples     = 20
	defaultAlertCooldown  = 5 * time.Minute
	latencyRingSize       = 100
)

// AlertFunc receives throttle alerts. Fired at most once per cooldown per
// provider, and only once the sample floor is met.
type AlertFunc func(provider string, stats Stats)

// Stats is a point-in-time view of a provider's rolling call window.
type Stats struct {
	Provider     string  `json:"provider"`
	Total        int     `json:"total"`
	Failed       int     `json:"failed"`
	Throttled    int     `json:"throttled"`
	SuccessRate  float64 `json:"success_rate"`
	ThrottleRate float64 `json:"throttle_rate"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

type callRecord struct {
	at        time.Time
	success   bool
	throttled bool
}

type providerWindow struct {
	calls     []callRecord
	latencies []float64
	latIdx    int
	lastAlert time.Time
}

// CallMonitor tracks per-provider call outcomes over a rolling window and
// raises an alert when the throttle rate crosses the configured threshold.
type CallMonitor struct {
	mu        sync.Mutex
	providers map[string]*providerWindow

	window     time.Duration
	threshold  float64
	minSamples int
	cooldown   time.Duration

	log   *logger.Logger
	alert AlertFunc
	now   func() time.Time
}

// Option configures a CallMonitor.
type Option func(*CallMonitor)

// WithWindow overrides the rolling window duration.
func WithWindow(d time.Duration) Option {
	return func(m *CallMonitor) {
		if d > 0 {
			m.window = d
		}
	}
}

// WithThreshold overrides the throttle-rate alert threshold.
func WithThreshold(rate float64) Option {
	return func(m *CallMonitor) {
		if rate > 0 {
			m.threshold = rate
		}
	}
}

// WithMinSamples overrides the sample floor before alerts fire.
func WithMinSamples(n int) Option {
	return func(m *CallMonitor) {
		if n > 0 {
			m.minSamples = n
		}
	}
}

// WithCooldown overrides the per-provider alert cooldown.
func WithCooldown(d time.Duration) Option {
	return func(m *CallMonitor) {
		if d > 0 {
			m.cooldown = d
		}
	}
}

// WithAlertFunc installs the alert hook.
func WithAlertFunc(fn AlertFunc) Option {
	return func(m *CallMonitor) { m.alert = fn }
}

// New creates a CallMonitor with the default 5 minute window, 5%% throttle
// threshold and 20 sample floor.
func New(log *logger.Logger, opts ...Option) *CallMonitor {
	m := &CallMonitor{
		providers:  make(map[string]*providerWindow),
		window:     defaultWindow,
		threshold:  defaultAlertThreshold,
		minSamples: defaultMinSamples,
		cooldown:   defaultAlertCooldown,
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RecordCall records one upstream call outcome. A 429 status counts as
// throttled regardless of the success flag.
func (m *CallMonitor) RecordCall(provider string, success bool, httpStatus int, latencyMs float64) {
	m.mu.Lock()

	pw, ok := m.providers[provider]
	if !ok {
		pw = &providerWindow{latencies: make([]float64, 0, latencyRingSize)}
		m.providers[provider] = pw
	}

	now := m.now()
	throttled := httpStatus == http.StatusTooManyRequests
	pw.calls = append(pw.calls, callRecord{at: now, success: success && !throttled, throttled: throttled})
	m.prune(pw, now)

	if latencyMs >= 0 {
		if len(pw.latencies) < latencyRingSize {
			pw.latencies = append(pw.latencies, latencyMs)
		} else {
			pw.latencies[pw.latIdx] = latencyMs
			pw.latIdx = (pw.latIdx + 1) % latencyRingSize
		}
	}

	stats := m.statsLocked(provider, pw)
	shouldAlert := stats.Total >= m.minSamples &&
		stats.ThrottleRate >= m.threshold &&
		now.Sub(pw.lastAlert) >= m.cooldown
	if shouldAlert {
		pw.lastAlert = now
	}
	m.mu.Unlock()

	if shouldAlert {
		if m.log != nil {
			m.log.Warn("provider throttle rate above threshold",
				logger.String("provider", provider),
				logger.Any("throttle_rate", stats.ThrottleRate),
				logger.Int("samples", stats.Total))
		}
		if m.alert != nil {
			m.alert(provider, stats)
		}
	}
}

func (m *CallMonitor) prune(pw *providerWindow, now time.Time) {
	cutoff := now.Add(-m.window)
	i := 0
	for i < len(pw.calls) && !pw.calls[i].at.After(cutoff) {
		i++
	}
	if i > 0 {
		pw.calls = append(pw.calls[:0], pw.calls[i:]...)
	}
}

func (m *CallMonitor) statsLocked(provider string, pw *providerWindow) Stats {
	s := Stats{Provider: provider}
	for _, c := range pw.calls {
		s.Total++
		if c.throttled {
			s.Throttled++
		}
		if !c.success {
			s.Failed++
		}
	}
	if s.Total > 0 {
		s.SuccessRate = float64(s.Total-s.Failed) / float64(s.Total)
		s.ThrottleRate = float64(s.Throttled) / float64(s.Total)
	}
	if len(pw.latencies) > 0 {
		var sum float64
		for _, l := range pw.latencies {
			sum += l
		}
		s.AvgLatencyMs = sum / float64(len(pw.latencies))
	}
	return s
}

// Stats returns the current window stats for one provider.
func (m *CallMonitor) Stats(provider string) Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	pw, ok := m.providers[provider]
	if !ok {
		return Stats{Provider: provider}
	}
	m.prune(pw, m.now())
	return m.statsLocked(provider, pw)
}

// AllStats returns the current window stats for every tracked provider.
func (m *CallMonitor) AllStats() []Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	out := make([]Stats, 0, len(m.providers))
	for name, pw := range m.providers {
		m.prune(pw, now)
		out = append(out, m.statsLocked(name, pw))
	}
	return out
}
