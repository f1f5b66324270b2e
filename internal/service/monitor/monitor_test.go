package monitor

import (
	"net/http"
	"testing"
	"time"
)

func TestStatsAggregation(t *testing.T) {
	m := New(nil)

	for i := 0; i < 8; i++ {
		m.RecordCall("quotes", true, http.StatusOK, 100)
	}
	m.RecordCall("quotes", false, http.StatusInternalServerError, 300)
	m.RecordCall("quotes", true, http.StatusTooManyRequests, 50)

	s := m.Stats("quotes")
	if s.Total != 10 {
		t.Fatalf("Total = %d, want 10", s.Total)
	}
	if s.Throttled != 1 {
		t.Fatalf("Throttled = %d, want 1", s.Throttled)
	}
	if s.Failed != 2 {
		t.Fatalf("Failed = %d, want 2 (error + throttle)", s.Failed)
	}
	if s.SuccessRate != 0.8 {
		t.Fatalf("SuccessRate = %v, want 0.8", s.SuccessRate)
	}
	if s.AvgLatencyMs != 115 {
		t.Fatalf("AvgLatencyMs = %v, want 115", s.AvgLatencyMs)
	}
}

func TestNoAlertBelowSampleFloor(t *testing.T) {
	fired := 0
	m := New(nil, WithAlertFunc(func(string, Stats) { fired++ }))

	// 19 throttled calls: rate is 100% but below the 20 sample floor.
	for i := 0; i < 19; i++ {
		m.RecordCall("quotes", false, http.StatusTooManyRequests, 10)
	}
	if fired != 0 {
		t.Fatalf("alert fired %d times below sample floor, want 0", fired)
	}

	m.RecordCall("quotes", true, http.StatusOK, 10)
	if fired != 1 {
		t.Fatalf("alert fired %d times at sample floor, want 1", fired)
	}
}

func TestAlertThreshold(t *testing.T) {
	fired := 0
	m := New(nil, WithAlertFunc(func(string, Stats) { fired++ }))

	// 1 throttle in 25 calls = 4%, under the 5% threshold.
	m.RecordCall("quotes", true, http.StatusTooManyRequests, 10)
	for i := 0; i < 24; i++ {
		m.RecordCall("quotes", true, http.StatusOK, 10)
	}
	if fired != 0 {
		t.Fatalf("alert fired at 4%% throttle rate, want none")
	}

	// A second throttle pushes the rate to ~7.7%.
	m.RecordCall("quotes", true, http.StatusTooManyRequests, 10)
	if fired != 1 {
		t.Fatalf("alert fired %d times above threshold, want 1", fired)
	}
}

func TestAlertCooldown(t *testing.T) {
	fired := 0
	now := time.Now()
	m := New(nil,
		WithAlertFunc(func(string, Stats) { fired++ }),
		WithCooldown(time.Minute))
	m.now = func() time.Time { return now }

	for i := 0; i < 30; i++ {
		m.RecordCall("quotes", false, http.StatusTooManyRequests, 10)
	}
	if fired != 1 {
		t.Fatalf("alert fired %d times within cooldown, want 1", fired)
	}

	now = now.Add(2 * time.Minute)
	m.RecordCall("quotes", false, http.StatusTooManyRequests, 10)
	if fired != 2 {
		t.Fatalf("alert fired %d times after cooldown, want 2", fired)
	}
}

func TestWindowPruning(t *testing.T) {
	now := time.Now()
	m := New(nil, WithWindow(time.Minute))
	m.now = func() time.Time { return now }

	m.RecordCall("quotes", true, http.StatusOK, 10)
	now = now.Add(2 * time.Minute)
	m.RecordCall("quotes", true, http.StatusOK, 10)

	if s := m.Stats("quotes"); s.Total != 1 {
		t.Fatalf("Total = %d after pruning, want 1", s.Total)
	}
}

func TestProvidersTrackedIndependently(t *testing.T) {
	m := New(nil)
	m.RecordCall("quotes", true, http.StatusOK, 10)
	m.RecordCall("news", false, http.StatusBadGateway, 20)

	if s := m.Stats("quotes"); s.Failed != 0 {
		t.Fatalf("quotes Failed = %d, want 0", s.Failed)
	}
	if s := m.Stats("news"); s.Failed != 1 {
		t.Fatalf("news Failed = %d, want 1", s.Failed)
	}
	if got := len(m.AllStats()); got != 2 {
		t.Fatalf("AllStats() len = %d, want 2", got)
	}
}
