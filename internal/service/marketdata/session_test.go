package marketdata

import (
	"testing"
	"time"
)

func mustClock(t *testing.T) *SessionClock {
	t.Helper()
	c, err := NewSessionClock()
	if err != nil {
		t.Fatalf("NewSessionClock() error = %v", err)
	}
	return c
}

func eastern(t *testing.T, hour, min int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}
	// 2026-01-05 is a Monday.
	return time.Date(2026, time.January, 5, hour, min, 0, 0, loc)
}

func TestSessionPhases(t *testing.T) {
	c := mustClock(t)

	cases := []struct {
		hour, min int
		want      SessionPhase
	}{
		{3, 59, PhaseClosed},
		{4, 0, PhasePreMarket},
		{9, 29, PhasePreMarket},
		{9, 30, PhaseRegular},
		{15, 59, PhaseRegular},
		{16, 0, PhaseAfterHour},
		{19, 59, PhaseAfterHour},
		{20, 0, PhaseClosed},
	}
	for _, tc := range cases {
		if got := c.Phase(eastern(t, tc.hour, tc.min)); got != tc.want {
			t.Fatalf("Phase(%02d:%02d ET) = %q, want %q", tc.hour, tc.min, got, tc.want)
		}
	}
}

func TestWeekendAlwaysClosed(t *testing.T) {
	c := mustClock(t)
	loc, _ := time.LoadLocation("America/New_York")

	// 2026-01-03 is a Saturday.
	sat := time.Date(2026, time.January, 3, 10, 0, 0, 0, loc)
	if got := c.Phase(sat); got != PhaseClosed {
		t.Fatalf("Phase(Saturday 10:00) = %q, want closed", got)
	}
}

func TestPhaseConvertsHostZone(t *testing.T) {
	c := mustClock(t)

	// 14:00 UTC on a Monday is 09:00 ET: pre-market.
	utc := time.Date(2026, time.January, 5, 14, 0, 0, 0, time.UTC)
	if got := c.Phase(utc); got != PhasePreMarket {
		t.Fatalf("Phase(14:00 UTC) = %q, want pre_market", got)
	}
}
