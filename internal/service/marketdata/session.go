package marketdata

import (
	"time"
)

// SessionPhase names the part of the US equities trading day.
type SessionPhase string

const (
	PhaseClosed    SessionPhase = "closed"
	PhasePreMarket SessionPhase = "pre_market"
	PhaseRegular   SessionPhase = "regular"
	PhaseAfterHour SessionPhase = "after_hours"
)

// SessionClock resolves the current US equities session phase. All
// boundaries are evaluated in America/New_York regardless of host zone.
type SessionClock struct {
	loc *time.Location
	now func() time.Time
}

// NewSessionClock creates a clock pinned to the exchange time zone.
func NewSessionClock() (*SessionClock, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, err
	}
	return &SessionClock{loc: loc, now: time.Now}, nil
}

// Phase returns the session phase at the given instant.
func (s *SessionClock) Phase(at time.Time) SessionPhase {
	t := at.In(s.loc)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return PhaseClosed
	}

	minutes := t.Hour()*60 + t.Minute()
	switch {
	case minutes >= 4*60 && minutes < 9*60+30:
		return PhasePreMarket
	case minutes >= 9*60+30 && minutes < 16*60:
		return PhaseRegular
	case minutes >= 16*60 && minutes < 20*60:
		return PhaseAfterHour
	default:
		return PhaseClosed
	}
}

// Current returns the phase right now.
func (s *SessionClock) Current() SessionPhase {
	return s.Phase(s.now())
}

// IsPreMarket reports whether the pre-market session is open (04:00 to
// 09:30 ET on a weekday).
func (s *SessionClock) IsPreMarket() bool {
	return s.Current() == PhasePreMarket
}

// IsMarketHours reports whether the regular session is open.
func (s *SessionClock) IsMarketHours() bool {
	return s.Current() == PhaseRegular
}

// IsAfterHours reports whether the post-close session is open.
func (s *SessionClock) IsAfterHours() bool {
	return s.Current() == PhaseAfterHour
}
