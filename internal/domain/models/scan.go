package models

import "time"

// ScanState tracks where a scan invocation is in its lifecycle.
type ScanState string

const (
	ScanIdle              ScanState = "idle"
	ScanFetchingUniverse  ScanState = "fetching_universe"
	ScanFetchingSnapshots ScanState = "fetching_snapshots"
	ScanComputingMetrics  ScanState = "computing_metrics"
	ScanFiltering         ScanState = "filtering"
	ScanRanking           ScanState = "ranking"
	ScanEmitting          ScanState = "emitting"
	ScanDone              ScanState = "done"
	ScanFailed            ScanState = "failed"
)

// FilterPolicy is the explicit filter configuration for one scan pass.
// Zero MinRelativeVolume means "no RVOL floor". A symbol whose RVOL could
// not be computed soft-passes the RVOL filter unless RequireRelativeVolume
// is set.
type FilterPolicy struct {
	MinAbsChangePercent   float64
	MinRelativeVolume     float64
	RequireRelativeVolume bool
	MaxSpreadPercent      float64 // 0 = no spread cap
	PositiveOnly          bool
	MaxResults            int
}

// ScanReport summarizes one scan pass so callers can distinguish "no
// movers today" from "the provider was down".
type ScanReport struct {
	Universe      string        `json:"universe"`
	State         ScanState     `json:"state"`
	Scanned       int           `json:"scanned"`        // symbols the universe supplied
	Fetched       int           `json:"fetched"`        // snapshots successfully retrieved
	FailedFetches int           `json:"failed_fetches"` // symbols skipped on upstream error
	Filtered      int           `json:"filtered"`       // snapshots rejected by policy
	Emitted       int           `json:"emitted"`        // candidates handed to the sink
	Complete      bool          `json:"complete"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
}

// ScanResult is what a scan invocation returns: the ranked candidates,
// the pass summary and the broad-market context the pass ran under.
// Candidates may be empty on a successful scan.
type ScanResult struct {
	Candidates []*MoverCandidate `json:"candidates"`
	Report     ScanReport        `json:"report"`
	Market     *MarketContext    `json:"market,omitempty"` // nil when the context service is absent or down
}
