package usecase

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"MoverScan/internal/domain/models"
	"MoverScan/internal/service/marketdata"
	"MoverScan/pkg/logger"
)

// SchedulerConfig drives the recurring scan.
type SchedulerConfig struct {
	// Spec is a standard 5-field cron expression, e.g. "*/10 4-9 * * 1-5".
	Spec     string
	Universe string
	Policy   models.FilterPolicy
	// Timeout bounds one pass; a slow upstream yields partial results
	// instead of a scan that never ends.
	Timeout time.Duration
	// PreMarketOnly skips triggers that land outside the pre-market
	// session, so a lazy cron spec does not scan a closed market.
	PreMarketOnly bool
}

// Scheduler fires scan passes on a cron schedule.
type Scheduler struct {
	cfg     SchedulerConfig
	cron    *cron.Cron
	scanner *Scanner
	clock   *marketdata.SessionClock
	log     *logger.Logger
}

// NewScheduler creates a scheduler around an existing scanner. clock may
// be nil when PreMarketOnly is unset.
func NewScheduler(cfg SchedulerConfig, scanner *Scanner, clock *marketdata.SessionClock, log *logger.Logger) *Scheduler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &Scheduler{
		cfg:     cfg,
		cron:    cron.New(),
		scanner: scanner,
		clock:   clock,
		log:     log,
	}
}

// Start registers the cron entry and begins firing.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Spec, s.runOnce); err != nil {
		return err
	}
	s.cron.Start()
	if s.log != nil {
		s.log.Info("scan scheduler started",
			logger.String("spec", s.cfg.Spec),
			logger.String("universe", s.cfg.Universe))
	}
	return nil
}

// Stop halts the schedule and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runOnce() {
	if s.cfg.PreMarketOnly && s.clock != nil && !s.clock.IsPreMarket() {
		if s.log != nil {
			s.log.Debug("skipping scheduled scan outside pre-market",
				logger.String("phase", string(s.clock.Current())))
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	if _, err := s.scanner.Run(ctx, s.cfg.Universe, s.cfg.Policy); err != nil {
		if s.log != nil {
			s.log.Error("scheduled scan failed", logger.Error(err))
		}
	}
}
