package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"MoverScan/internal/domain/models"
	"MoverScan/internal/domain/repository"
	"MoverScan/internal/usecase"
	pkgch "MoverScan/pkg/clickhouse"
	"MoverScan/pkg/config"
	xhttp "MoverScan/pkg/http"
	"MoverScan/pkg/logger"
)

// App ties the scanner, scheduler and HTTP API together for the serve
// mode, and owns the lifecycle of the external connections.
type App struct {
	cfg       *config.Config
	log       *logger.Logger
	scanner   *usecase.Scanner
	scheduler *usecase.Scheduler
	sinks     []repository.CandidateSink
	chClient  *pkgch.Client
	policy    models.FilterPolicy

	httpServer *xhttp.Server
}

// New assembles the application. scheduler and chClient may be nil when
// the corresponding features are disabled. Sinks own their producers;
// the ClickHouse pool is closed here because the sink borrows it.
func New(
	cfg *config.Config,
	log *logger.Logger,
	scanner *usecase.Scanner,
	scheduler *usecase.Scheduler,
	handler xhttp.Handler,
	sinks []repository.CandidateSink,
	chClient *pkgch.Client,
	policy models.FilterPolicy,
) *App {
	httpServer := xhttp.NewServer(handler,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
	return &App{
		cfg:        cfg,
		log:        log,
		scanner:    scanner,
		scheduler:  scheduler,
		sinks:      sinks,
		chClient:   chClient,
		policy:     policy,
		httpServer: httpServer,
	}
}

// Run starts the HTTP server and, when enabled, the scan scheduler, then
// blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	if a.scheduler != nil {
		if err := a.scheduler.Start(); err != nil {
			return err
		}
	}

	if err := a.httpServer.Start(); err != nil {
		return err
	}
	a.log.Info("application started",
		logger.Int("port", a.cfg.Server.Port),
		logger.String("environment", a.cfg.Environment))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	a.log.Info("shutdown signal received", logger.String("signal", sig.String()))

	return a.Shutdown()
}

// ScanOnce runs a single scan pass against the given universe. An empty
// universe name falls back to the configured default, a zero policy to
// the configured one.
func (a *App) ScanOnce(ctx context.Context, universeName string, policy *models.FilterPolicy) (*models.ScanResult, error) {
	if universeName == "" {
		universeName = a.cfg.Scan.Universe
	}
	p := a.policy
	if policy != nil {
		p = *policy
	}
	return a.scanner.Run(ctx, universeName, p)
}

// Policy returns the configured default filter policy.
func (a *App) Policy() models.FilterPolicy {
	return a.policy
}

// Shutdown stops the scheduler and HTTP server, then closes sinks and
// external connections.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	var firstErr error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http server shutdown failed", logger.Error(err))
		firstErr = err
	}

	// Flush aggregated error logs before the producer goes away.
	a.log.RemoveCollector()

	for _, sink := range a.sinks {
		if err := sink.Close(); err != nil {
			a.log.Error("sink close failed", logger.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Error("clickhouse close failed", logger.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	a.log.Info("application stopped")
	return firstErr
}
