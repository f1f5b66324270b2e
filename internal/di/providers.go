package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"MoverScan/internal/domain/models"
	"MoverScan/internal/domain/repository"
	"MoverScan/internal/handler/api"
	internalrepo "MoverScan/internal/repository"
	"MoverScan/internal/service/marketctx"
	"MoverScan/internal/service/marketdata"
	"MoverScan/internal/service/monitor"
	"MoverScan/internal/service/news"
	"MoverScan/internal/service/ratelimit"
	"MoverScan/internal/service/universe"
	"MoverScan/internal/usecase"
	"MoverScan/pkg/cache"
	pkgch "MoverScan/pkg/clickhouse"
	"MoverScan/pkg/config"
	xhttp "MoverScan/pkg/http"
	pkgkafka "MoverScan/pkg/kafka"
	applogger "MoverScan/pkg/logger"
	"MoverScan/pkg/metrics"
	"MoverScan/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideCache builds the cache backend per config.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryCache(), nil
	case "redis", "layered":
		host, port, err := splitAddr(cfg.Cache.Redis.Addr)
		if err != nil {
			return nil, fmt.Errorf("redis addr: %w", err)
		}
		redisCache, err := cache.NewRedisCache(
			cache.WithRedisHost(host),
			cache.WithRedisPort(port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		if cfg.Cache.Backend == "layered" {
			return cache.NewLayeredCache(redisCache), nil
		}
		return redisCache, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}

// ProvideLimiter picks the rate limiting strategy from config.
func ProvideLimiter(cfg *config.Config, store cache.Service, log *applogger.Logger) ratelimit.Limiter {
	rl := cfg.Provider.RateLimit
	if rl.Strategy == "sliding_window" {
		limit := int(rl.PerSecond * rl.Window.Seconds())
		if limit < 1 {
			limit = 1
		}
		return ratelimit.NewSlidingWindow(store, log, limit, rl.Window)
	}
	return ratelimit.NewTokenBucket(ratelimit.Rate{PerSecond: rl.PerSecond, Burst: rl.Burst})
}

// ProvideMonitor creates the upstream call monitor.
func ProvideMonitor(log *applogger.Logger) *monitor.CallMonitor {
	return monitor.New(log)
}

// ProvideMetrics creates the Prometheus recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideMarketDataClient assembles the resilient provider gateway.
func ProvideMarketDataClient(
	cfg *config.Config,
	limiter ratelimit.Limiter,
	store cache.Service,
	mon *monitor.CallMonitor,
	rec repository.Metrics,
	log *applogger.Logger,
) *marketdata.Client {
	httpClient := xhttp.NewClient(xhttp.WithTimeout(cfg.Provider.Timeout))
	provider := marketdata.NewHTTPProvider(marketdata.HTTPProviderConfig{
		Name:            cfg.Provider.Name,
		BaseURL:         cfg.Provider.BaseURL,
		APIKey:          cfg.Provider.APIKey,
		AvgVolumeWindow: cfg.Provider.AvgVolumeWindow,
	}, httpClient)

	return marketdata.NewClient(provider,
		marketdata.WithLimiter(limiter),
		marketdata.WithCache(store),
		marketdata.WithMonitor(mon),
		marketdata.WithMetrics(rec),
		marketdata.WithLogger(log),
		marketdata.WithRetry(cfg.Provider.Retry.MaxAttempts, cfg.Provider.Retry.BackoffBase, cfg.Provider.Retry.BackoffMax),
		marketdata.WithSnapshotTTL(cfg.Cache.SnapshotTTL),
		marketdata.WithBatchWorkers(cfg.Scan.Workers),
	)
}

// ProvideUniverse creates the curated universe provider.
func ProvideUniverse(store cache.Service, log *applogger.Logger) repository.UniverseProvider {
	return universe.NewProvider(store, log)
}

// ProvideNews creates the headline provider; nil when disabled.
func ProvideNews(cfg *config.Config, store cache.Service, log *applogger.Logger) repository.NewsProvider {
	if !cfg.News.Enabled {
		return nil
	}
	return news.New(news.Config{
		BaseURL: cfg.News.BaseURL,
		APIKey:  cfg.News.APIKey,
		TTL:     cfg.News.TTL,
	}, nil, store, log)
}

// ProvideMarketContext creates the broad-market context service.
func ProvideMarketContext(client *marketdata.Client, store cache.Service, cfg *config.Config, log *applogger.Logger) repository.ContextProvider {
	return marketctx.New(client, log,
		marketctx.WithCache(store),
		marketctx.WithTTL(cfg.Cache.ContextTTL))
}

// ProvideClickHouseClient connects to ClickHouse and applies the
// candidate schema when that sink is enabled; nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	ch := cfg.Sinks.ClickHouse
	if !ch.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithHTTP(ch.UseHTTP),
		pkgch.WithAsyncInsert(ch.AsyncInsert, ch.WaitForAsync),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout, ch.WriteTimeout),
		pkgch.WithMaxExecutionTime(ch.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.CandidateSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// logPublisher adapts the Kafka producer to the logger's collector
// publisher.
type logPublisher struct {
	producer *pkgkafka.Producer
}

func (p logPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

// ProvideKafkaProducer connects to Kafka when that sink is enabled; nil
// otherwise. With a producer available, repeated error logs are
// aggregated and published alongside the candidate topic.
func ProvideKafkaProducer(cfg *config.Config, log *applogger.Logger) (*pkgkafka.Producer, error) {
	k := cfg.Sinks.Kafka
	if !k.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithBatchSize(k.Producer.BatchSize),
		pkgkafka.WithBatchBytes(k.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(k.Producer.Linger),
		pkgkafka.WithTimeouts(k.Producer.WriteTimeout, k.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(k.Producer.MaxAttempts),
		pkgkafka.WithAsync(k.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	log.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   30 * time.Second,
		CountThreshold: 100,
		Topic:          k.Topic + ".errors",
		Publisher:      logPublisher{producer: producer},
	})
	return producer, nil
}

// ProvideSinks builds the enabled candidate sinks.
func ProvideSinks(cfg *config.Config, chClient *pkgch.Client, producer *pkgkafka.Producer) []repository.CandidateSink {
	var sinks []repository.CandidateSink
	if chClient != nil {
		sinks = append(sinks, internalrepo.NewClickHouseSink(chClient.DB(), cfg.Sinks.ClickHouse.Table))
	}
	if producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaSink(producer, cfg.Sinks.Kafka.Topic))
	}
	return sinks
}

// ProvideDefaultPolicy builds the configured filter policy. An
// out-of-range change threshold falls back to the default.
func ProvideDefaultPolicy(cfg *config.Config, log *applogger.Logger) models.FilterPolicy {
	minChange, ok := config.SanitizeMinChange(cfg.Scan.MinChangePercent)
	if !ok {
		log.Warn("configured change threshold out of range, using default",
			applogger.Any("requested", cfg.Scan.MinChangePercent),
			applogger.Any("used", minChange))
	}
	return models.FilterPolicy{
		MinAbsChangePercent:   minChange,
		MinRelativeVolume:     cfg.Scan.MinRelativeVolume,
		RequireRelativeVolume: cfg.Scan.RequireRelativeVolume,
		MaxSpreadPercent:      cfg.Scan.MaxSpreadPercent,
		PositiveOnly:          cfg.Scan.PositiveOnly,
		MaxResults:            cfg.Scan.MaxResults,
	}
}

// ProvideScanner assembles the scan orchestrator.
func ProvideScanner(
	universes repository.UniverseProvider,
	client *marketdata.Client,
	newsProvider repository.NewsProvider,
	market repository.ContextProvider,
	sinks []repository.CandidateSink,
	rec repository.Metrics,
	log *applogger.Logger,
) *usecase.Scanner {
	opts := []usecase.ScannerOption{
		usecase.WithBars(client),
		usecase.WithMarketContext(market),
		usecase.WithMetrics(rec),
		usecase.WithSinks(sinks...),
	}
	if newsProvider != nil {
		opts = append(opts, usecase.WithNews(newsProvider))
	}
	return usecase.NewScanner(universes, client, log, opts...)
}

// ProvideSessionClock creates the exchange-time clock.
func ProvideSessionClock() (*marketdata.SessionClock, error) {
	return marketdata.NewSessionClock()
}

// ProvideScheduler creates the recurring scan scheduler; nil when
// scheduling is disabled.
func ProvideScheduler(
	cfg *config.Config,
	scanner *usecase.Scanner,
	clock *marketdata.SessionClock,
	policy models.FilterPolicy,
	log *applogger.Logger,
) *usecase.Scheduler {
	if !cfg.Scan.Schedule.Enabled {
		return nil
	}
	return usecase.NewScheduler(usecase.SchedulerConfig{
		Spec:          cfg.Scan.Schedule.Spec,
		Universe:      cfg.Scan.Universe,
		Policy:        policy,
		Timeout:       cfg.Scan.Timeout,
		PreMarketOnly: cfg.Scan.Schedule.PreMarketOnly,
	}, scanner, clock, log)
}

// ProvideHandler builds the HTTP API handler.
func ProvideHandler(
	cfg *config.Config,
	scanner *usecase.Scanner,
	client *marketdata.Client,
	market repository.ContextProvider,
	universes repository.UniverseProvider,
	policy models.FilterPolicy,
	log *applogger.Logger,
) xhttp.Handler {
	return api.NewScanHandler(log, scanner, client, market, universes, policy, cfg.Scan.Universe)
}

// ProvideApp wires the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	scanner *usecase.Scanner,
	scheduler *usecase.Scheduler,
	handler xhttp.Handler,
	sinks []repository.CandidateSink,
	chClient *pkgch.Client,
	policy models.FilterPolicy,
) *server.App {
	return server.New(cfg, log, scanner, scheduler, handler, sinks, chClient, policy)
}
