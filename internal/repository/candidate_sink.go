package repository

import (
	"context"
	"database/sql"
	"fmt"

	"MoverScan/internal/domain/models"
	"MoverScan/internal/domain/repository"
	pkgkafka "MoverScan/pkg/kafka"
)

// CandidateSchema holds the idempotent DDL for the candidate table.
var CandidateSchema = []string{
	`CREATE TABLE IF NOT EXISTS mover_candidates (
		identified_at  DateTime,
		symbol         LowCardinality(String),
		company_name   String,
		rank           UInt16,
		price          Nullable(Float64),
		previous_close Nullable(Float64),
		change_pct     Nullable(Float64),
		rvol           Nullable(Float64),
		spread_pct     Nullable(Float64),
		vwap           Nullable(Float64),
		vwap_stale     UInt8,
		volume         Int64,
		news_headline  String,
		news_source    String,
		news_url       String
	) ENGINE = MergeTree()
	ORDER BY (identified_at, symbol)
	TTL identified_at + INTERVAL 90 DAY`,
}

// ClickHouseSink persists surviving candidates for backtesting and the
// research UI.
type ClickHouseSink struct {
	db    *sql.DB
	table string
}

// NewClickHouseSink creates the persistence sink.
func NewClickHouseSink(db *sql.DB, table string) repository.CandidateSink {
	if table == "" {
		table = "mover_candidates"
	}
	return &ClickHouseSink{db: db, table: table}
}

func (s *ClickHouseSink) Emit(ctx context.Context, c *models.MoverCandidate) error {
	q := fmt.Sprintf(`INSERT INTO %s
		(identified_at, symbol, company_name, rank, price, previous_close,
		 change_pct, rvol, spread_pct, vwap, vwap_stale, volume,
		 news_headline, news_source, news_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)

	stale := uint8(0)
	if c.Metrics.VWAPStale {
		stale = 1
	}
	_, err := s.db.ExecContext(ctx, q,
		c.IdentifiedAt,
		c.Snapshot.Symbol,
		c.Snapshot.CompanyName,
		uint16(c.Rank),
		c.Snapshot.ActivePrice(),
		c.Snapshot.PreviousClose,
		c.Metrics.ChangePercent,
		c.Metrics.RelativeVolumeRatio,
		c.Metrics.SpreadPercent,
		c.Metrics.VWAP,
		stale,
		c.Snapshot.ActiveVolume(),
		c.NewsHeadline,
		c.NewsSource,
		c.NewsURL,
	)
	return err
}

func (s *ClickHouseSink) Close() error {
	return nil // pool is owned by pkg/clickhouse
}

// KafkaSink publishes candidates for downstream consumers (alerting,
// dashboards). Keyed by symbol so one symbol's updates stay ordered.
type KafkaSink struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSink creates the notification sink.
func NewKafkaSink(producer *pkgkafka.Producer, topic string) repository.CandidateSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (k *KafkaSink) Emit(ctx context.Context, c *models.MoverCandidate) error {
	payload := map[string]interface{}{
		"symbol":        c.Snapshot.Symbol,
		"rank":          c.Rank,
		"price":         c.Snapshot.ActivePrice(),
		"change_pct":    c.Metrics.ChangePercent,
		"rvol":          c.Metrics.RelativeVolumeRatio,
		"spread_pct":    c.Metrics.SpreadPercent,
		"vwap":          c.Metrics.VWAP,
		"vwap_stale":    c.Metrics.VWAPStale,
		"conviction":    string(c.Metrics.Conviction()),
		"volume":        c.Snapshot.ActiveVolume(),
		"news_headline": c.NewsHeadline,
		"news_url":      c.NewsURL,
		"identified_at": c.IdentifiedAt.Unix(),
	}
	if c.Metrics.DistanceFromVWAP != nil {
		sig := models.ClassifyVWAPSignal(*c.Metrics.DistanceFromVWAP)
		payload["vwap_side"] = sig.Side
		payload["vwap_strength"] = sig.Strength
	}
	return k.producer.Publish(ctx, k.topic, []byte(c.Snapshot.Symbol), payload)
}

func (k *KafkaSink) Close() error {
	if k.producer != nil {
		return k.producer.Close()
	}
	return nil
}
