package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Provider struct {
		Name    string        `yaml:"name" default:"quotes"`
		BaseURL string        `yaml:"base_url" validate:"required,url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout" default:"30s"`
		// AvgVolumeWindow is the baseline the vendor uses for average
		// volume (e.g. "3mo" or "10d"). Named here on purpose so the
		// RVOL denominator is an explicit operational choice.
		AvgVolumeWindow string `yaml:"avg_volume_window" default:"3mo"`
		Retry           struct {
			MaxAttempts int           `yaml:"max_attempts" default:"3"`
			BackoffBase time.Duration `yaml:"backoff_base" default:"1s"`
			BackoffMax  time.Duration `yaml:"backoff_max" default:"8s"`
		} `yaml:"retry"`
		RateLimit struct {
			// Strategy is token_bucket (in-process) or sliding_window
			// (shared through the cache backend).
			Strategy  string        `yaml:"strategy" default:"token_bucket" validate:"oneof=token_bucket sliding_window"`
			PerSecond float64       `yaml:"per_second" default:"5"`
			Burst     int           `yaml:"burst" default:"5"`
			Window    time.Duration `yaml:"window" default:"1s"`
		} `yaml:"rate_limit"`
	} `yaml:"provider"`
	News struct {
		Enabled bool          `yaml:"enabled"`
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		TTL     time.Duration `yaml:"ttl" default:"15m"`
	} `yaml:"news"`
	Cache struct {
		Backend     string        `yaml:"backend" default:"memory" validate:"oneof=memory redis layered"`
		SnapshotTTL time.Duration `yaml:"snapshot_ttl" default:"5m"`
		ContextTTL  time.Duration `yaml:"context_ttl" default:"60s"`
		Redis       struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Scan struct {
		Universe              string        `yaml:"universe" default:"comprehensive"`
		MinChangePercent      float64       `yaml:"min_change_percent" default:"10"`
		MinRelativeVolume     float64       `yaml:"min_relative_volume" default:"3" validate:"gte=0"`
		RequireRelativeVolume bool          `yaml:"require_relative_volume"`
		MaxSpreadPercent      float64       `yaml:"max_spread_percent"`
		PositiveOnly          bool          `yaml:"positive_only" default:"true"`
		MaxResults            int           `yaml:"max_results" default:"20"`
		Workers               int           `yaml:"workers" default:"8"`
		Timeout               time.Duration `yaml:"timeout" default:"5m"`
		Schedule              struct {
			Enabled       bool   `yaml:"enabled"`
			Spec          string `yaml:"spec" default:"*/10 4-9 * * 1-5"`
			PreMarketOnly bool   `yaml:"pre_market_only" default:"true"`
		} `yaml:"schedule"`
	} `yaml:"scan"`
	Sinks struct {
		Kafka struct {
			Enabled      bool     `yaml:"enabled"`
			Brokers      []string `yaml:"brokers"`
			Topic        string   `yaml:"topic" default:"mover.candidates"`
			RequiredAcks int      `yaml:"required_acks" default:"1"`
			Compression  string   `yaml:"compression" default:"snappy"`
			Producer     struct {
				MaxAttempts  int           `yaml:"max_attempts" default:"3"`
				Linger       time.Duration `yaml:"linger" default:"50ms"`
				BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
				BatchSize    int           `yaml:"batch_size" default:"100"`
				WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
				ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
				Async        bool          `yaml:"async"`
			} `yaml:"producer"`
		} `yaml:"kafka"`
		ClickHouse struct {
			Enabled          bool          `yaml:"enabled"`
			Host             string        `yaml:"host"`
			Port             int           `yaml:"port" default:"9000"`
			Database         string        `yaml:"database" default:"moverscan"`
			User             string        `yaml:"user" default:"default"`
			Password         string        `yaml:"password"`
			Table            string        `yaml:"table" default:"mover_candidates"`
			UseHTTP          bool          `yaml:"use_http"`
			AsyncInsert      bool          `yaml:"async_insert"`
			WaitForAsync     bool          `yaml:"wait_for_async_insert"`
			DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
			ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
			WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
			MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
		} `yaml:"clickhouse"`
	} `yaml:"sinks"`
}

// Bounds for the scan change-percent threshold. Out-of-range requests
// fall back to the default with a warning instead of failing the scan.
const (
	MinChangeFloor   = 5.0
	MinChangeCeil    = 20.0
	DefaultMinChange = 10.0
)

// SanitizeMinChange clamps a requested change threshold into the
// supported range. The second return is false when the input was invalid
// and the default was substituted.
func SanitizeMinChange(v float64) (float64, bool) {
	if v < MinChangeFloor || v > MinChangeCeil {
		return DefaultMinChange, false
	}
	return v, true
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("MARKET_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv("MARKET_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		c.News.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Sinks.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.Sinks.ClickHouse.Host = v
	}
	if v := os.Getenv("SCAN_UNIVERSE"); v != "" {
		c.Scan.Universe = v
	}

	return c, nil
}

// Validate checks structural validity plus the cross-field rules the
// struct tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Sinks.Kafka.Enabled && len(c.Sinks.Kafka.Brokers) == 0 {
		return fmt.Errorf("sinks.kafka.brokers required when the kafka sink is enabled")
	}
	if c.Sinks.ClickHouse.Enabled && c.Sinks.ClickHouse.Host == "" {
		return fmt.Errorf("sinks.clickhouse.host required when the clickhouse sink is enabled")
	}
	if c.News.Enabled && c.News.BaseURL == "" {
		return fmt.Errorf("news.base_url required when news is enabled")
	}
	if c.Cache.Backend != "memory" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr required for backend %q", c.Cache.Backend)
	}
	return nil
}
