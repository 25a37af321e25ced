package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config application configuration
type Config struct {
	App          AppConfig          `yaml:"app"`
	Subscription SubscriptionConfig `yaml:"subscription"`
	Feed         FeedConfig         `yaml:"feed"`
	Report       ReportConfig       `yaml:"report"`
	Bench        BenchConfig        `yaml:"bench"`
}

// AppConfig application basic configuration
type AppConfig struct {
	Name     string `yaml:"name"`
	LogLevel string `yaml:"logLevel"` // debug, info, warn, error
}

// SubscriptionConfig is the aggregation subscription: bucket minimums, the
// fallback minimum for deeper buckets, and the raw-level depth cap.
type SubscriptionConfig struct {
	MinimumAmounts []uint64 `yaml:"minimumAmounts"`
	Fallback       uint64   `yaml:"fallback"`
	MaxDepth       int      `yaml:"maxDepth"`
}

// FeedConfig selects and tunes the update source.
type FeedConfig struct {
	Mode string `yaml:"mode"` // replay, live, synthetic

	// replay
	Path string `yaml:"path"`

	// live
	URL                  string        `yaml:"url"`
	ReconnectInterval    time.Duration `yaml:"reconnectInterval"`
	MaxReconnectInterval time.Duration `yaml:"maxReconnectInterval"`

	// synthetic
	Seed       int64  `yaml:"seed"`
	PriceSpan  uint64 `yaml:"priceSpan"`
	AmountSpan uint64 `yaml:"amountSpan"`
	Updates    int    `yaml:"updates"`

	// Power of ten applied to fractional prices and amounts.
	ScaleExponent int32 `yaml:"scaleExponent"`
}

// ReportConfig controls periodic ladder logging.
type ReportConfig struct {
	Interval  time.Duration `yaml:"interval"`
	MaxLevels int           `yaml:"maxLevels"` // buckets logged per side
}

// BenchConfig controls the replay benchmark.
type BenchConfig struct {
	Enabled    bool `yaml:"enabled"`
	Iterations int  `yaml:"iterations"`
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults
	cfg.setDefaults()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values
func (c *Config) setDefaults() {
	if c.App.Name == "" {
		c.App.Name = "market-data-aggregator"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Feed.Mode == "" {
		c.Feed.Mode = "replay"
	}
	if c.Feed.ScaleExponent == 0 {
		c.Feed.ScaleExponent = 8
	}
	if c.Feed.ReconnectInterval == 0 {
		c.Feed.ReconnectInterval = time.Second
	}
	if c.Feed.MaxReconnectInterval == 0 {
		c.Feed.MaxReconnectInterval = 30 * time.Second
	}
	if c.Feed.PriceSpan == 0 {
		c.Feed.PriceSpan = 42
	}
	if c.Feed.AmountSpan == 0 {
		c.Feed.AmountSpan = 17
	}
	if c.Feed.Updates == 0 {
		c.Feed.Updates = 100000
	}
	if c.Report.Interval == 0 {
		c.Report.Interval = 3 * time.Second
	}
	if c.Report.MaxLevels == 0 {
		c.Report.MaxLevels = 10
	}
	if c.Bench.Iterations == 0 {
		c.Bench.Iterations = 100
	}
}

// Validate validates configuration
func (c *Config) Validate() error {
	for i, amount := range c.Subscription.MinimumAmounts {
		if amount == 0 {
			return fmt.Errorf("subscription.minimumAmounts[%d] must be positive", i)
		}
	}
	if c.Subscription.Fallback == 0 {
		return fmt.Errorf("subscription.fallback must be positive")
	}
	if c.Subscription.MaxDepth <= 0 {
		return fmt.Errorf("subscription.maxDepth must be positive")
	}
	switch c.Feed.Mode {
	case "replay":
		if c.Feed.Path == "" {
			return fmt.Errorf("feed.path is required in replay mode")
		}
	case "live":
		if c.Feed.URL == "" {
			return fmt.Errorf("feed.url is required in live mode")
		}
	case "synthetic":
	default:
		return fmt.Errorf("feed.mode must be replay, live or synthetic, got %q", c.Feed.Mode)
	}
	if c.Bench.Enabled && c.Feed.Mode != "replay" && c.Feed.Mode != "synthetic" {
		return fmt.Errorf("bench requires a replay or synthetic feed")
	}
	return nil
}

// SlogLevel maps the configured log level to slog.
func (c *Config) SlogLevel() slog.Level {
	switch c.App.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
