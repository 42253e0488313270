package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Scanner   ScannerConfig    `yaml:"scanner"`
	Providers []ProviderConfig `yaml:"providers"`
	Postgres  PostgresConfig   `yaml:"postgres"`
	Redis     RedisConfig      `yaml:"redis"`
	Telegram  TelegramConfig   `yaml:"telegram"`
	Logging   LoggingConfig    `yaml:"logging"`
	Health    HealthConfig     `yaml:"health"`
}

type ScannerConfig struct {
	Interval             time.Duration `yaml:"interval"`               // polling cycle interval
	CycleTimeout         time.Duration `yaml:"cycle_timeout"`          // safety net for a whole cycle, 0 = unlimited
	FetchTimeout         time.Duration `yaml:"fetch_timeout"`          // per-adapter request timeout
	MaxConcurrentFetches int           `yaml:"max_concurrent_fetches"` // bounded adapter parallelism
	MatchTimeTolerance   time.Duration `yaml:"match_time_tolerance"`   // start-time bucket for cross-provider matching
	MinProfitPercent     float64       `yaml:"min_profit_percent"`     // opportunities below this are ignored
	DedupWindowHours     int           `yaml:"dedup_window_hours"`     // suppression window for identical opportunities
}

type ProviderConfig struct {
	Name           string        `yaml:"name"`             // bookmaker name, must resolve via enums.ParseProvider
	Type           string        `yaml:"type"`             // adapter type registered in the providers registry
	BaseURL        string        `yaml:"base_url"`
	Timeout        time.Duration `yaml:"timeout"`          // per-request HTTP timeout; scanner.fetch_timeout when unset
	MaxRetries     int           `yaml:"max_retries"`      // retry budget for throttled/5xx responses
	MarginFromAway bool          `yaml:"margin_from_away"` // provider reports handicap lines from the away side
	UserAgent      string        `yaml:"user_agent"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	QuoteTTL time.Duration `yaml:"quote_ttl"` // TTL for cached latest quotes
}

type TelegramConfig struct {
	BotToken     string        `yaml:"bot_token"`
	ChatID       int64         `yaml:"chat_id"`
	SendInterval time.Duration `yaml:"send_interval"` // min interval between API calls (~30/min limit)
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	File   string `yaml:"file"`   // optional JSON file sink alongside stdout
}

type HealthConfig struct {
	Addr string `yaml:"addr"` // health/metrics listen address, e.g. ":8080"
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Scanner.Interval <= 0 {
		c.Scanner.Interval = 60 * time.Second
	}
	if c.Scanner.FetchTimeout <= 0 {
		c.Scanner.FetchTimeout = 30 * time.Second
	}
	if c.Scanner.MaxConcurrentFetches <= 0 {
		c.Scanner.MaxConcurrentFetches = 10
	}
	if c.Scanner.MatchTimeTolerance <= 0 {
		c.Scanner.MatchTimeTolerance = 30 * time.Minute
	}
	if c.Scanner.DedupWindowHours <= 0 {
		c.Scanner.DedupWindowHours = 24
	}
	if c.Redis.QuoteTTL <= 0 {
		c.Redis.QuoteTTL = time.Hour
	}
	if c.Telegram.SendInterval <= 0 {
		c.Telegram.SendInterval = 2 * time.Second
	}
	if c.Health.Addr == "" {
		c.Health.Addr = ":8080"
	}
}
