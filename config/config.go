package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Webhook struct {
		SharedSecret string `yaml:"shared_secret"`
	} `yaml:"webhook"`
	Trading struct {
		TargetCapital float64 `yaml:"target_capital"`
		PositionLimit int64   `yaml:"position_limit"`
		CallTimeout   string  `yaml:"call_timeout"`
	} `yaml:"trading"`
	Discord struct {
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"discord"`
	Notion struct {
		Token      string `yaml:"token"`
		DatabaseID string `yaml:"database_id"`
	} `yaml:"notion"`
	Journal struct {
		SQLitePath string `yaml:"sqlite_path"`
		CSVPath    string `yaml:"csv_path"`
	} `yaml:"journal"`
	Summary struct {
		Cron string `yaml:"cron"`
	} `yaml:"summary"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is fine; env vars alone can configure the
// service.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("WEBHOOK_SHARED_SECRET"); v != "" {
		cfg.Webhook.SharedSecret = v
	}
	if v := os.Getenv("TARGET_CAPITAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Trading.TargetCapital = f
		}
	}
	if v := os.Getenv("POSITION_LIMIT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Trading.PositionLimit = n
		}
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Discord.WebhookURL = v
	}
	if v := os.Getenv("NOTION_TOKEN"); v != "" {
		cfg.Notion.Token = v
	}
	if v := os.Getenv("NOTION_DATABASE_ID"); v != "" {
		cfg.Notion.DatabaseID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Journal.SQLitePath = v
	}
	if v := os.Getenv("CSV_PATH"); v != "" {
		cfg.Journal.CSVPath = v
	}
	if v := os.Getenv("SUMMARY_CRON"); v != "" {
		cfg.Summary.Cron = v
	}

	// Defaults
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Trading.TargetCapital == 0 {
		cfg.Trading.TargetCapital = 1000
	}
	if cfg.Trading.PositionLimit == 0 {
		cfg.Trading.PositionLimit = 2
	}
	if cfg.Trading.CallTimeout == "" {
		cfg.Trading.CallTimeout = "5s"
	}
	if cfg.Journal.SQLitePath == "" {
		cfg.Journal.SQLitePath = "data/trades.db"
	}
	if cfg.Journal.CSVPath == "" {
		cfg.Journal.CSVPath = "data/trades.csv"
	}
	if cfg.Summary.Cron == "" {
		// 21:05 UTC on weekdays, shortly after the US close.
		cfg.Summary.Cron = "0 5 21 * * 1-5"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Webhook.SharedSecret == "" {
		return fmt.Errorf("webhook.shared_secret is required")
	}
	if c.Trading.TargetCapital <= 0 {
		return fmt.Errorf("trading.target_capital must be positive")
	}
	if c.Trading.PositionLimit <= 0 {
		return fmt.Errorf("trading.position_limit must be positive")
	}
	if _, err := time.ParseDuration(c.Trading.CallTimeout); err != nil {
		return fmt.Errorf("trading.call_timeout: %w", err)
	}
	return nil
}

// CallTimeout returns the parsed external-call timeout.
func (c *Config) CallTimeout() time.Duration {
	d, err := time.ParseDuration(c.Trading.CallTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}
