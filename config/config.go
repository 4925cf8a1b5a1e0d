// Package config loads service configuration from defaults, an optional YAML file,
// a .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config contains process configuration.
type Config struct {
	// Port is the HTTP listen address, e.g. ":5200".
	Port string `koanf:"port"`

	DatabaseDriver string `koanf:"database_driver"`
	DatabaseURL    string `koanf:"database_url"`

	SlackWebhookURL     string `koanf:"slack_webhook_url"`
	LinearWebhookSecret string `koanf:"linear_webhook_secret"`

	// AllowedOrigins is a comma-separated CORS origin list.
	AllowedOrigins string `koanf:"allowed_origins"`

	// RestDays is a comma-separated list of weekday names that never break a streak.
	RestDays string `koanf:"rest_days"`

	LeaderboardSize int `koanf:"leaderboard_size"`
	// SummaryEvery posts the top-N summary every N credited completions.
	SummaryEvery int `koanf:"summary_every"`
	SummarySize  int `koanf:"summary_size"`

	// DigestSchedule is a cron expression for the monthly top earners digest; empty disables it.
	DigestSchedule string `koanf:"digest_schedule"`

	// CatalogFile optionally points at a YAML achievement/level catalog.
	CatalogFile string `koanf:"catalog_file"`

	NotifyTimeout time.Duration `koanf:"notify_timeout"`

	// Leaderboard snapshots go to R2 when R2BucketName is set.
	CloudflareAccountID string `koanf:"cloudflare_account_id"`
	R2AccessKeyID       string `koanf:"r2_access_key_id"`
	R2AccessKeySecret   string `koanf:"r2_access_key_secret"`
	R2BucketName        string `koanf:"r2_bucket_name"`
}

// New returns a Config with defaults applied.
func New() *Config {
	return &Config{
		Port:            ":5200",
		DatabaseDriver:  "postgres",
		AllowedOrigins:  "*",
		RestDays:        "friday,saturday",
		LeaderboardSize: 10,
		SummaryEvery:    10,
		SummarySize:     3,
		NotifyTimeout:   5 * time.Second,
	}
}

// Load builds a Config by layering defaults, the YAML file named by CONFIG_FILE,
// and environment variables (DATABASE_URL -> database_url). A .env file in the
// working directory is merged into the environment first.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("⚠️  Could not read .env file: %v", err)
	}

	k := koanf.New(".")

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// Flat keys: keep underscores so DATABASE_URL maps onto the database_url tag.
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required values and ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("port must not be empty")
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database_driver must be postgres or sqlite, got %q", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable not set")
	}
	if c.SummaryEvery < 1 {
		return errors.New("summary_every must be at least 1")
	}
	if c.SummarySize < 1 || c.LeaderboardSize < 1 {
		return errors.New("summary_size and leaderboard_size must be at least 1")
	}
	if c.NotifyTimeout <= 0 {
		return errors.New("notify_timeout must be positive")
	}
	return nil
}

// RestDayNames splits RestDays into trimmed names.
func (c *Config) RestDayNames() []string {
	var out []string
	for _, part := range strings.Split(c.RestDays, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Origins splits AllowedOrigins into trimmed origins joined the way fiber's cors expects.
func (c *Config) Origins() string {
	parts := strings.Split(c.AllowedOrigins, ",")
	for i, origin := range parts {
		parts[i] = strings.TrimSpace(origin)
	}
	return strings.Join(parts, ",")
}
