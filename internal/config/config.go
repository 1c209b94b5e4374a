// Package config loads and validates scan configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fleetlens/carrierscan/internal/carrier"
	"github.com/fleetlens/carrierscan/internal/filter"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Lookup  LookupConfig  `mapstructure:"lookup"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Extract ExtractConfig `mapstructure:"extract"`
	Output  OutputConfig  `mapstructure:"output"`
	Archive ArchiveConfig `mapstructure:"archive"`
	DB      DBConfig      `mapstructure:"db"`
	PubSub  PubSubConfig  `mapstructure:"pubsub"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LookupConfig shapes how identifiers become lookup addresses.
type LookupConfig struct {
	QueryTemplate string `mapstructure:"query_template"`
	UserAgent     string `mapstructure:"user_agent"`
}

// HTTPConfig configures fetch timeout, retry, and pacing behavior.
type HTTPConfig struct {
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	MaxAttempts    int     `mapstructure:"max_attempts"`
	BackoffBaseMs  int     `mapstructure:"backoff_base_ms"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
}

// BatchConfig governs window sizing and pacing.
type BatchConfig struct {
	WindowSize         int    `mapstructure:"window_size"`
	WindowDelaySeconds int    `mapstructure:"window_delay_seconds"`
	Mode               string `mapstructure:"mode"`
	Label              string `mapstructure:"label"`
}

// FilterConfig toggles the eligibility predicates.
type FilterConfig struct {
	NotFound      bool   `mapstructure:"not_found"`
	Authorization bool   `mapstructure:"authorization"`
	AuthPolicy    string `mapstructure:"auth_policy"`
	Recency       bool   `mapstructure:"recency"`
	MaxAgeDays    int    `mapstructure:"max_age_days"`
	FleetSize     bool   `mapstructure:"fleet_size"`
}

// ExtractConfig controls the optional contact-page walk.
type ExtractConfig struct {
	ContactPages   bool `mapstructure:"contact_pages"`
	ContactDelayMs int  `mapstructure:"contact_delay_ms"`
}

// OutputConfig sets the CSV destination and column variant.
type OutputConfig struct {
	Dir     string `mapstructure:"dir"`
	Variant string `mapstructure:"variant"`
}

// ArchiveConfig selects the snapshot archive backend.
type ArchiveConfig struct {
	Backend   string `mapstructure:"backend"`
	LocalDir  string `mapstructure:"local_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// DBConfig controls the optional Postgres record store.
type DBConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// PubSubConfig holds metadata for batch completion events.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// ServerConfig controls the status HTTP server.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CARRIERSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("lookup.query_template", carrier.DefaultQueryTemplate)
	v.SetDefault("lookup.user_agent", "carrierscan/0.1")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.max_attempts", 3)
	v.SetDefault("http.backoff_base_ms", 250)
	v.SetDefault("http.rate_limit_rps", 2.0)
	v.SetDefault("batch.window_size", 5)
	v.SetDefault("batch.window_delay_seconds", 2)
	v.SetDefault("batch.mode", "records")
	v.SetDefault("filter.not_found", true)
	v.SetDefault("filter.authorization", true)
	v.SetDefault("filter.auth_policy", string(filter.AuthRequireAuthorized))
	v.SetDefault("filter.recency", false)
	v.SetDefault("filter.max_age_days", 730)
	v.SetDefault("filter.fleet_size", false)
	v.SetDefault("extract.contact_pages", false)
	v.SetDefault("extract.contact_delay_ms", 500)
	v.SetDefault("output.dir", "out")
	v.SetDefault("output.variant", carrier.VariantSnapshot)
	v.SetDefault("archive.backend", "none")
	v.SetDefault("archive.prefix", "snapshots")
	v.SetDefault("db.table", "carriers")
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if !strings.Contains(c.Lookup.QueryTemplate, "%s") {
		return fmt.Errorf("lookup.query_template must contain a %%s placeholder")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxAttempts <= 0 {
		return fmt.Errorf("http.max_attempts must be > 0")
	}
	if c.Batch.WindowSize <= 0 {
		return fmt.Errorf("batch.window_size must be > 0")
	}
	if c.Batch.WindowDelaySeconds < 0 {
		return fmt.Errorf("batch.window_delay_seconds must be >= 0")
	}
	switch c.Batch.Mode {
	case "records", "addresses":
	default:
		return fmt.Errorf("batch.mode must be records or addresses")
	}
	if err := c.FilterConfig().Validate(); err != nil {
		return err
	}
	if _, err := carrier.Columns(c.Output.Variant); err != nil {
		return err
	}
	switch c.Archive.Backend {
	case "none", "local", "gcs":
	default:
		return fmt.Errorf("archive.backend must be none, local, or gcs")
	}
	if c.Archive.Backend == "local" && c.Archive.LocalDir == "" {
		return fmt.Errorf("archive.local_dir must be set for the local backend")
	}
	if c.Archive.Backend == "gcs" && c.Archive.GCSBucket == "" {
		return fmt.Errorf("archive.gcs_bucket must be set for the gcs backend")
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}

// FilterConfig converts the loaded toggles into the filter package's config.
func (c Config) FilterConfig() filter.Config {
	return filter.Config{
		NotFound:      c.Filter.NotFound,
		Authorization: c.Filter.Authorization,
		AuthPolicy:    filter.AuthPolicy(c.Filter.AuthPolicy),
		Recency:       c.Filter.Recency,
		MaxAgeDays:    c.Filter.MaxAgeDays,
		FleetSize:     c.Filter.FleetSize,
	}
}

// FetchTimeout returns the HTTP timeout as a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// BackoffBase returns the retry backoff base as a duration.
func (c Config) BackoffBase() time.Duration {
	return time.Duration(c.HTTP.BackoffBaseMs) * time.Millisecond
}

// WindowDelay returns the inter-window pause as a duration.
func (c Config) WindowDelay() time.Duration {
	return time.Duration(c.Batch.WindowDelaySeconds) * time.Second
}

// ContactDelay returns the courtesy pause before each contact-page fetch.
func (c Config) ContactDelay() time.Duration {
	return time.Duration(c.Extract.ContactDelayMs) * time.Millisecond
}
