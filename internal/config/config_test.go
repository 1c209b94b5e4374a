package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fleetlens/carrierscan/internal/carrier"
	"github.com/fleetlens/carrierscan/internal/filter"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
lookup:
  query_template: "https://lookup.example.com/carrier?id=%s"
  user_agent: fleet-agent
http:
  timeout_seconds: 45
  max_attempts: 4
  backoff_base_ms: 100
  rate_limit_rps: 1.5
batch:
  window_size: 8
  window_delay_seconds: 3
  mode: addresses
  label: august
filter:
  not_found: true
  authorization: true
  auth_policy: reject_not_authorized
  recency: true
  max_age_days: 365
  fleet_size: true
extract:
  contact_pages: true
  contact_delay_ms: 250
output:
  dir: results
  variant: contact
archive:
  backend: local
  local_dir: snaps
  prefix: pages
server:
  enabled: true
  port: 9090
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Lookup.QueryTemplate != "https://lookup.example.com/carrier?id=%s" {
		t.Fatalf("expected query template override, got %q", cfg.Lookup.QueryTemplate)
	}
	if cfg.HTTP.MaxAttempts != 4 || cfg.HTTP.RateLimitRPS != 1.5 {
		t.Fatalf("expected http overrides to apply: %+v", cfg.HTTP)
	}
	if cfg.Batch.WindowSize != 8 || cfg.Batch.Mode != "addresses" || cfg.Batch.Label != "august" {
		t.Fatalf("expected batch overrides to apply: %+v", cfg.Batch)
	}
	if cfg.Output.Variant != carrier.VariantContact {
		t.Fatalf("expected contact variant, got %q", cfg.Output.Variant)
	}
	if cfg.Archive.Backend != "local" || cfg.Archive.LocalDir != "snaps" {
		t.Fatalf("expected local archive config: %+v", cfg.Archive)
	}
	if !cfg.Server.Enabled || cfg.Server.Port != 9090 {
		t.Fatalf("expected server overrides: %+v", cfg.Server)
	}
	if cfg.Logging.Development {
		t.Fatal("expected development logging disabled")
	}

	fc := cfg.FilterConfig()
	if fc.AuthPolicy != filter.AuthRejectNotAuthorized || fc.MaxAgeDays != 365 {
		t.Fatalf("expected filter config conversion: %+v", fc)
	}
	if cfg.FetchTimeout() != 45*time.Second {
		t.Fatalf("expected 45s timeout, got %s", cfg.FetchTimeout())
	}
	if cfg.WindowDelay() != 3*time.Second {
		t.Fatalf("expected 3s window delay, got %s", cfg.WindowDelay())
	}
	if cfg.ContactDelay() != 250*time.Millisecond {
		t.Fatalf("expected 250ms contact delay, got %s", cfg.ContactDelay())
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Lookup.QueryTemplate != carrier.DefaultQueryTemplate {
		t.Fatalf("expected default query template, got %q", cfg.Lookup.QueryTemplate)
	}
	if cfg.HTTP.MaxAttempts != 3 || cfg.HTTP.TimeoutSeconds != 15 {
		t.Fatalf("unexpected http defaults: %+v", cfg.HTTP)
	}
	if cfg.Batch.WindowSize != 5 || cfg.Batch.Mode != "records" {
		t.Fatalf("unexpected batch defaults: %+v", cfg.Batch)
	}
	if cfg.Filter.AuthPolicy != string(filter.AuthRequireAuthorized) {
		t.Fatalf("unexpected auth policy default: %q", cfg.Filter.AuthPolicy)
	}
	if cfg.Output.Variant != carrier.VariantSnapshot {
		t.Fatalf("unexpected variant default: %q", cfg.Output.Variant)
	}
	if cfg.Archive.Backend != "none" {
		t.Fatalf("unexpected archive default: %q", cfg.Archive.Backend)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	base, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing placeholder", func(c *Config) { c.Lookup.QueryTemplate = "https://example.com/static" }},
		{"zero window", func(c *Config) { c.Batch.WindowSize = 0 }},
		{"negative delay", func(c *Config) { c.Batch.WindowDelaySeconds = -1 }},
		{"bad mode", func(c *Config) { c.Batch.Mode = "both" }},
		{"bad auth policy", func(c *Config) { c.Filter.AuthPolicy = "maybe" }},
		{"bad variant", func(c *Config) { c.Output.Variant = "everything" }},
		{"bad archive backend", func(c *Config) { c.Archive.Backend = "s3" }},
		{"local archive without dir", func(c *Config) { c.Archive.Backend = "local"; c.Archive.LocalDir = "" }},
		{"gcs archive without bucket", func(c *Config) { c.Archive.Backend = "gcs" }},
		{"zero attempts", func(c *Config) { c.HTTP.MaxAttempts = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}
}
