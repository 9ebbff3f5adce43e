// Package config defines the top-level configuration for marketlens and
// provides validation helpers.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by MARKETLENS_* environment
// variables.
type Config struct {
	Upstream UpstreamConfig `toml:"upstream"`
	Scoring  ScoringConfig  `toml:"scoring"`
	Server   ServerConfig   `toml:"server"`
	LogLevel string         `toml:"log_level"`
}

// UpstreamConfig holds the trading-API endpoint, credentials, and scan
// limits.
type UpstreamConfig struct {
	BaseURL    string   `toml:"base_url"`
	APIKey     string   `toml:"api_key"`
	APISecret  string   `toml:"api_secret"`
	Timeout    duration `toml:"timeout"`
	PageSize   int      `toml:"page_size"`
	MaxPages   int      `toml:"max_pages"`
	MarketType string   `toml:"market_type"`
	RateLimit  float64  `toml:"rate_limit"`
	RateBurst  int      `toml:"rate_burst"`
	SpecPath   string   `toml:"spec_path"`
	SpecTTL    duration `toml:"spec_ttl"`
}

// ScoringConfig holds the verdict threshold policy. The defaults are the
// stock policy; operators can relax or tighten them per deployment.
type ScoringConfig struct {
	DepthOK       float64 `toml:"depth_ok"`
	DepthWait     float64 `toml:"depth_wait"`
	SpreadOKPct   float64 `toml:"spread_ok_pct"`
	SpreadWaitPct float64 `toml:"spread_wait_pct"`
	MoveOKPct     float64 `toml:"move_ok_pct"`
	MoveWaitPct   float64 `toml:"move_wait_pct"`
	VolumeOK      float64 `toml:"volume_ok"`
	VolumeWait    float64 `toml:"volume_wait"`
}

// ServerConfig holds the HTTP boundary configuration.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// duration wraps time.Duration so TOML values like "30s" parse naturally.
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Defaults returns the built-in configuration, suitable for analyzing
// public markets without credentials.
func Defaults() Config {
	return Config{
		Upstream: UpstreamConfig{
			BaseURL:    "https://api.predix.example.com",
			Timeout:    duration{30 * time.Second},
			PageSize:   20,
			MaxPages:   50,
			MarketType: "binary",
			RateLimit:  10,
			RateBurst:  5,
			SpecPath:   "/openapi.json",
			SpecTTL:    duration{10 * time.Minute},
		},
		Scoring: ScoringConfig{
			DepthOK:       25000,
			DepthWait:     10000,
			SpreadOKPct:   2.5,
			SpreadWaitPct: 5,
			MoveOKPct:     6,
			MoveWaitPct:   12,
			VolumeOK:      50000,
			VolumeWait:    20000,
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    8080,
		},
		LogLevel: "info",
	}
}

// Validate checks the configuration for values that would make the service
// misbehave at runtime.
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("config: upstream.base_url is required")
	}
	if c.Upstream.PageSize <= 0 {
		return fmt.Errorf("config: upstream.page_size must be positive, got %d", c.Upstream.PageSize)
	}
	if c.Upstream.MaxPages <= 0 {
		return fmt.Errorf("config: upstream.max_pages must be positive, got %d", c.Upstream.MaxPages)
	}
	if c.Upstream.APIKey != "" && c.Upstream.APISecret == "" {
		return fmt.Errorf("config: upstream.api_secret is required when api_key is set")
	}

	if c.Scoring.DepthWait > c.Scoring.DepthOK {
		return fmt.Errorf("config: scoring.depth_wait must not exceed depth_ok")
	}
	if c.Scoring.SpreadOKPct > c.Scoring.SpreadWaitPct {
		return fmt.Errorf("config: scoring.spread_ok_pct must not exceed spread_wait_pct")
	}
	if c.Scoring.MoveOKPct > c.Scoring.MoveWaitPct {
		return fmt.Errorf("config: scoring.move_ok_pct must not exceed move_wait_pct")
	}
	if c.Scoring.VolumeWait > c.Scoring.VolumeOK {
		return fmt.Errorf("config: scoring.volume_wait must not exceed volume_ok")
	}

	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}

	return nil
}
