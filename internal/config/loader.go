package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies MARKETLENS_* environment variable overrides,
// and returns the final Config. An empty path skips the file and uses
// defaults plus environment. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known MARKETLENS_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject credentials at deploy time without touching the
// TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Upstream ──
	setStr(&cfg.Upstream.BaseURL, "MARKETLENS_UPSTREAM_BASE_URL")
	setStr(&cfg.Upstream.APIKey, "MARKETLENS_UPSTREAM_API_KEY")
	setStr(&cfg.Upstream.APISecret, "MARKETLENS_UPSTREAM_API_SECRET")
	setDuration(&cfg.Upstream.Timeout, "MARKETLENS_UPSTREAM_TIMEOUT")
	setInt(&cfg.Upstream.PageSize, "MARKETLENS_UPSTREAM_PAGE_SIZE")
	setInt(&cfg.Upstream.MaxPages, "MARKETLENS_UPSTREAM_MAX_PAGES")
	setStr(&cfg.Upstream.MarketType, "MARKETLENS_UPSTREAM_MARKET_TYPE")
	setFloat64(&cfg.Upstream.RateLimit, "MARKETLENS_UPSTREAM_RATE_LIMIT")
	setInt(&cfg.Upstream.RateBurst, "MARKETLENS_UPSTREAM_RATE_BURST")
	setStr(&cfg.Upstream.SpecPath, "MARKETLENS_UPSTREAM_SPEC_PATH")
	setDuration(&cfg.Upstream.SpecTTL, "MARKETLENS_UPSTREAM_SPEC_TTL")

	// ── Scoring ──
	setFloat64(&cfg.Scoring.DepthOK, "MARKETLENS_SCORING_DEPTH_OK")
	setFloat64(&cfg.Scoring.DepthWait, "MARKETLENS_SCORING_DEPTH_WAIT")
	setFloat64(&cfg.Scoring.SpreadOKPct, "MARKETLENS_SCORING_SPREAD_OK_PCT")
	setFloat64(&cfg.Scoring.SpreadWaitPct, "MARKETLENS_SCORING_SPREAD_WAIT_PCT")
	setFloat64(&cfg.Scoring.MoveOKPct, "MARKETLENS_SCORING_MOVE_OK_PCT")
	setFloat64(&cfg.Scoring.MoveWaitPct, "MARKETLENS_SCORING_MOVE_WAIT_PCT")
	setFloat64(&cfg.Scoring.VolumeOK, "MARKETLENS_SCORING_VOLUME_OK")
	setFloat64(&cfg.Scoring.VolumeWait, "MARKETLENS_SCORING_VOLUME_WAIT")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "MARKETLENS_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "MARKETLENS_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "MARKETLENS_SERVER_CORS_ORIGINS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "MARKETLENS_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
