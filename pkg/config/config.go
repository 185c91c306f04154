// Package config loads and validates the service configuration: built-in
// defaults, optionally overridden by a YAML file with {{.ENV_VAR}} expansion.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Search   SearchConfig   `yaml:"search"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// ServerConfig groups the HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// CORSOrigins are the browser origins allowed to call the API and
	// open WebSocket connections.
	CORSOrigins []string `yaml:"cors_origins"`
}

// UpstreamConfig holds the comment feed connection settings.
type UpstreamConfig struct {
	GQLURL         string        `yaml:"gql_url"`
	ClientID       string        `yaml:"client_id"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
}

// AnalysisConfig holds the default tuning for analysis runs. Individual
// requests may override the detection knobs per call.
type AnalysisConfig struct {
	WindowSec       int           `yaml:"window_sec"`
	ClipDurationSec int           `yaml:"clip_duration_sec"`
	MinGapSec       int           `yaml:"min_gap_sec"`
	ThresholdFactor float64       `yaml:"threshold_factor"`
	MaxHighlights   int           `yaml:"max_highlights"`
	MaxPages        int           `yaml:"max_pages"`
	Timeout         time.Duration `yaml:"timeout"`

	// MaxConcurrent caps the number of analyses running at once across
	// all videos.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// SearchConfig holds the default tuning for chat searches.
type SearchConfig struct {
	MaxResults int `yaml:"max_results"`
	MaxPages   int `yaml:"max_pages"`
}

// MaxSearchResultsCap is the hard ceiling on search result counts, both for
// configuration and per-request overrides.
const MaxSearchResultsCap = 200

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8228,
			CORSOrigins: []string{"http://localhost:5173"},
		},
		Upstream: UpstreamConfig{
			GQLURL:         "https://gql.twitch.tv/gql",
			ClientID:       "kimne78kx3ncx6brgo4mv6wki5h1ko",
			RequestTimeout: 30 * time.Second,
			RateLimitRPS:   5,
			RateLimitBurst: 10,
		},
		Analysis: AnalysisConfig{
			WindowSec:       30,
			ClipDurationSec: 30,
			MinGapSec:       45,
			ThresholdFactor: 1.0,
			MaxHighlights:   0,
			MaxPages:        15000,
			Timeout:         180 * time.Second,
			MaxConcurrent:   4,
		},
		Search: SearchConfig{
			MaxResults: 50,
			MaxPages:   2000,
		},
		LogLevel: "info",
	}
}

// SlogLevel maps the configured log level to a slog.Level. Unknown values
// fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
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

// validate checks the whole configuration and returns the first violation.
func validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return err
	}
	if err := validateUpstream(&cfg.Upstream); err != nil {
		return err
	}
	if err := validateAnalysis(&cfg.Analysis); err != nil {
		return err
	}
	if err := validateSearch(&cfg.Search); err != nil {
		return err
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return NewValidationError("log_level", "log_level",
			fmt.Errorf("must be one of debug, info, warn, error, got %q", cfg.LogLevel))
	}
	return nil
}

func validateServer(s *ServerConfig) error {
	if s.Host == "" {
		return NewValidationError("server", "host", errors.New("must not be empty"))
	}
	if s.Port < 1 || s.Port > 65535 {
		return NewValidationError("server", "port", fmt.Errorf("must be 1-65535, got %d", s.Port))
	}
	return nil
}

func validateUpstream(u *UpstreamConfig) error {
	parsed, err := url.Parse(u.GQLURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return NewValidationError("upstream", "gql_url",
			fmt.Errorf("must be an absolute URL, got %q", u.GQLURL))
	}
	if u.ClientID == "" {
		return NewValidationError("upstream", "client_id", errors.New("must not be empty"))
	}
	if u.RequestTimeout <= 0 {
		return NewValidationError("upstream", "request_timeout", errors.New("must be positive"))
	}
	if u.RateLimitRPS <= 0 {
		return NewValidationError("upstream", "rate_limit_rps", errors.New("must be positive"))
	}
	if u.RateLimitBurst < 1 {
		return NewValidationError("upstream", "rate_limit_burst", errors.New("must be at least 1"))
	}
	return nil
}

func validateAnalysis(a *AnalysisConfig) error {
	if a.WindowSec < 1 {
		return NewValidationError("analysis", "window_sec", errors.New("must be at least 1"))
	}
	if a.ClipDurationSec < 1 {
		return NewValidationError("analysis", "clip_duration_sec", errors.New("must be at least 1"))
	}
	if a.MinGapSec < 0 {
		return NewValidationError("analysis", "min_gap_sec", errors.New("must not be negative"))
	}
	if a.ThresholdFactor < 0 {
		return NewValidationError("analysis", "threshold_factor", errors.New("must not be negative"))
	}
	if a.MaxHighlights < 0 {
		return NewValidationError("analysis", "max_highlights", errors.New("must not be negative"))
	}
	if a.MaxPages < 1 {
		return NewValidationError("analysis", "max_pages", errors.New("must be at least 1"))
	}
	if a.Timeout <= 0 {
		return NewValidationError("analysis", "timeout", errors.New("must be positive"))
	}
	if a.MaxConcurrent < 1 {
		return NewValidationError("analysis", "max_concurrent", errors.New("must be at least 1"))
	}
	return nil
}

func validateSearch(s *SearchConfig) error {
	if s.MaxResults < 1 || s.MaxResults > MaxSearchResultsCap {
		return NewValidationError("search", "max_results",
			fmt.Errorf("must be 1-%d, got %d", MaxSearchResultsCap, s.MaxResults))
	}
	if s.MaxPages < 1 {
		return NewValidationError("search", "max_pages", errors.New("must be at least 1"))
	}
	return nil
}
