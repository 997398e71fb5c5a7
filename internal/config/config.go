// Package config loads newscore service configuration from YAML with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/medwire/newscore/internal/logger"
)

// Version is the service version reported by the health endpoint and
// the version command.
const Version = "1.0.0"

// Default configuration values.
const (
	defaultServiceName       = "newscore"
	defaultServiceVersion    = Version
	defaultServicePort       = 8090
	defaultReadTimeout       = 30 * time.Second
	defaultWriteTimeout      = 60 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultSourceTimeout     = 10 * time.Second
	defaultSourceRateLimit   = 2.0
	defaultUserAgent         = "newscore/1.0 (+https://github.com/medwire/newscore)"
	defaultPrefsTimeout      = 5 * time.Second
	defaultPrefsCacheTTL     = 30 * time.Second
	defaultPrefsFailureTTL   = 5 * time.Second
	defaultScoringWorkers    = 8
	defaultPercentileMinimum = 5
	defaultTopPercentile     = 0.2
	defaultSmallSetRatio     = 0.85
	defaultThresholdFloor    = 40.0
	defaultMaxPageSize       = 100
)

// Config holds all configuration for the newscore service.
type Config struct {
	Service     ServiceConfig     `yaml:"service"`
	Server      ServerConfig      `yaml:"server"`
	Sources     SourcesConfig     `yaml:"sources"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Ranking     RankingConfig     `yaml:"ranking"`
	Logging     logger.Config     `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Debug   bool   `env:"APP_DEBUG" yaml:"debug"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" yaml:"host"`
	Port         int           `env:"SERVER_PORT" yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SourcesConfig holds upstream feed configuration.
type SourcesConfig struct {
	// Timeout bounds each source fetch; a slow source degrades the merge
	// but never delays the response past it.
	Timeout   time.Duration  `yaml:"timeout"`
	RateLimit float64        `yaml:"rate_limit"`
	UserAgent string         `yaml:"user_agent"`
	Feeds     []SourceConfig `yaml:"feeds"`
}

// SourceConfig describes a single upstream feed or API endpoint.
type SourceConfig struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"` // "rss" or "drug_alerts"
	URL         string `yaml:"url"`
	FallbackURL string `yaml:"fallback_url"`
}

// PreferencesConfig holds the external preferences service configuration.
type PreferencesConfig struct {
	BaseURL    string        `env:"PREFERENCES_URL" yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
	FailureTTL time.Duration `yaml:"failure_ttl"`
}

// RankingConfig holds relevance ranking configuration.
// The threshold constants are empirically tuned; they are configuration,
// not law.
type RankingConfig struct {
	ScoringWorkers    int     `yaml:"scoring_workers"`
	PercentileMinimum int     `yaml:"percentile_minimum"`
	TopPercentile     float64 `yaml:"top_percentile"`
	SmallSetRatio     float64 `yaml:"small_set_ratio"`
	ThresholdFloor    float64 `yaml:"threshold_floor"`
	MaxPageSize       int     `yaml:"max_page_size"`
}

// Load reads configuration from the given path, applies defaults and env
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := load(path, cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg.SetDefaults()
	// Env always wins, including over defaults.
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// SetDefaults applies default values to unset fields.
func (c *Config) SetDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = defaultServiceName
	}
	if c.Service.Version == "" {
		c.Service.Version = defaultServiceVersion
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultServicePort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = defaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = defaultWriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = defaultIdleTimeout
	}
	if c.Sources.Timeout == 0 {
		c.Sources.Timeout = defaultSourceTimeout
	}
	if c.Sources.RateLimit == 0 {
		c.Sources.RateLimit = defaultSourceRateLimit
	}
	if c.Sources.UserAgent == "" {
		c.Sources.UserAgent = defaultUserAgent
	}
	if c.Preferences.Timeout == 0 {
		c.Preferences.Timeout = defaultPrefsTimeout
	}
	if c.Preferences.CacheTTL == 0 {
		c.Preferences.CacheTTL = defaultPrefsCacheTTL
	}
	if c.Preferences.FailureTTL == 0 {
		c.Preferences.FailureTTL = defaultPrefsFailureTTL
	}
	if c.Ranking.ScoringWorkers == 0 {
		c.Ranking.ScoringWorkers = defaultScoringWorkers
	}
	if c.Ranking.PercentileMinimum == 0 {
		c.Ranking.PercentileMinimum = defaultPercentileMinimum
	}
	if c.Ranking.TopPercentile == 0 {
		c.Ranking.TopPercentile = defaultTopPercentile
	}
	if c.Ranking.SmallSetRatio == 0 {
		c.Ranking.SmallSetRatio = defaultSmallSetRatio
	}
	if c.Ranking.ThresholdFloor == 0 {
		c.Ranking.ThresholdFloor = defaultThresholdFloor
	}
	if c.Ranking.MaxPageSize == 0 {
		c.Ranking.MaxPageSize = defaultMaxPageSize
	}
	c.Logging.SetDefaults()
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return errors.New("server.port must be positive")
	}
	if c.Sources.Timeout <= 0 {
		return errors.New("sources.timeout must be positive")
	}
	for i, feed := range c.Sources.Feeds {
		if feed.Name == "" {
			return fmt.Errorf("sources.feeds[%d].name is required", i)
		}
		if feed.URL == "" {
			return fmt.Errorf("sources.feeds[%d].url is required", i)
		}
		switch feed.Type {
		case "rss", "drug_alerts":
		default:
			return fmt.Errorf("sources.feeds[%d].type %q is not supported", i, feed.Type)
		}
	}
	if c.Ranking.TopPercentile <= 0 || c.Ranking.TopPercentile >= 1 {
		return errors.New("ranking.top_percentile must be in (0, 1)")
	}
	if c.Ranking.SmallSetRatio <= 0 || c.Ranking.SmallSetRatio > 1 {
		return errors.New("ranking.small_set_ratio must be in (0, 1]")
	}
	return nil
}
