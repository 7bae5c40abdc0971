// Package config provides application configuration.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration.
type Config struct {
	Port               string        `env:"PORT" envDefault:"8080"`
	APIURL             string        `env:"API_URL" envDefault:"http://localhost:3000"`
	AppURL             string        `env:"APP_URL" envDefault:"http://localhost:8082"`
	SessionRedirectURL string        `env:"SESSION_REDIRECT_URL"`
	DBPath             string        `env:"DB_PATH" envDefault:"./data/onboarding.db"`
	CookieDays         int           `env:"COOKIE_DAYS" envDefault:"7"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	PrimeAICookie      bool          `env:"PRIME_AI_COOKIE" envDefault:"false"`
	AllowedOrigins     []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	Google             GoogleConfig
	Catalog            CatalogConfig
	Telemetry          TelemetryConfig
}

// GoogleConfig controls the Google SSO redirect.
type GoogleConfig struct {
	ClientID string `env:"GOOGLE_CLIENT_ID"`
	ConfigID string `env:"GOOGLE_SSO_CONFIG_ID"`
}

// CatalogConfig controls template caching and funnel event retention.
type CatalogConfig struct {
	CacheMaxAge    time.Duration `env:"TEMPLATE_CACHE_MAX_AGE" envDefault:"24h"`
	EventRetention time.Duration `env:"EVENT_RETENTION" envDefault:"720h"`
	PruneInterval  time.Duration `env:"PRUNE_INTERVAL" envDefault:"1h"`
}

// TelemetryConfig controls opt-in OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"true"`
	Endpoint    string `env:"OTEL_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"ai-onboarding"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")
	if cfg.SessionRedirectURL == "" {
		cfg.SessionRedirectURL = cfg.AppURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if err := validateAbsoluteURL("API_URL", c.APIURL); err != nil {
		return err
	}
	if err := validateAbsoluteURL("APP_URL", c.AppURL); err != nil {
		return err
	}
	if err := validateAbsoluteURL("SESSION_REDIRECT_URL", c.SessionRedirectURL); err != nil {
		return err
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.CookieDays <= 0 {
		return fmt.Errorf("COOKIE_DAYS must be > 0")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0")
	}
	if c.Catalog.PruneInterval <= 0 {
		return fmt.Errorf("PRUNE_INTERVAL must be > 0")
	}
	return nil
}

// CookieTTL returns the lifetime of the onboarding cookies.
func (c *Config) CookieTTL() time.Duration {
	return time.Duration(c.CookieDays) * 24 * time.Hour
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.Contains(c.AppURL, "localhost") ||
		strings.Contains(c.AppURL, "127.0.0.1")
}

func validateAbsoluteURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL", name)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}
