// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// APIBaseURL is the base URL of the lodging backend API, e.g.
	// "https://api.worklodge.example". The only required external setting
	// besides the session secret.
	APIBaseURL string `env:"WLP_API_BASE_URL,required"`
	// APISessionCookie is the name of the upstream session cookie set by
	// POST /api/login.
	APISessionCookie string `env:"WLP_API_SESSION_COOKIE" envDefault:"wlp_session"`

	DBPath        string `env:"WLP_DB_PATH" envDefault:"./data/wlp.db"`
	SessionSecret string `env:"WLP_SESSION_SECRET,required"`
	ServerHost    string `env:"WLP_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"WLP_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"WLP_ENV" envDefault:"development"`
	LogLevel      string `env:"WLP_LOG_LEVEL" envDefault:"info"`

	// Cache configuration for upstream summary payloads.
	RedisURL     string `env:"WLP_REDIS_URL"`                        // Optional Redis URL for distributed caching
	CachePrefix  string `env:"WLP_CACHE_PREFIX" envDefault:"wlp:"`   // Redis key prefix
	CacheTTL     int    `env:"WLP_CACHE_TTL" envDefault:"30"`        // Summary cache TTL in seconds
	CacheMaxSize int    `env:"WLP_CACHE_MAX_SIZE" envDefault:"1000"` // Max memory cache entries

	// EventRetentionDays controls how long local auth event-log rows are kept.
	EventRetentionDays int `env:"WLP_EVENT_RETENTION_DAYS" envDefault:"90"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("WLP_API_BASE_URL must be an absolute http(s) URL, got %q", cfg.APIBaseURL)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("WLP_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("WLP_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	return cfg, nil
}
