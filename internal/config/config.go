// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

// Package config provides layered configuration for Gladius.
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables
//   - Config file (config.yaml)
//   - Built-in defaults
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Upstream UpstreamConfig `koanf:"upstream"`
	Cache    CacheConfig    `koanf:"cache"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// UpstreamConfig holds Battle.net API access settings.
//
// ClientID and ClientSecret are the OAuth2 client-credentials pair issued by
// the Battle.net developer portal. They are required: the service cannot
// reach the upstream API without them, so startup fails fast when either is
// missing.
type UpstreamConfig struct {
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	Region       string        `koanf:"region"` // default region when a request does not specify one
	Locale       string        `koanf:"locale"` // default locale (e.g. en_US)
	Timeout      time.Duration `koanf:"timeout"`

	// Retry policy for retryable upstream failures.
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
	RetryMaxDelay  time.Duration `koanf:"retry_max_delay"`

	// Client-side rate limiting toward the upstream API.
	RateLimit float64 `koanf:"rate_limit"` // requests per second, 0 disables
	RateBurst int     `koanf:"rate_burst"`

	// BreakerDisabled turns off the circuit breaker wrapper.
	BreakerDisabled bool `koanf:"breaker_disabled"`
}

// CacheConfig holds cache store settings.
type CacheConfig struct {
	// Backend selects the store implementation: memory, badger, sqlite, redis.
	Backend string `koanf:"backend"`

	// Path is the on-disk location for badger/sqlite backends.
	Path string `koanf:"path"`

	// Redis connection settings (redis backend only).
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// SweepInterval is how often expired entries are bulk-deleted.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	TTL TTLConfig `koanf:"ttl"`
}

// TTLConfig holds per-category cache durations. Volatile leaderboard data
// gets short TTLs; semi-static reference data gets longer ones.
type TTLConfig struct {
	PvP          time.Duration `koanf:"pvp"`
	Leaderboards time.Duration `koanf:"leaderboards"`
	Seasons      time.Duration `koanf:"seasons"`
	Profile      time.Duration `koanf:"profile"`
	Equipment    time.Duration `koanf:"equipment"`
	Realms       time.Duration `koanf:"realms"`
	Media        time.Duration `koanf:"media"`
}

// APIConfig holds settings for the exposed HTTP API.
type APIConfig struct {
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	DefaultPageSize   int           `koanf:"default_page_size"`
	MaxPageSize       int           `koanf:"max_page_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// validCacheBackends lists the supported store backends.
var validCacheBackends = map[string]bool{
	"memory": true,
	"badger": true,
	"sqlite": true,
	"redis":  true,
}

// validRegions lists the upstream regions with dedicated API hosts.
var validRegions = map[string]bool{
	"us": true,
	"eu": true,
	"kr": true,
	"tw": true,
}

// Validate checks the configuration for fatal errors. Missing upstream
// credentials are not recoverable at runtime, so they fail startup here.
func (c *Config) Validate() error {
	if c.Upstream.ClientID == "" || c.Upstream.ClientSecret == "" {
		return fmt.Errorf("upstream credentials missing: BNET_CLIENT_ID and BNET_CLIENT_SECRET are required")
	}

	if !validRegions[c.Upstream.Region] {
		return fmt.Errorf("invalid upstream region %q (valid: us, eu, kr, tw)", c.Upstream.Region)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	if !validCacheBackends[c.Cache.Backend] {
		return fmt.Errorf("invalid cache backend %q (valid: memory, badger, sqlite, redis)", c.Cache.Backend)
	}
	if (c.Cache.Backend == "badger" || c.Cache.Backend == "sqlite") && c.Cache.Path == "" {
		return fmt.Errorf("cache backend %q requires cache.path", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache backend redis requires cache.redis_addr")
	}
	if c.Cache.SweepInterval <= 0 {
		return fmt.Errorf("cache sweep interval must be positive, got %s", c.Cache.SweepInterval)
	}

	if c.Upstream.MaxRetries < 0 {
		return fmt.Errorf("upstream max retries must be non-negative, got %d", c.Upstream.MaxRetries)
	}

	if c.API.DefaultPageSize < 1 || c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("invalid page size configuration (default %d, max %d)",
			c.API.DefaultPageSize, c.API.MaxPageSize)
	}

	return nil
}
