// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/gladius/config.yaml",
	"/etc/gladius/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8470,
			ShutdownTimeout: 10 * time.Second,
		},
		Upstream: UpstreamConfig{
			ClientID:       "",
			ClientSecret:   "",
			Region:         "us",
			Locale:         "en_US",
			Timeout:        30 * time.Second,
			MaxRetries:     2,
			RetryBaseDelay: 500 * time.Millisecond,
			RetryMaxDelay:  10 * time.Second,
			RateLimit:      50, // Battle.net allows 100/s per client; stay under half
			RateBurst:      10,
		},
		Cache: CacheConfig{
			Backend:       "badger",
			Path:          "/data/gladius/cache",
			RedisAddr:     "",
			RedisPassword: "",
			RedisDB:       0,
			SweepInterval: time.Minute,
			TTL: TTLConfig{
				PvP:          5 * time.Minute,
				Leaderboards: 5 * time.Minute,
				Seasons:      30 * time.Minute,
				Profile:      30 * time.Minute,
				Equipment:    30 * time.Minute,
				Realms:       time.Hour,
				Media:        time.Hour,
			},
		},
		API: APIConfig{
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{},
			DefaultPageSize:   25,
			MaxPageSize:       100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence: ENV > File > Defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// BNET_CLIENT_ID -> upstream.client_id, CACHE_BACKEND -> cache.backend
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"api.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known
// slice fields. Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envMappings maps flat environment variable names to nested config paths.
var envMappings = map[string]string{
	// Upstream (Battle.net) credentials and defaults
	"bnet_client_id":        "upstream.client_id",
	"bnet_client_secret":    "upstream.client_secret",
	"bnet_region":           "upstream.region",
	"bnet_locale":           "upstream.locale",
	"bnet_timeout":          "upstream.timeout",
	"bnet_max_retries":      "upstream.max_retries",
	"bnet_retry_base_delay": "upstream.retry_base_delay",
	"bnet_retry_max_delay":  "upstream.retry_max_delay",
	"bnet_rate_limit":       "upstream.rate_limit",
	"bnet_rate_burst":       "upstream.rate_burst",
	"bnet_breaker_disabled": "upstream.breaker_disabled",

	// Cache store
	"cache_backend":        "cache.backend",
	"cache_path":           "cache.path",
	"cache_sweep_interval": "cache.sweep_interval",
	"redis_addr":           "cache.redis_addr",
	"redis_password":       "cache.redis_password",
	"redis_db":             "cache.redis_db",

	// Per-category cache TTLs
	"cache_ttl_pvp":          "cache.ttl.pvp",
	"cache_ttl_leaderboards": "cache.ttl.leaderboards",
	"cache_ttl_seasons":      "cache.ttl.seasons",
	"cache_ttl_profile":      "cache.ttl.profile",
	"cache_ttl_equipment":    "cache.ttl.equipment",
	"cache_ttl_realms":       "cache.ttl.realms",
	"cache_ttl_media":        "cache.ttl.media",

	// HTTP server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// API surface
	"rate_limit_requests": "api.rate_limit_requests",
	"rate_limit_window":   "api.rate_limit_window",
	"rate_limit_disabled": "api.rate_limit_disabled",
	"cors_origins":        "api.cors_origins",
	"default_page_size":   "api.default_page_size",
	"max_page_size":       "api.max_page_size",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables are dropped so unrelated environment noise cannot
// override configuration.
//
// Examples:
//   - BNET_CLIENT_ID -> upstream.client_id
//   - CACHE_BACKEND -> cache.backend
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}
