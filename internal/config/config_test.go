// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package config

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a config that passes Validate, for mutation in tests.
func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Upstream.ClientID = "client"
	cfg.Upstream.ClientSecret = "secret"
	cfg.Cache.Backend = "memory"
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8470 {
		t.Errorf("expected default port 8470, got %d", cfg.Server.Port)
	}
	if cfg.Upstream.Region != "us" {
		t.Errorf("expected default region us, got %q", cfg.Upstream.Region)
	}
	if cfg.Upstream.MaxRetries != 2 {
		t.Errorf("expected default max retries 2, got %d", cfg.Upstream.MaxRetries)
	}
	if cfg.Cache.Backend != "badger" {
		t.Errorf("expected default backend badger, got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.SweepInterval != time.Minute {
		t.Errorf("expected default sweep interval 1m, got %s", cfg.Cache.SweepInterval)
	}
	if cfg.Cache.TTL.PvP != 5*time.Minute {
		t.Errorf("expected pvp TTL 5m, got %s", cfg.Cache.TTL.PvP)
	}
	if cfg.Cache.TTL.Realms != time.Hour {
		t.Errorf("expected realms TTL 1h, got %s", cfg.Cache.TTL.Realms)
	}
}

func TestValidateMissingCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Upstream.ClientID = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for missing credentials")
	}
	if !strings.Contains(err.Error(), "credentials missing") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateInvalidRegion(t *testing.T) {
	cfg := validConfig()
	cfg.Upstream.Region = "xx"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for invalid region")
	}
}

func TestValidateInvalidBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Backend = "etcd"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for invalid backend")
	}
}

func TestValidateBackendRequiresPath(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Backend = "sqlite"
	cfg.Cache.Path = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for sqlite backend without path")
	}
}

func TestValidateRedisRequiresAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisAddr = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for redis backend without addr")
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("BNET_CLIENT_ID", "env-client")
	t.Setenv("BNET_CLIENT_SECRET", "env-secret")
	t.Setenv("BNET_REGION", "eu")
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("HTTP_PORT", "9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Upstream.ClientID != "env-client" {
		t.Errorf("expected client id from env, got %q", cfg.Upstream.ClientID)
	}
	if cfg.Upstream.Region != "eu" {
		t.Errorf("expected region eu, got %q", cfg.Upstream.Region)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("expected memory backend, got %q", cfg.Cache.Backend)
	}
}

func TestEnvTransformDropsUnknownVars(t *testing.T) {
	if got := envTransformFunc("PATH"); got != "" {
		t.Errorf("expected unknown env vars to be dropped, got %q", got)
	}
	if got := envTransformFunc("BNET_CLIENT_ID"); got != "upstream.client_id" {
		t.Errorf("unexpected mapping: %q", got)
	}
}

func TestLoadFailsWithoutCredentials(t *testing.T) {
	t.Setenv("BNET_CLIENT_ID", "")
	t.Setenv("BNET_CLIENT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected Load to fail without credentials")
	}
}

func TestCORSOriginsFromEnv(t *testing.T) {
	t.Setenv("BNET_CLIENT_ID", "c")
	t.Setenv("BNET_CLIENT_SECRET", "s")
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.API.CORSOrigins) != 2 {
		t.Fatalf("expected 2 CORS origins, got %v", cfg.API.CORSOrigins)
	}
	if cfg.API.CORSOrigins[1] != "https://b.example" {
		t.Errorf("expected trimmed origin, got %q", cfg.API.CORSOrigins[1])
	}
}
