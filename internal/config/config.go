// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

// Package config defines the Crowdpulse configuration structure and the
// Koanf v2 based loader. Configuration is layered: built-in defaults,
// then an optional YAML file, then environment variables (highest priority).
package config

import (
	"time"
)

// Config is the root configuration for the Crowdpulse server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
	AI       AIConfig       `koanf:"ai"`
	Segment  SegmentConfig  `koanf:"segment"`
	Crisis   CrisisConfig   `koanf:"crisis"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP listen port.
	Port int `koanf:"port"`

	// Host is the listen address.
	Host string `koanf:"host"`

	// Timeout is the per-request read/write timeout.
	Timeout time.Duration `koanf:"timeout"`

	// Environment is "development" or "production". Production enables
	// stricter validation (secrets must be set).
	Environment string `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file path. ":memory:" is allowed for tests.
	Path string `koanf:"path"`

	// MaxMemory is the DuckDB memory limit (e.g. "2GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 = use runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// APIConfig holds API pagination settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds authentication and rate limiting settings.
type SecurityConfig struct {
	// JWTSecret signs bearer tokens. Must be 32+ characters in production.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// AdminUsername/AdminPassword authenticate the login endpoint.
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`

	// RateLimitReqs requests allowed per RateLimitWindow per client IP.
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// CORSOrigins is the list of allowed origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// AIConfig holds the language-model client settings used for audience
// clustering, recommendation generation and sentiment assistance.
type AIConfig struct {
	// Enabled controls whether LLM delegation is attempted at all.
	// When false every consumer uses its rule-based fallback directly.
	Enabled bool `koanf:"enabled"`

	// APIKey authenticates with the completion API.
	APIKey string `koanf:"api_key"`

	// BaseURL overrides the API endpoint (for proxies or compatible servers).
	BaseURL string `koanf:"base_url"`

	// Model is the completion model identifier.
	Model string `koanf:"model"`

	// MaxTokens caps completion length.
	MaxTokens int `koanf:"max_tokens"`

	// Temperature controls sampling randomness. Clustering uses low values.
	Temperature float64 `koanf:"temperature"`

	// RequestTimeout bounds a single completion call.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// SegmentConfig holds audience segmentation engine settings.
type SegmentConfig struct {
	// Enabled controls the background segment refresher.
	Enabled bool `koanf:"enabled"`

	// RefreshInterval is how often segments are recomputed per tenant.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// MinMembers is the minimum audience size before segmentation runs.
	// Tenants below this get an insufficient-data error.
	MinMembers int `koanf:"min_members"`

	// MaxMembers caps the number of audience profiles submitted to the LLM.
	MaxMembers int `koanf:"max_members"`

	// CacheTTL is how long computed segment sets are served from cache.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// TopSlots is how many posting-time slots to recommend.
	TopSlots int `koanf:"top_slots"`

	// MinSlotSamples is the minimum events in an hour/day cell before it is
	// eligible as a recommended posting slot.
	MinSlotSamples int `koanf:"min_slot_samples"`
}

// CrisisConfig holds crisis detection engine settings.
type CrisisConfig struct {
	// Enabled controls whether incoming events are evaluated by detectors.
	Enabled bool `koanf:"enabled"`

	// CheckInterval is how often windowed detectors re-evaluate baselines.
	CheckInterval time.Duration `koanf:"check_interval"`

	// WebhookURL, when set, receives alert notifications.
	WebhookURL string `koanf:"webhook_url"`

	// WebhookTimeout bounds a single webhook delivery.
	WebhookTimeout time.Duration `koanf:"webhook_timeout"`
}

// defaultConfig returns a Config with all default values applied.
// Defaults are loaded first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8642,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/crowdpulse.duckdb",
			MaxMemory: "2GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Security: SecurityConfig{
			JWTSecret:         "",
			TokenTTL:          24 * time.Hour,
			AdminUsername:     "",
			AdminPassword:     "",
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		AI: AIConfig{
			Enabled:        false, // opt-in: heuristics only by default
			APIKey:         "",
			BaseURL:        "",
			Model:          "gpt-4o-mini",
			MaxTokens:      2048,
			Temperature:    0.2,
			RequestTimeout: 45 * time.Second,
		},
		Segment: SegmentConfig{
			Enabled:         true,
			RefreshInterval: 6 * time.Hour,
			MinMembers:      25,
			MaxMembers:      500,
			CacheTTL:        10 * time.Minute,
			TopSlots:        5,
			MinSlotSamples:  10,
		},
		Crisis: CrisisConfig{
			Enabled:        true,
			CheckInterval:  time.Minute,
			WebhookURL:     "",
			WebhookTimeout: 10 * time.Second,
		},
	}
}
