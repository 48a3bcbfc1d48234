// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SEGMENT_MIN_MEMBERS", "10")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Segment.MinMembers != 10 {
		t.Errorf("Segment.MinMembers = %d, want 10", cfg.Segment.MinMembers)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v, want two trimmed origins", cfg.Security.CORSOrigins)
	}
}

func TestEnvTransformSkipsUnknownKeys(t *testing.T) {
	if got := envTransformFunc("PATH"); got != "" {
		t.Errorf("envTransformFunc(PATH) = %q, want empty", got)
	}
	if got := envTransformFunc("JWT_SECRET"); got != "security.jwt_secret" {
		t.Errorf("envTransformFunc(JWT_SECRET) = %q", got)
	}
	if got := envTransformFunc("OPENAI_API_KEY"); got != "ai.api_key" {
		t.Errorf("envTransformFunc(OPENAI_API_KEY) = %q", got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantSub: "server.port",
		},
		{
			name:    "empty db path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantSub: "database.path",
		},
		{
			name:    "page size inversion",
			mutate:  func(c *Config) { c.API.MaxPageSize = 5 },
			wantSub: "max_page_size",
		},
		{
			name: "ai enabled without key",
			mutate: func(c *Config) {
				c.AI.Enabled = true
				c.AI.APIKey = ""
			},
			wantSub: "ai.api_key",
		},
		{
			name: "production requires jwt secret",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Security.AdminUsername = "admin"
				c.Security.AdminPassword = "longenoughpassword"
			},
			wantSub: "jwt_secret",
		},
		{
			name: "segment member bounds",
			mutate: func(c *Config) {
				c.Segment.MinMembers = 100
				c.Segment.MaxMembers = 50
			},
			wantSub: "max_members",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestIsProduction(t *testing.T) {
	cfg := defaultConfig()
	if cfg.IsProduction() {
		t.Error("default environment should not be production")
	}
	cfg.Server.Environment = "Production"
	if !cfg.IsProduction() {
		t.Error("case-insensitive production check failed")
	}
}

func TestDefaultDurations(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Segment.RefreshInterval != 6*time.Hour {
		t.Errorf("RefreshInterval = %v", cfg.Segment.RefreshInterval)
	}
	if cfg.Crisis.CheckInterval != time.Minute {
		t.Errorf("CheckInterval = %v", cfg.Crisis.CheckInterval)
	}
}
