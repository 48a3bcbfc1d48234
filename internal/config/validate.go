// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package config

import (
	"errors"
	"fmt"
	"strings"
)

// minJWTSecretLen is the minimum accepted JWT secret length in production.
const minJWTSecretLen = 32

// Validate checks the configuration for invalid or inconsistent values.
// Some checks only apply when server.environment is "production".
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.Timeout <= 0 {
		errs = append(errs, errors.New("server.timeout must be positive"))
	}

	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path must not be empty"))
	}
	if c.Database.Threads < 0 {
		errs = append(errs, fmt.Errorf("database.threads must be >= 0, got %d", c.Database.Threads))
	}

	if c.API.DefaultPageSize < 1 {
		errs = append(errs, errors.New("api.default_page_size must be >= 1"))
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		errs = append(errs, errors.New("api.max_page_size must be >= api.default_page_size"))
	}

	if c.Security.RateLimitReqs < 1 && !c.Security.RateLimitDisabled {
		errs = append(errs, errors.New("security.rate_limit_reqs must be >= 1 when rate limiting is enabled"))
	}

	if c.IsProduction() {
		if len(c.Security.JWTSecret) < minJWTSecretLen {
			errs = append(errs, fmt.Errorf("security.jwt_secret must be at least %d characters in production", minJWTSecretLen))
		}
		if c.Security.AdminUsername == "" || c.Security.AdminPassword == "" {
			errs = append(errs, errors.New("security.admin_username and admin_password are required in production"))
		}
	}

	if c.AI.Enabled {
		if c.AI.APIKey == "" {
			errs = append(errs, errors.New("ai.api_key is required when ai.enabled=true"))
		}
		if c.AI.Model == "" {
			errs = append(errs, errors.New("ai.model must not be empty"))
		}
		if c.AI.RequestTimeout <= 0 {
			errs = append(errs, errors.New("ai.request_timeout must be positive"))
		}
	}

	if c.Segment.Enabled {
		if c.Segment.RefreshInterval <= 0 {
			errs = append(errs, errors.New("segment.refresh_interval must be positive"))
		}
		if c.Segment.MaxMembers < c.Segment.MinMembers {
			errs = append(errs, errors.New("segment.max_members must be >= segment.min_members"))
		}
		if c.Segment.TopSlots < 1 {
			errs = append(errs, errors.New("segment.top_slots must be >= 1"))
		}
	}

	if c.Crisis.Enabled && c.Crisis.CheckInterval <= 0 {
		errs = append(errs, errors.New("crisis.check_interval must be positive"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}
