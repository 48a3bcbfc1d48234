// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package crisis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// InfluencerNegativeConfig configures the influencer negative detector.
type InfluencerNegativeConfig struct {
	// WindowMinutes is the lookback for negative influencer activity.
	WindowMinutes int `json:"window_minutes"`

	// MinFollowers is the reach threshold above which an unverified
	// account counts as an influencer.
	MinFollowers int64 `json:"min_followers"`

	// MinEvents is the number of distinct negative influencer events
	// required to raise an alert.
	MinEvents int `json:"min_events"`

	// CriticalEvents escalates the alert to critical.
	CriticalEvents int `json:"critical_events"`
}

// DefaultInfluencerNegativeConfig returns the default configuration.
func DefaultInfluencerNegativeConfig() InfluencerNegativeConfig {
	return InfluencerNegativeConfig{
		WindowMinutes:  120,
		MinFollowers:   10000,
		MinEvents:      1,
		CriticalEvents: 3,
	}
}

// InfluencerNegativeMetadata is attached to influencer negative alerts.
type InfluencerNegativeMetadata struct {
	WindowStart  time.Time `json:"window_start"`
	WindowEnd    time.Time `json:"window_end"`
	Handles      []string  `json:"handles"`
	MaxFollowers int64     `json:"max_followers"`
	AnyVerified  bool      `json:"any_verified"`
}

// InfluencerNegativeDetector flags negative posts from high-reach or
// verified accounts. A single influencer post can outweigh hundreds of
// ordinary mentions, so this fires on much smaller samples than the
// windowed detectors.
type InfluencerNegativeDetector struct {
	config  InfluencerNegativeConfig
	history EventHistory
	enabled bool
	mu      sync.RWMutex
}

// NewInfluencerNegativeDetector creates a new influencer negative detector.
func NewInfluencerNegativeDetector(history EventHistory) *InfluencerNegativeDetector {
	return &InfluencerNegativeDetector{
		config:  DefaultInfluencerNegativeConfig(),
		history: history,
		enabled: true,
	}
}

// Type returns the detector type.
func (d *InfluencerNegativeDetector) Type() DetectorType {
	return DetectorInfluencerNegative
}

// Check looks for recent negative events from influencer accounts.
func (d *InfluencerNegativeDetector) Check(ctx context.Context, tenantID string) (*Alert, error) {
	d.mu.RLock()
	if !d.enabled {
		d.mu.RUnlock()
		return nil, nil
	}
	config := d.config
	d.mu.RUnlock()

	now := time.Now().UTC()
	since := now.Add(-time.Duration(config.WindowMinutes) * time.Minute)

	events, err := d.history.NegativeInfluencerEvents(ctx, tenantID, since, config.MinFollowers)
	if err != nil {
		return nil, fmt.Errorf("failed to get influencer events: %w", err)
	}

	if len(events) < config.MinEvents {
		return nil, nil
	}

	// Deduplicate handles, keeping the highest-reach account for the
	// alert message. Events come back ordered by follower count.
	seen := make(map[string]bool)
	handles := make([]string, 0, len(events))
	var maxFollowers int64
	anyVerified := false
	for _, event := range events {
		if event.MemberFollowers > maxFollowers {
			maxFollowers = event.MemberFollowers
		}
		if event.MemberVerified {
			anyVerified = true
		}
		if !seen[event.MemberHandle] {
			seen[event.MemberHandle] = true
			handles = append(handles, event.MemberHandle)
		}
	}

	severity := SeverityWarning
	if len(events) >= config.CriticalEvents || anyVerified {
		severity = SeverityCritical
	}

	metadata := InfluencerNegativeMetadata{
		WindowStart:  since,
		WindowEnd:    now,
		Handles:      handles,
		MaxFollowers: maxFollowers,
		AnyVerified:  anyVerified,
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	return &Alert{
		TenantID:     tenantID,
		DetectorType: DetectorInfluencerNegative,
		Severity:     severity,
		Title:        "Negative Influencer Activity Alert",
		Message: fmt.Sprintf(
			"%d negative posts from %d high-reach accounts (top reach %d followers) in the last %d minutes",
			len(events),
			len(handles),
			maxFollowers,
			config.WindowMinutes,
		),
		ObservedValue: float64(len(events)),
		BaselineValue: 0,
		SampleSize:    int64(len(events)),
		Metadata:      metadataJSON,
	}, nil
}

// Configure updates the detector configuration.
func (d *InfluencerNegativeDetector) Configure(config json.RawMessage) error {
	var newConfig InfluencerNegativeConfig
	if err := json.Unmarshal(config, &newConfig); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if newConfig.WindowMinutes <= 0 {
		return fmt.Errorf("window_minutes must be positive")
	}
	if newConfig.MinFollowers <= 0 {
		return fmt.Errorf("min_followers must be positive")
	}
	if newConfig.MinEvents <= 0 {
		return fmt.Errorf("min_events must be positive")
	}

	d.mu.Lock()
	d.config = newConfig
	d.mu.Unlock()

	return nil
}

// Enabled returns whether this detector is enabled.
func (d *InfluencerNegativeDetector) Enabled() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.enabled
}

// SetEnabled enables or disables the detector.
func (d *InfluencerNegativeDetector) SetEnabled(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = enabled
}

// Config returns the current configuration.
func (d *InfluencerNegativeDetector) Config() InfluencerNegativeConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config
}
