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

// SentimentSpikeConfig configures the sentiment spike detector.
type SentimentSpikeConfig struct {
	// WindowMinutes is the size of the current observation window.
	WindowMinutes int `json:"window_minutes"`

	// BaselineHours is the trailing period preceding the current window
	// used to establish the baseline average.
	BaselineHours int `json:"baseline_hours"`

	// MinSamples is the minimum number of scored events required in the
	// current window before the detector fires.
	MinSamples int64 `json:"min_samples"`

	// DropThreshold is the minimum baseline-to-current average sentiment
	// drop that triggers an alert.
	DropThreshold float64 `json:"drop_threshold"`

	// NegativeRatioCritical escalates the alert to critical when the
	// current window's negative share reaches this value.
	NegativeRatioCritical float64 `json:"negative_ratio_critical"`
}

// DefaultSentimentSpikeConfig returns the default configuration.
func DefaultSentimentSpikeConfig() SentimentSpikeConfig {
	return SentimentSpikeConfig{
		WindowMinutes:         60,
		BaselineHours:         24,
		MinSamples:            20,
		DropThreshold:         0.3,
		NegativeRatioCritical: 0.5,
	}
}

// SentimentSpikeMetadata is attached to sentiment spike alerts.
type SentimentSpikeMetadata struct {
	WindowStart     time.Time `json:"window_start"`
	WindowEnd       time.Time `json:"window_end"`
	CurrentAvg      float64   `json:"current_avg"`
	BaselineAvg     float64   `json:"baseline_avg"`
	NegativeRatio   float64   `json:"negative_ratio"`
	CurrentSamples  int64     `json:"current_samples"`
	BaselineSamples int64     `json:"baseline_samples"`
}

// SentimentSpikeDetector flags sharp drops in average sentiment against
// a trailing baseline. A sudden swing toward negative chatter is the
// earliest broad signal of an unfolding PR problem.
type SentimentSpikeDetector struct {
	config  SentimentSpikeConfig
	history EventHistory
	enabled bool
	mu      sync.RWMutex
}

// NewSentimentSpikeDetector creates a new sentiment spike detector.
func NewSentimentSpikeDetector(history EventHistory) *SentimentSpikeDetector {
	return &SentimentSpikeDetector{
		config:  DefaultSentimentSpikeConfig(),
		history: history,
		enabled: true,
	}
}

// Type returns the detector type.
func (d *SentimentSpikeDetector) Type() DetectorType {
	return DetectorSentimentSpike
}

// Check evaluates the tenant's current window against the trailing baseline.
func (d *SentimentSpikeDetector) Check(ctx context.Context, tenantID string) (*Alert, error) {
	d.mu.RLock()
	if !d.enabled {
		d.mu.RUnlock()
		return nil, nil
	}
	config := d.config
	d.mu.RUnlock()

	now := time.Now().UTC()
	windowStart := now.Add(-time.Duration(config.WindowMinutes) * time.Minute)
	baselineStart := windowStart.Add(-time.Duration(config.BaselineHours) * time.Hour)

	current, err := d.history.WindowStats(ctx, tenantID, windowStart, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get current window stats: %w", err)
	}

	// Not enough scored events to say anything meaningful.
	if current.ScoredCount < config.MinSamples {
		return nil, nil
	}

	baseline, err := d.history.WindowStats(ctx, tenantID, baselineStart, windowStart)
	if err != nil {
		return nil, fmt.Errorf("failed to get baseline window stats: %w", err)
	}

	// No baseline yet, skip rather than alert on a cold start.
	if baseline.ScoredCount < config.MinSamples {
		return nil, nil
	}

	drop := baseline.AvgSentiment - current.AvgSentiment
	if drop < config.DropThreshold {
		return nil, nil
	}

	negativeRatio := current.NegativeRatio()
	severity := SeverityWarning
	if negativeRatio >= config.NegativeRatioCritical {
		severity = SeverityCritical
	}

	metadata := SentimentSpikeMetadata{
		WindowStart:     windowStart,
		WindowEnd:       now,
		CurrentAvg:      current.AvgSentiment,
		BaselineAvg:     baseline.AvgSentiment,
		NegativeRatio:   negativeRatio,
		CurrentSamples:  current.ScoredCount,
		BaselineSamples: baseline.ScoredCount,
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	return &Alert{
		TenantID:     tenantID,
		DetectorType: DetectorSentimentSpike,
		Severity:     severity,
		Title:        "Sentiment Drop Alert",
		Message: fmt.Sprintf(
			"Average sentiment dropped from %.2f to %.2f over the last %d minutes (%d%% of mentions negative)",
			baseline.AvgSentiment,
			current.AvgSentiment,
			config.WindowMinutes,
			int(negativeRatio*100),
		),
		ObservedValue: current.AvgSentiment,
		BaselineValue: baseline.AvgSentiment,
		SampleSize:    current.ScoredCount,
		Metadata:      metadataJSON,
	}, nil
}

// Configure updates the detector configuration.
func (d *SentimentSpikeDetector) Configure(config json.RawMessage) error {
	var newConfig SentimentSpikeConfig
	if err := json.Unmarshal(config, &newConfig); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if newConfig.WindowMinutes <= 0 {
		return fmt.Errorf("window_minutes must be positive")
	}
	if newConfig.BaselineHours <= 0 {
		return fmt.Errorf("baseline_hours must be positive")
	}
	if newConfig.MinSamples <= 0 {
		return fmt.Errorf("min_samples must be positive")
	}
	if newConfig.DropThreshold <= 0 {
		return fmt.Errorf("drop_threshold must be positive")
	}

	d.mu.Lock()
	d.config = newConfig
	d.mu.Unlock()

	return nil
}

// Enabled returns whether this detector is enabled.
func (d *SentimentSpikeDetector) Enabled() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.enabled
}

// SetEnabled enables or disables the detector.
func (d *SentimentSpikeDetector) SetEnabled(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = enabled
}

// Config returns the current configuration.
func (d *SentimentSpikeDetector) Config() SentimentSpikeConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config
}
