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

// VolumeSpikeConfig configures the volume spike detector.
type VolumeSpikeConfig struct {
	// WindowMinutes is the size of the current observation window.
	WindowMinutes int `json:"window_minutes"`

	// BaselineHours is the trailing period used to compute the expected
	// per-window event volume.
	BaselineHours int `json:"baseline_hours"`

	// SpikeFactor is the multiple of the baseline volume that triggers
	// an alert.
	SpikeFactor float64 `json:"spike_factor"`

	// CriticalFactor escalates the alert to critical.
	CriticalFactor float64 `json:"critical_factor"`

	// MinEvents is the minimum current window volume before the detector
	// fires. Low-traffic tenants spike on noise otherwise.
	MinEvents int64 `json:"min_events"`

	// MinBaselineEvents is the minimum trailing-baseline volume required
	// before a ratio is computed. A freshly onboarded tenant has almost
	// no trailing history, so dividing its handful of events across the
	// full baseline period understates the average and makes the first
	// busy hour look like a spike.
	MinBaselineEvents int64 `json:"min_baseline_events"`
}

// DefaultVolumeSpikeConfig returns the default configuration.
func DefaultVolumeSpikeConfig() VolumeSpikeConfig {
	return VolumeSpikeConfig{
		WindowMinutes:     60,
		BaselineHours:     24,
		SpikeFactor:       3.0,
		CriticalFactor:    6.0,
		MinEvents:         30,
		MinBaselineEvents: 120,
	}
}

// VolumeSpikeMetadata is attached to volume spike alerts.
type VolumeSpikeMetadata struct {
	WindowStart   time.Time `json:"window_start"`
	WindowEnd     time.Time `json:"window_end"`
	CurrentCount  int64     `json:"current_count"`
	BaselineAvg   float64   `json:"baseline_avg"`
	UniqueMembers int64     `json:"unique_members"`
}

// VolumeSpikeDetector flags abnormal mention volume against the
// tenant's trailing baseline. A burst of chatter often precedes the
// sentiment swing, so it is tracked independently.
type VolumeSpikeDetector struct {
	config  VolumeSpikeConfig
	history EventHistory
	enabled bool
	mu      sync.RWMutex
}

// NewVolumeSpikeDetector creates a new volume spike detector.
func NewVolumeSpikeDetector(history EventHistory) *VolumeSpikeDetector {
	return &VolumeSpikeDetector{
		config:  DefaultVolumeSpikeConfig(),
		history: history,
		enabled: true,
	}
}

// Type returns the detector type.
func (d *VolumeSpikeDetector) Type() DetectorType {
	return DetectorVolumeSpike
}

// Check compares the current window volume against the baseline average.
func (d *VolumeSpikeDetector) Check(ctx context.Context, tenantID string) (*Alert, error) {
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

	if current.EventCount < config.MinEvents {
		return nil, nil
	}

	baseline, err := d.history.WindowStats(ctx, tenantID, baselineStart, windowStart)
	if err != nil {
		return nil, fmt.Errorf("failed to get baseline window stats: %w", err)
	}

	// Not enough trailing history for the per-window average to mean
	// anything; skip rather than alert on a cold start.
	if baseline.EventCount < config.MinBaselineEvents {
		return nil, nil
	}

	// Average volume per current-window-sized slice of the baseline.
	windowsInBaseline := float64(config.BaselineHours*60) / float64(config.WindowMinutes)
	baselineAvg := float64(baseline.EventCount) / windowsInBaseline

	ratio := float64(current.EventCount) / baselineAvg
	if ratio < config.SpikeFactor {
		return nil, nil
	}

	severity := SeverityWarning
	if ratio >= config.CriticalFactor {
		severity = SeverityCritical
	}

	metadata := VolumeSpikeMetadata{
		WindowStart:   windowStart,
		WindowEnd:     now,
		CurrentCount:  current.EventCount,
		BaselineAvg:   baselineAvg,
		UniqueMembers: current.UniqueMembers,
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	return &Alert{
		TenantID:     tenantID,
		DetectorType: DetectorVolumeSpike,
		Severity:     severity,
		Title:        "Mention Volume Spike Alert",
		Message: fmt.Sprintf(
			"%d events in the last %d minutes, %.1fx the trailing %dh average of %.1f",
			current.EventCount,
			config.WindowMinutes,
			ratio,
			config.BaselineHours,
			baselineAvg,
		),
		ObservedValue: float64(current.EventCount),
		BaselineValue: baselineAvg,
		SampleSize:    current.EventCount,
		Metadata:      metadataJSON,
	}, nil
}

// Configure updates the detector configuration.
func (d *VolumeSpikeDetector) Configure(config json.RawMessage) error {
	var newConfig VolumeSpikeConfig
	if err := json.Unmarshal(config, &newConfig); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if newConfig.WindowMinutes <= 0 {
		return fmt.Errorf("window_minutes must be positive")
	}
	if newConfig.BaselineHours <= 0 {
		return fmt.Errorf("baseline_hours must be positive")
	}
	if newConfig.SpikeFactor <= 1 {
		return fmt.Errorf("spike_factor must be greater than 1")
	}
	if newConfig.MinEvents <= 0 {
		return fmt.Errorf("min_events must be positive")
	}
	if newConfig.MinBaselineEvents <= 0 {
		return fmt.Errorf("min_baseline_events must be positive")
	}

	d.mu.Lock()
	d.config = newConfig
	d.mu.Unlock()

	return nil
}

// Enabled returns whether this detector is enabled.
func (d *VolumeSpikeDetector) Enabled() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.enabled
}

// SetEnabled enables or disables the detector.
func (d *VolumeSpikeDetector) SetEnabled(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = enabled
}

// Config returns the current configuration.
func (d *VolumeSpikeDetector) Config() VolumeSpikeConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config
}
