// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package crisis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// recentTextEventLimit bounds how many events one check scans.
const recentTextEventLimit = 500

// KeywordWatchlistConfig configures the keyword watchlist detector.
type KeywordWatchlistConfig struct {
	// WindowMinutes is the lookback for watchlist matches.
	WindowMinutes int `json:"window_minutes"`

	// Keywords is the watchlist. Matching is case-insensitive substring.
	Keywords []string `json:"keywords"`

	// MinMatches is the number of matching events required to raise an
	// alert.
	MinMatches int `json:"min_matches"`

	// CriticalMatches escalates the alert to critical.
	CriticalMatches int `json:"critical_matches"`
}

// DefaultKeywordWatchlistConfig returns the default configuration with
// a stock crisis vocabulary. Tenants override the list per brand.
func DefaultKeywordWatchlistConfig() KeywordWatchlistConfig {
	return KeywordWatchlistConfig{
		WindowMinutes: 120,
		Keywords: []string{
			"boycott",
			"class action",
			"data breach",
			"fraud",
			"lawsuit",
			"outage",
			"recall",
			"refund",
			"scam",
			"scandal",
		},
		MinMatches:      3,
		CriticalMatches: 10,
	}
}

// KeywordWatchlistMetadata is attached to keyword watchlist alerts.
type KeywordWatchlistMetadata struct {
	WindowStart time.Time      `json:"window_start"`
	WindowEnd   time.Time      `json:"window_end"`
	Matches     map[string]int `json:"matches"`
	Scanned     int            `json:"scanned"`
}

// KeywordWatchlistDetector flags clusters of crisis vocabulary in
// recent comments and mentions. It catches topical crises the
// statistical detectors miss when overall volume and sentiment stay
// flat.
type KeywordWatchlistDetector struct {
	config  KeywordWatchlistConfig
	history EventHistory
	enabled bool
	mu      sync.RWMutex
}

// NewKeywordWatchlistDetector creates a new keyword watchlist detector.
func NewKeywordWatchlistDetector(history EventHistory) *KeywordWatchlistDetector {
	return &KeywordWatchlistDetector{
		config:  DefaultKeywordWatchlistConfig(),
		history: history,
		enabled: true,
	}
}

// Type returns the detector type.
func (d *KeywordWatchlistDetector) Type() DetectorType {
	return DetectorKeywordWatchlist
}

// Check scans recent text events for watchlist keywords.
func (d *KeywordWatchlistDetector) Check(ctx context.Context, tenantID string) (*Alert, error) {
	d.mu.RLock()
	if !d.enabled {
		d.mu.RUnlock()
		return nil, nil
	}
	config := d.config
	d.mu.RUnlock()

	if len(config.Keywords) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	since := now.Add(-time.Duration(config.WindowMinutes) * time.Minute)

	events, err := d.history.RecentTextEvents(ctx, tenantID, since, recentTextEventLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent text events: %w", err)
	}

	matches := make(map[string]int)
	matchedEvents := 0
	for _, event := range events {
		if event.Text == "" {
			continue
		}
		text := strings.ToLower(event.Text)
		hit := false
		for _, keyword := range config.Keywords {
			if strings.Contains(text, strings.ToLower(keyword)) {
				matches[keyword]++
				hit = true
			}
		}
		if hit {
			matchedEvents++
		}
	}

	if matchedEvents < config.MinMatches {
		return nil, nil
	}

	severity := SeverityWarning
	if matchedEvents >= config.CriticalMatches {
		severity = SeverityCritical
	}

	metadata := KeywordWatchlistMetadata{
		WindowStart: since,
		WindowEnd:   now,
		Matches:     matches,
		Scanned:     len(events),
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	return &Alert{
		TenantID:     tenantID,
		DetectorType: DetectorKeywordWatchlist,
		Severity:     severity,
		Title:        "Crisis Keyword Alert",
		Message: fmt.Sprintf(
			"%d of %d recent mentions contain watchlist keywords (%s) in the last %d minutes",
			matchedEvents,
			len(events),
			topKeywords(matches, 3),
			config.WindowMinutes,
		),
		ObservedValue: float64(matchedEvents),
		BaselineValue: 0,
		SampleSize:    int64(len(events)),
		Metadata:      metadataJSON,
	}, nil
}

// topKeywords formats the most frequent matches for the alert message.
func topKeywords(matches map[string]int, n int) string {
	type kv struct {
		keyword string
		count   int
	}
	sorted := make([]kv, 0, len(matches))
	for keyword, count := range matches {
		sorted = append(sorted, kv{keyword, count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].keyword < sorted[j].keyword
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	parts := make([]string, len(sorted))
	for i, entry := range sorted {
		parts[i] = fmt.Sprintf("%s x%d", entry.keyword, entry.count)
	}
	return strings.Join(parts, ", ")
}

// Configure updates the detector configuration.
func (d *KeywordWatchlistDetector) Configure(config json.RawMessage) error {
	var newConfig KeywordWatchlistConfig
	if err := json.Unmarshal(config, &newConfig); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if newConfig.WindowMinutes <= 0 {
		return fmt.Errorf("window_minutes must be positive")
	}
	if len(newConfig.Keywords) == 0 {
		return fmt.Errorf("keywords must not be empty")
	}
	if newConfig.MinMatches <= 0 {
		return fmt.Errorf("min_matches must be positive")
	}

	d.mu.Lock()
	d.config = newConfig
	d.mu.Unlock()

	return nil
}

// Enabled returns whether this detector is enabled.
func (d *KeywordWatchlistDetector) Enabled() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.enabled
}

// SetEnabled enables or disables the detector.
func (d *KeywordWatchlistDetector) SetEnabled(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = enabled
}

// Config returns the current configuration.
func (d *KeywordWatchlistDetector) Config() KeywordWatchlistConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config
}
