// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package crisis

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/crowdpulse/crowdpulse/internal/models"
)

// DetectorType identifies a crisis detector.
type DetectorType string

const (
	// DetectorSentimentSpike flags sharp drops in average sentiment.
	DetectorSentimentSpike DetectorType = "sentiment_spike"

	// DetectorVolumeSpike flags abnormal mention volume.
	DetectorVolumeSpike DetectorType = "volume_spike"

	// DetectorInfluencerNegative flags negative posts from high-reach accounts.
	DetectorInfluencerNegative DetectorType = "influencer_negative"

	// DetectorKeywordWatchlist flags clusters of crisis vocabulary.
	DetectorKeywordWatchlist DetectorType = "keyword_watchlist"
)

// Severity indicates the severity level of an alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert represents a detected crisis signal for one tenant.
type Alert struct {
	ID             string          `json:"id"`
	TenantID       string          `json:"tenant_id"`
	DetectorType   DetectorType    `json:"detector_type"`
	Severity       Severity        `json:"severity"`
	Platform       string          `json:"platform,omitempty"`
	Title          string          `json:"title"`
	Message        string          `json:"message"`
	ObservedValue  float64         `json:"observed_value"`
	BaselineValue  float64         `json:"baseline_value"`
	SampleSize     int64           `json:"sample_size"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	Acknowledged   bool            `json:"acknowledged"`
	AcknowledgedBy string          `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time      `json:"acknowledged_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Detector evaluates one crisis signal for a tenant.
type Detector interface {
	// Type returns the detector type.
	Type() DetectorType

	// Check evaluates the tenant's recent activity.
	// Returns an alert if a crisis signal is detected, nil otherwise.
	Check(ctx context.Context, tenantID string) (*Alert, error)

	// Configure updates the detector configuration.
	Configure(config json.RawMessage) error

	// Enabled returns whether this detector is currently enabled.
	Enabled() bool

	// SetEnabled enables or disables the detector.
	SetEnabled(enabled bool)
}

// AlertStore persists and queries alerts.
type AlertStore interface {
	// SaveAlert persists a new alert.
	SaveAlert(ctx context.Context, alert *Alert) error

	// GetAlert retrieves an alert by ID. Returns ErrAlertNotFound when
	// no alert exists for the tenant.
	GetAlert(ctx context.Context, tenantID, id string) (*Alert, error)

	// ListAlerts retrieves alerts with optional filtering.
	ListAlerts(ctx context.Context, filter AlertFilter) ([]*Alert, error)

	// AcknowledgeAlert marks an alert as acknowledged.
	AcknowledgeAlert(ctx context.Context, tenantID, id, acknowledgedBy string) error

	// GetAlertCount returns the count of alerts matching the filter.
	GetAlertCount(ctx context.Context, filter AlertFilter) (int64, error)
}

// AlertFilter defines filtering options for alert queries.
// TenantID is mandatory; alerts are never listed across tenants.
type AlertFilter struct {
	TenantID      string         `json:"tenant_id"`
	DetectorTypes []DetectorType `json:"detector_types,omitempty"`
	Severities    []Severity     `json:"severities,omitempty"`
	Acknowledged  *bool          `json:"acknowledged,omitempty"`
	StartDate     *time.Time     `json:"start_date,omitempty"`
	EndDate       *time.Time     `json:"end_date,omitempty"`
	Limit         int            `json:"limit,omitempty"`
	Offset        int            `json:"offset,omitempty"`
}

// Notifier delivers alerts to an external channel.
type Notifier interface {
	// Send delivers an alert to the notification channel.
	Send(ctx context.Context, alert *Alert) error

	// Name returns the notifier name (e.g., "webhook").
	Name() string

	// Enabled returns whether this notifier is enabled.
	Enabled() bool
}

// AlertBroadcaster pushes alerts to the tenant's connected WebSocket
// clients.
type AlertBroadcaster interface {
	BroadcastTenantJSON(tenantID, messageType string, data interface{})
}

// EventHistory is the detectors' view of the storage layer.
// Implemented by the database package via DBHistory.
type EventHistory interface {
	// ActiveTenants returns tenants with recorded engagement.
	ActiveTenants(ctx context.Context) ([]string, error)

	// WindowStats summarizes activity between from and to.
	WindowStats(ctx context.Context, tenantID string, from, to time.Time) (*WindowStats, error)

	// NegativeInfluencerEvents returns recent negative events from
	// high-reach members.
	NegativeInfluencerEvents(ctx context.Context, tenantID string, since time.Time, minFollowers int64) ([]*models.EngagementEvent, error)

	// RecentTextEvents returns recent comment/mention events.
	RecentTextEvents(ctx context.Context, tenantID string, since time.Time, limit int) ([]*models.EngagementEvent, error)
}

// WindowStats mirrors the database rollup consumed by detectors.
type WindowStats struct {
	EventCount    int64
	UniqueMembers int64
	ScoredCount   int64
	NegativeCount int64
	AvgSentiment  float64
}

// NegativeRatio returns the share of scored events labeled negative.
func (w WindowStats) NegativeRatio() float64 {
	if w.ScoredCount == 0 {
		return 0
	}
	return float64(w.NegativeCount) / float64(w.ScoredCount)
}
