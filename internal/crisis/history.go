// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package crisis

import (
	"context"
	"time"

	"github.com/crowdpulse/crowdpulse/internal/database"
	"github.com/crowdpulse/crowdpulse/internal/models"
)

// DBHistory implements EventHistory using the engagement tables.
type DBHistory struct {
	db *database.DB
}

// NewDBHistory creates a database-backed event history.
func NewDBHistory(db *database.DB) *DBHistory {
	return &DBHistory{db: db}
}

// ActiveTenants implements EventHistory.
func (h *DBHistory) ActiveTenants(ctx context.Context) ([]string, error) {
	return h.db.ListTenants(ctx)
}

// WindowStats implements EventHistory.
func (h *DBHistory) WindowStats(ctx context.Context, tenantID string, from, to time.Time) (*WindowStats, error) {
	stats, err := h.db.GetWindowStats(ctx, tenantID, "", from, to)
	if err != nil {
		return nil, err
	}
	return &WindowStats{
		EventCount:    stats.EventCount,
		UniqueMembers: stats.UniqueMembers,
		ScoredCount:   stats.ScoredCount,
		NegativeCount: stats.NegativeCount,
		AvgSentiment:  stats.AvgSentiment,
	}, nil
}

// NegativeInfluencerEvents implements EventHistory.
func (h *DBHistory) NegativeInfluencerEvents(ctx context.Context, tenantID string, since time.Time, minFollowers int64) ([]*models.EngagementEvent, error) {
	return h.db.GetNegativeInfluencerEvents(ctx, tenantID, since, minFollowers)
}

// RecentTextEvents implements EventHistory.
func (h *DBHistory) RecentTextEvents(ctx context.Context, tenantID string, since time.Time, limit int) ([]*models.EngagementEvent, error) {
	return h.db.ListEvents(ctx, database.EventFilter{
		TenantID:   tenantID,
		EventTypes: []string{string(models.EventComment), string(models.EventMention)},
		StartDate:  &since,
		Limit:      limit,
	})
}
