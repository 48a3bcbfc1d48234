// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package segment

import (
	"context"
	"time"

	"github.com/crowdpulse/crowdpulse/internal/database"
	"github.com/crowdpulse/crowdpulse/internal/models"
)

// DBProvider adapts the database package to the DataProvider interface.
type DBProvider struct {
	db *database.DB
}

// NewDBProvider creates a database-backed data provider.
func NewDBProvider(db *database.DB) *DBProvider {
	return &DBProvider{db: db}
}

// AudienceProfiles implements DataProvider.
func (p *DBProvider) AudienceProfiles(ctx context.Context, tenantID string, lookback time.Duration, limit int) ([]*models.AudienceProfile, error) {
	since := time.Now().UTC().Add(-lookback)
	return p.db.GetAudienceProfiles(ctx, database.EventFilter{
		TenantID:  tenantID,
		StartDate: &since,
		Limit:     limit,
	})
}

// PostingSlots implements DataProvider.
func (p *DBProvider) PostingSlots(ctx context.Context, tenantID, platform string, lookback time.Duration) ([]models.PostingSlot, error) {
	since := time.Now().UTC().Add(-lookback)
	return p.db.GetPostingSlots(ctx, database.EventFilter{
		TenantID:  tenantID,
		Platform:  platform,
		StartDate: &since,
	})
}
