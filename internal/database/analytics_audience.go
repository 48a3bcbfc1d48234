// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/crowdpulse/crowdpulse/internal/models"
)

// Engagement score weights. Comments and shares signal stronger intent
// than likes; mentions sit between.
const (
	weightLike    = 1.0
	weightClick   = 1.5
	weightMention = 2.0
	weightShare   = 3.0
	weightComment = 4.0

	// verifiedBoost is a flat multiplier for verified accounts.
	verifiedBoost = 1.2
)

// GetAudienceProfiles returns per-member engagement/sentiment rollups for
// a tenant, ordered by total event count descending. The weighted
// engagement score is computed per row after scanning and does not
// affect ordering.
func (db *DB) GetAudienceProfiles(ctx context.Context, filter EventFilter) (_ []*models.AudienceProfile, err error) {
	defer observeQuery("audience_profiles", time.Now(), &err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := buildEventWhere(filter)
	query := fmt.Sprintf(`
		SELECT
			member_handle,
			MAX(member_followers) AS followers,
			BOOL_OR(member_verified) AS verified,
			COUNT(*) AS total_events,
			COUNT(*) FILTER (WHERE event_type = 'like') AS likes,
			COUNT(*) FILTER (WHERE event_type = 'share') AS shares,
			COUNT(*) FILTER (WHERE event_type = 'comment') AS comments,
			COUNT(*) FILTER (WHERE event_type = 'mention') AS mentions,
			COUNT(*) FILTER (WHERE event_type = 'click') AS clicks,
			COUNT(DISTINCT DATE_TRUNC('day', occurred_at)) AS active_days,
			MIN(occurred_at) AS first_seen,
			MAX(occurred_at) AS last_seen,
			ARG_MAX(platform, cnt_platform) AS top_platform,
			COALESCE(ARG_MAX(topic, cnt_topic), '') AS top_topic,
			COALESCE(AVG(sentiment_score), 0) AS avg_sentiment,
			COUNT(sentiment_score) AS scored_events,
			COUNT(*) FILTER (WHERE sentiment_label = 'negative') AS negative_events
		FROM (
			SELECT *,
				COUNT(*) OVER (PARTITION BY member_handle, platform) AS cnt_platform,
				COUNT(*) OVER (PARTITION BY member_handle, topic) AS cnt_topic
			FROM engagement_events
			%s
		)
		GROUP BY member_handle
		ORDER BY total_events DESC
		LIMIT ? OFFSET ?`, where)
	args = append(args, clampLimit(filter.Limit), max(filter.Offset, 0))

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audience profiles: %w", err)
	}
	defer closeQuietly(rows)

	now := time.Now().UTC()
	profiles := make([]*models.AudienceProfile, 0, 64)
	for rows.Next() {
		p, err := scanAudienceProfile(rows, filter.TenantID, now)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audience profiles: %w", err)
	}

	return profiles, nil
}

// GetAudienceProfile returns the rollup for a single member, or nil when
// the member has no recorded events.
func (db *DB) GetAudienceProfile(ctx context.Context, tenantID, memberHandle string) (*models.AudienceProfile, error) {
	profiles, err := db.GetAudienceProfiles(ctx, EventFilter{
		TenantID:     tenantID,
		MemberHandle: memberHandle,
		Limit:        1,
	})
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return profiles[0], nil
}

func scanAudienceProfile(rows *sql.Rows, tenantID string, now time.Time) (*models.AudienceProfile, error) {
	var (
		p              models.AudienceProfile
		clicks         int64
		topPlatform    string
		negativeEvents int64
	)

	if err := rows.Scan(
		&p.MemberHandle, &p.Followers, &p.Verified,
		&p.TotalEvents, &p.Likes, &p.Shares, &p.Comments, &p.Mentions, &clicks,
		&p.ActiveDays, &p.FirstSeenAt, &p.LastSeenAt,
		&topPlatform, &p.TopTopic,
		&p.AvgSentiment, &p.ScoredEvents, &negativeEvents,
	); err != nil {
		return nil, fmt.Errorf("failed to scan audience profile: %w", err)
	}

	p.TenantID = tenantID
	p.TopPlatform = models.Platform(topPlatform)
	p.DaysSinceSeen = int(now.Sub(p.LastSeenAt).Hours() / 24)
	if p.DaysSinceSeen < 0 {
		p.DaysSinceSeen = 0
	}
	if p.ScoredEvents > 0 {
		p.NegativeRatio = float64(negativeEvents) / float64(p.ScoredEvents)
	}
	p.EngagementScore = calculateEngagementScore(&p, clicks)

	return &p, nil
}

// calculateEngagementScore computes a weighted activity score for a member.
// The log dampener keeps a handful of hyperactive accounts from swamping
// the scale, and active-day spread rewards sustained engagement over
// single-burst activity.
func calculateEngagementScore(p *models.AudienceProfile, clicks int64) float64 {
	weighted := weightLike*float64(p.Likes) +
		weightShare*float64(p.Shares) +
		weightComment*float64(p.Comments) +
		weightMention*float64(p.Mentions) +
		weightClick*float64(clicks)

	score := math.Log1p(weighted) * 10

	if p.ActiveDays > 1 {
		score *= 1 + math.Min(float64(p.ActiveDays)/30.0, 1.0)
	}
	if p.Verified {
		score *= verifiedBoost
	}

	return math.Round(score*100) / 100
}
