// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/crowdpulse/crowdpulse/internal/models"
)

// WindowStats summarizes engagement and sentiment over a time window.
// Crisis detectors compare a recent window against a trailing baseline.
type WindowStats struct {
	EventCount    int64   `json:"event_count"`
	UniqueMembers int64   `json:"unique_members"`
	ScoredCount   int64   `json:"scored_count"`
	NegativeCount int64   `json:"negative_count"`
	AvgSentiment  float64 `json:"avg_sentiment"`
}

// NegativeRatio returns the share of scored events labeled negative.
func (w WindowStats) NegativeRatio() float64 {
	if w.ScoredCount == 0 {
		return 0
	}
	return float64(w.NegativeCount) / float64(w.ScoredCount)
}

// GetSentimentTrend returns sentiment buckets over the filter's time range.
// bucketHours controls the bucket width and must be at least 1.
func (db *DB) GetSentimentTrend(ctx context.Context, filter EventFilter, bucketHours int) (_ *models.SentimentTrend, err error) {
	if bucketHours < 1 {
		bucketHours = 1
	}

	defer observeQuery("sentiment_trend", time.Now(), &err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := buildEventWhere(filter)
	query := fmt.Sprintf(`
		SELECT
			TIME_BUCKET(INTERVAL '%d hours', occurred_at) AS bucket_start,
			COUNT(*) AS event_count,
			COUNT(sentiment_score) AS scored_count,
			COALESCE(AVG(sentiment_score), 0) AS avg_sentiment,
			COUNT(*) FILTER (WHERE sentiment_label = 'negative') AS negative_count,
			COUNT(*) FILTER (WHERE sentiment_label = 'positive') AS positive_count
		FROM engagement_events
		%s
		GROUP BY bucket_start
		ORDER BY bucket_start`, bucketHours, where)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sentiment trend: %w", err)
	}
	defer closeQuietly(rows)

	trend := &models.SentimentTrend{
		TenantID:    filter.TenantID,
		Platform:    models.Platform(filter.Platform),
		BucketHours: bucketHours,
		Points:      make([]models.SentimentPoint, 0, 64),
	}

	for rows.Next() {
		var (
			point         models.SentimentPoint
			negativeCount int64
			positiveCount int64
		)
		if err := rows.Scan(&point.BucketStart, &point.EventCount, &point.ScoredCount,
			&point.AvgSentiment, &negativeCount, &positiveCount); err != nil {
			return nil, fmt.Errorf("failed to scan sentiment point: %w", err)
		}
		if point.ScoredCount > 0 {
			point.NegativeRatio = float64(negativeCount) / float64(point.ScoredCount)
			point.PositiveRatio = float64(positiveCount) / float64(point.ScoredCount)
		}
		trend.Points = append(trend.Points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sentiment points: %w", err)
	}

	return trend, nil
}

// GetEngagementSummary returns tenant-wide engagement totals for a filter.
func (db *DB) GetEngagementSummary(ctx context.Context, filter EventFilter) (_ *models.EngagementSummary, err error) {
	defer observeQuery("engagement_summary", time.Now(), &err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := buildEventWhere(filter)
	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS total_events,
			COUNT(DISTINCT member_handle) AS unique_members,
			COUNT(DISTINCT post_id) AS unique_posts,
			COUNT(*) FILTER (WHERE event_type = 'like') AS likes,
			COUNT(*) FILTER (WHERE event_type = 'share') AS shares,
			COUNT(*) FILTER (WHERE event_type = 'comment') AS comments,
			COUNT(*) FILTER (WHERE event_type = 'mention') AS mentions,
			COALESCE(AVG(sentiment_score), 0) AS avg_sentiment,
			COUNT(sentiment_score) AS scored_count,
			COUNT(*) FILTER (WHERE sentiment_label = 'negative') AS negative_count,
			COALESCE(SUM(impressions), 0) AS impressions
		FROM engagement_events
		%s`, where)

	var (
		summary       models.EngagementSummary
		scoredCount   int64
		negativeCount int64
		impressions   int64
	)
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(
		&summary.TotalEvents, &summary.UniqueMembers, &summary.UniquePosts,
		&summary.Likes, &summary.Shares, &summary.Comments, &summary.Mentions,
		&summary.AvgSentiment, &scoredCount, &negativeCount, &impressions,
	); err != nil {
		return nil, fmt.Errorf("failed to query engagement summary: %w", err)
	}

	if scoredCount > 0 {
		summary.NegativeRatio = float64(negativeCount) / float64(scoredCount)
	}
	interactions := summary.Likes + summary.Shares + summary.Comments + summary.Mentions
	if impressions > 0 {
		summary.EngagementRate = float64(interactions) / float64(impressions)
	}

	return &summary, nil
}

// GetWindowStats summarizes a tenant's activity between from and to.
func (db *DB) GetWindowStats(ctx context.Context, tenantID string, platform string, from, to time.Time) (_ *WindowStats, err error) {
	defer observeQuery("window_stats", time.Now(), &err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := buildEventWhere(EventFilter{
		TenantID:  tenantID,
		Platform:  platform,
		StartDate: &from,
		EndDate:   &to,
	})
	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS event_count,
			COUNT(DISTINCT member_handle) AS unique_members,
			COUNT(sentiment_score) AS scored_count,
			COUNT(*) FILTER (WHERE sentiment_label = 'negative') AS negative_count,
			COALESCE(AVG(sentiment_score), 0) AS avg_sentiment
		FROM engagement_events
		%s`, where)

	var stats WindowStats
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(
		&stats.EventCount, &stats.UniqueMembers, &stats.ScoredCount,
		&stats.NegativeCount, &stats.AvgSentiment,
	); err != nil {
		return nil, fmt.Errorf("failed to query window stats: %w", err)
	}

	return &stats, nil
}

// GetNegativeInfluencerEvents returns recent negative events from members
// whose reach exceeds minFollowers, or who are verified.
func (db *DB) GetNegativeInfluencerEvents(ctx context.Context, tenantID string, since time.Time, minFollowers int64) (_ []*models.EngagementEvent, err error) {
	defer observeQuery("negative_influencer_events", time.Now(), &err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
		SELECT id, tenant_id, post_id, platform, COALESCE(content_type, ''), COALESCE(topic, ''),
			member_handle, member_followers, member_verified,
			event_type, COALESCE(text, ''), impressions, clicks,
			sentiment_score, COALESCE(sentiment_label, ''), occurred_at, created_at
		FROM engagement_events
		WHERE tenant_id = ?
			AND occurred_at >= ?
			AND sentiment_label = 'negative'
			AND (member_followers >= ? OR member_verified)
		ORDER BY member_followers DESC
		LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query, tenantID, since, minFollowers, maxListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query influencer events: %w", err)
	}
	defer closeQuietly(rows)

	events := make([]*models.EngagementEvent, 0, 16)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate influencer events: %w", err)
	}

	return events, nil
}
