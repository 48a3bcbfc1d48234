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

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DayName maps a DuckDB DAYOFWEEK value (0=Sunday) to its English name.
func DayName(dayOfWeek int) string {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return "Unknown"
	}
	return dayNames[dayOfWeek]
}

// GetPostingSlots returns the raw hour-of-week activity grid for a tenant.
// Only hours with at least one event are returned; scoring and ranking
// happen in the segment engine.
func (db *DB) GetPostingSlots(ctx context.Context, filter EventFilter) (_ []models.PostingSlot, err error) {
	defer observeQuery("posting_slots", time.Now(), &err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := buildEventWhere(filter)
	query := fmt.Sprintf(`
		SELECT
			DAYOFWEEK(occurred_at) AS day_of_week,
			HOUR(occurred_at) AS hour_of_day,
			COUNT(*) AS event_count,
			COUNT(DISTINCT member_handle) AS unique_members,
			COALESCE(AVG(sentiment_score), 0) AS avg_sentiment
		FROM engagement_events
		%s
		GROUP BY day_of_week, hour_of_day
		ORDER BY day_of_week, hour_of_day`, where)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posting slots: %w", err)
	}
	defer closeQuietly(rows)

	slots := make([]models.PostingSlot, 0, 24*7)
	for rows.Next() {
		var slot models.PostingSlot
		if err := rows.Scan(&slot.DayOfWeek, &slot.HourOfDay, &slot.EventCount, &slot.UniqueMembers, &slot.AvgSentiment); err != nil {
			return nil, fmt.Errorf("failed to scan posting slot: %w", err)
		}
		slot.DayName = DayName(slot.DayOfWeek)
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posting slots: %w", err)
	}

	return slots, nil
}
