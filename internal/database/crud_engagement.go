// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/crowdpulse/crowdpulse/internal/models"
)

const (
	// maxBatchSize caps a single ingestion batch.
	maxBatchSize = 5000

	defaultListLimit = 100
	maxListLimit     = 1000
)

// EventFilter narrows engagement queries. TenantID is mandatory; every
// query in this package is tenant-scoped.
type EventFilter struct {
	TenantID     string
	Platform     string
	EventTypes   []string
	Topic        string
	MemberHandle string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}

// buildEventWhere builds the WHERE clause and args for engagement queries.
func buildEventWhere(filter EventFilter) (string, []interface{}) {
	clauses := []string{"tenant_id = ?"}
	args := []interface{}{filter.TenantID}

	if filter.Platform != "" {
		clauses = append(clauses, "platform = ?")
		args = append(args, filter.Platform)
	}

	if len(filter.EventTypes) > 0 {
		placeholders := ""
		for i, et := range filter.EventTypes {
			if i > 0 {
				placeholders += ", "
			}
			placeholders += "?"
			args = append(args, et)
		}
		clauses = append(clauses, "event_type IN ("+placeholders+")")
	}

	if filter.Topic != "" {
		clauses = append(clauses, "topic = ?")
		args = append(args, filter.Topic)
	}

	if filter.MemberHandle != "" {
		clauses = append(clauses, "member_handle = ?")
		args = append(args, filter.MemberHandle)
	}

	if filter.StartDate != nil {
		clauses = append(clauses, "occurred_at >= ?")
		args = append(args, *filter.StartDate)
	}

	if filter.EndDate != nil {
		clauses = append(clauses, "occurred_at <= ?")
		args = append(args, *filter.EndDate)
	}

	where := "WHERE " + clauses[0]
	for _, c := range clauses[1:] {
		where += " AND " + c
	}
	return where, args
}

// clampLimit normalizes a requested page size.
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

const insertEventSQL = `
	INSERT INTO engagement_events (
		tenant_id, post_id, platform, content_type, topic,
		member_handle, member_followers, member_verified,
		event_type, text, impressions, clicks,
		sentiment_score, sentiment_label, occurred_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// InsertEvent stores a single engagement event.
func (db *DB) InsertEvent(ctx context.Context, event *models.EngagementEvent) (err error) {
	defer observeQuery("insert_event", time.Now(), &err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err = db.conn.ExecContext(ctx, insertEventSQL,
		event.TenantID, event.PostID, string(event.Platform), event.ContentType, event.Topic,
		event.MemberHandle, event.MemberFollowers, event.MemberVerified,
		string(event.EventType), event.Text, event.Impressions, event.Clicks,
		event.SentimentScore, event.SentimentLabel, event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert engagement event: %w", err)
	}
	return nil
}

// InsertEventBatch stores a batch of engagement events in a single
// transaction. The batch either commits entirely or not at all.
func (db *DB) InsertEventBatch(ctx context.Context, events []*models.EngagementEvent) (err error) {
	if len(events) == 0 {
		return nil
	}
	if len(events) > maxBatchSize {
		return fmt.Errorf("batch size %d exceeds maximum %d", len(events), maxBatchSize)
	}

	defer observeQuery("insert_event_batch", time.Now(), &err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, insertEventSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer closeQuietly(stmt)

	for _, event := range events {
		if _, err := stmt.ExecContext(ctx,
			event.TenantID, event.PostID, string(event.Platform), event.ContentType, event.Topic,
			event.MemberHandle, event.MemberFollowers, event.MemberVerified,
			string(event.EventType), event.Text, event.Impressions, event.Clicks,
			event.SentimentScore, event.SentimentLabel, event.OccurredAt,
		); err != nil {
			return fmt.Errorf("failed to insert event for post %s: %w", event.PostID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// ListEvents returns engagement events matching the filter, newest first.
func (db *DB) ListEvents(ctx context.Context, filter EventFilter) (_ []*models.EngagementEvent, err error) {
	defer observeQuery("list_events", time.Now(), &err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := buildEventWhere(filter)
	query := fmt.Sprintf(`
		SELECT id, tenant_id, post_id, platform, COALESCE(content_type, ''), COALESCE(topic, ''),
			member_handle, member_followers, member_verified,
			event_type, COALESCE(text, ''), impressions, clicks,
			sentiment_score, COALESCE(sentiment_label, ''), occurred_at, created_at
		FROM engagement_events
		%s
		ORDER BY occurred_at DESC
		LIMIT ? OFFSET ?`, where)
	args = append(args, clampLimit(filter.Limit), max(filter.Offset, 0))

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list engagement events: %w", err)
	}
	defer closeQuietly(rows)

	events := make([]*models.EngagementEvent, 0, clampLimit(filter.Limit))
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate engagement events: %w", err)
	}

	return events, nil
}

// CountEvents returns the number of events matching the filter.
func (db *DB) CountEvents(ctx context.Context, filter EventFilter) (_ int64, err error) {
	defer observeQuery("count_events", time.Now(), &err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := buildEventWhere(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM engagement_events %s`, where)

	var count int64
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count engagement events: %w", err)
	}
	return count, nil
}

// ListTenants returns the distinct tenants with recorded engagement.
func (db *DB) ListTenants(ctx context.Context) (_ []string, err error) {
	defer observeQuery("list_tenants", time.Now(), &err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT DISTINCT tenant_id FROM engagement_events ORDER BY tenant_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer closeQuietly(rows)

	var tenants []string
	for rows.Next() {
		var tenant string
		if err := rows.Scan(&tenant); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}

// scanEvent reads one engagement event row.
func scanEvent(rows *sql.Rows) (*models.EngagementEvent, error) {
	var (
		event          models.EngagementEvent
		platform       string
		eventType      string
		sentimentScore sql.NullFloat64
	)

	if err := rows.Scan(
		&event.ID, &event.TenantID, &event.PostID, &platform, &event.ContentType, &event.Topic,
		&event.MemberHandle, &event.MemberFollowers, &event.MemberVerified,
		&eventType, &event.Text, &event.Impressions, &event.Clicks,
		&sentimentScore, &event.SentimentLabel, &event.OccurredAt, &event.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan engagement event: %w", err)
	}

	event.Platform = models.Platform(platform)
	event.EventType = models.EventType(eventType)
	if sentimentScore.Valid {
		score := sentimentScore.Float64
		event.SentimentScore = &score
	}
	return &event, nil
}
