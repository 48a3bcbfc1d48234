// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package database

import (
	"context"
	"fmt"
)

// createTables creates the database schema.
func (db *DB) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultQueryTimeout)
	defer cancel()

	tables := []string{
		`CREATE SEQUENCE IF NOT EXISTS engagement_events_seq START 1`,
		`CREATE TABLE IF NOT EXISTS engagement_events (
			id BIGINT PRIMARY KEY DEFAULT nextval('engagement_events_seq'),
			tenant_id VARCHAR NOT NULL,
			post_id VARCHAR NOT NULL,
			platform VARCHAR NOT NULL,
			content_type VARCHAR,
			topic VARCHAR,
			member_handle VARCHAR NOT NULL,
			member_followers BIGINT DEFAULT 0,
			member_verified BOOLEAN DEFAULT FALSE,
			event_type VARCHAR NOT NULL,
			text VARCHAR,
			impressions BIGINT DEFAULT 0,
			clicks BIGINT DEFAULT 0,
			sentiment_score DOUBLE,
			sentiment_label VARCHAR,
			occurred_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, table := range tables {
		if _, err := db.conn.ExecContext(ctx, table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// createIndexes creates indexes tuned for the analytics query patterns,
// which are tenant-scoped time ranges and per-member rollups.
func (db *DB) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultQueryTimeout)
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_events_tenant_time ON engagement_events(tenant_id, occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_tenant_member ON engagement_events(tenant_id, member_handle)`,
		`CREATE INDEX IF NOT EXISTS idx_events_tenant_platform ON engagement_events(tenant_id, platform, occurred_at)`,
	}

	for _, index := range indexes {
		if _, err := db.conn.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
