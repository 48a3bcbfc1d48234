// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package segment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Store persists segment sets so historical clusterings survive restarts
// and can be compared over time.
type Store struct {
	db *sql.DB
}

// NewStore creates a DuckDB-backed segment store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// InitSchema creates the segment tables if they don't exist.
func (s *Store) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS segment_sets (
			id VARCHAR PRIMARY KEY,
			tenant_id VARCHAR NOT NULL,
			source VARCHAR NOT NULL,
			model VARCHAR,
			member_count BIGINT DEFAULT 0,
			payload JSON NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_segment_sets_tenant ON segment_sets(tenant_id, created_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute segment schema query: %w", err)
		}
	}

	return nil
}

// Save persists a segment set.
func (s *Store) Save(ctx context.Context, set *SegmentSet) error {
	payload, err := json.Marshal(set.Segments)
	if err != nil {
		return fmt.Errorf("failed to marshal segments: %w", err)
	}

	query := `INSERT INTO segment_sets (id, tenant_id, source, model, member_count, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query,
		set.ID, set.TenantID, set.Source, set.Model, set.MemberCount, payload, set.GeneratedAt,
	); err != nil {
		return fmt.Errorf("failed to insert segment set: %w", err)
	}

	return nil
}

// Latest returns the most recent segment set for a tenant, or nil when
// none has been stored yet.
func (s *Store) Latest(ctx context.Context, tenantID string) (*SegmentSet, error) {
	query := `SELECT id, tenant_id, source, COALESCE(model, ''), member_count, payload, created_at
		FROM segment_sets
		WHERE tenant_id = ?
		ORDER BY created_at DESC
		LIMIT 1`

	set := &SegmentSet{}
	var payload interface{} // DuckDB returns JSON as map/slice values

	err := s.db.QueryRowContext(ctx, query, tenantID).Scan(
		&set.ID, &set.TenantID, &set.Source, &set.Model, &set.MemberCount, &payload, &set.GeneratedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest segment set: %w", err)
	}

	// The JSON column comes back as a string, []byte or decoded value
	// depending on the driver path.
	var raw []byte
	switch v := payload.(type) {
	case nil:
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		raw, err = json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to re-marshal segment payload: %w", err)
		}
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &set.Segments); err != nil {
			return nil, fmt.Errorf("failed to unmarshal segment payload: %w", err)
		}
	}

	return set, nil
}

// History returns up to limit stored segment sets for a tenant, newest
// first, without their member payloads.
func (s *Store) History(ctx context.Context, tenantID string, limit int) ([]*SegmentSet, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, tenant_id, source, COALESCE(model, ''), member_count, created_at
		FROM segment_sets
		WHERE tenant_id = ?
		ORDER BY created_at DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query segment history: %w", err)
	}
	defer rows.Close()

	var sets []*SegmentSet
	for rows.Next() {
		set := &SegmentSet{}
		if err := rows.Scan(&set.ID, &set.TenantID, &set.Source, &set.Model, &set.MemberCount, &set.GeneratedAt); err != nil {
			return nil, fmt.Errorf("failed to scan segment set: %w", err)
		}
		sets = append(sets, set)
	}

	return sets, rows.Err()
}
