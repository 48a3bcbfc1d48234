// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package crisis

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/crowdpulse/crowdpulse/internal/logging"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 500
)

// ErrAlertNotFound is returned when an alert does not exist for the tenant.
var ErrAlertNotFound = fmt.Errorf("alert not found")

// DuckDBStore persists crisis alerts in DuckDB.
type DuckDBStore struct {
	db *sql.DB
}

// NewDuckDBStore creates an alert store backed by the given database.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// InitSchema creates the alert table and indexes if they do not exist.
func (s *DuckDBStore) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS crisis_alerts (
		id VARCHAR PRIMARY KEY,
		tenant_id VARCHAR NOT NULL,
		detector_type VARCHAR NOT NULL,
		severity VARCHAR NOT NULL,
		platform VARCHAR,
		title VARCHAR NOT NULL,
		message VARCHAR NOT NULL,
		observed_value DOUBLE NOT NULL DEFAULT 0,
		baseline_value DOUBLE NOT NULL DEFAULT 0,
		sample_size INTEGER NOT NULL DEFAULT 0,
		metadata JSON,
		acknowledged BOOLEAN NOT NULL DEFAULT FALSE,
		acknowledged_by VARCHAR,
		acknowledged_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create crisis_alerts table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_alerts_tenant_time ON crisis_alerts(tenant_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_alerts_tenant_ack ON crisis_alerts(tenant_id, acknowledged)",
	}
	for _, idx := range indexes {
		if _, err := s.db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create alert index: %w", err)
		}
	}

	return nil
}

// SaveAlert persists a new alert.
func (s *DuckDBStore) SaveAlert(ctx context.Context, alert *Alert) error {
	var metadata interface{}
	if len(alert.Metadata) > 0 {
		metadata = string(alert.Metadata)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO crisis_alerts (
			id, tenant_id, detector_type, severity, platform,
			title, message, observed_value, baseline_value, sample_size,
			metadata, acknowledged, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, FALSE, ?)`,
		alert.ID, alert.TenantID, string(alert.DetectorType), string(alert.Severity), alert.Platform,
		alert.Title, alert.Message, alert.ObservedValue, alert.BaselineValue, alert.SampleSize,
		metadata, alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

// GetAlert returns a single alert scoped to the tenant.
func (s *DuckDBStore) GetAlert(ctx context.Context, tenantID, id string) (*Alert, error) {
	rows, err := s.db.QueryContext(ctx,
		selectAlertSQL+" WHERE tenant_id = ? AND id = ?", tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert: %w", err)
	}
	defer closeRows(rows)

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrAlertNotFound
	}
	return scanAlert(rows)
}

// ListAlerts returns alerts matching the filter, newest first.
func (s *DuckDBStore) ListAlerts(ctx context.Context, filter AlertFilter) ([]*Alert, error) {
	where, args := buildAlertWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAlertLimit
	}
	if limit > maxAlertLimit {
		limit = maxAlertLimit
	}

	query := selectAlertSQL + where + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer closeRows(rows)

	alerts := make([]*Alert, 0, limit)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// GetAlertCount returns the number of alerts matching the filter.
func (s *DuckDBStore) GetAlertCount(ctx context.Context, filter AlertFilter) (int64, error) {
	where, args := buildAlertWhere(filter)

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM crisis_alerts"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return count, nil
}

// AcknowledgeAlert marks an alert as acknowledged by an operator.
func (s *DuckDBStore) AcknowledgeAlert(ctx context.Context, tenantID, id, acknowledgedBy string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE crisis_alerts
		SET acknowledged = TRUE, acknowledged_by = ?, acknowledged_at = ?
		WHERE tenant_id = ? AND id = ? AND acknowledged = FALSE`,
		acknowledgedBy, time.Now().UTC(), tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check acknowledge result: %w", err)
	}
	if affected == 0 {
		return ErrAlertNotFound
	}
	return nil
}

const selectAlertSQL = `
	SELECT id, tenant_id, detector_type, severity, COALESCE(platform, ''),
	       title, message, observed_value, baseline_value, sample_size,
	       metadata, acknowledged, COALESCE(acknowledged_by, ''), acknowledged_at, created_at
	FROM crisis_alerts`

// buildAlertWhere builds the WHERE clause for ListAlerts and GetAlertCount.
// TenantID is always applied first so no query can cross tenants.
func buildAlertWhere(filter AlertFilter) (string, []interface{}) {
	conditions := []string{"tenant_id = ?"}
	args := []interface{}{filter.TenantID}

	if len(filter.DetectorTypes) > 0 {
		placeholders := make([]string, len(filter.DetectorTypes))
		for i, dt := range filter.DetectorTypes {
			placeholders[i] = "?"
			args = append(args, string(dt))
		}
		conditions = append(conditions, "detector_type IN ("+strings.Join(placeholders, ", ")+")")
	}

	if len(filter.Severities) > 0 {
		placeholders := make([]string, len(filter.Severities))
		for i, sev := range filter.Severities {
			placeholders[i] = "?"
			args = append(args, string(sev))
		}
		conditions = append(conditions, "severity IN ("+strings.Join(placeholders, ", ")+")")
	}

	if filter.Acknowledged != nil {
		conditions = append(conditions, "acknowledged = ?")
		args = append(args, *filter.Acknowledged)
	}

	if filter.StartDate != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *filter.StartDate)
	}

	if filter.EndDate != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *filter.EndDate)
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

// scanAlert scans one alert row. The metadata column comes back from the
// DuckDB JSON type as a decoded value, so it is re-marshaled to preserve
// the RawMessage contract.
func scanAlert(rows *sql.Rows) (*Alert, error) {
	var (
		alert          Alert
		metadata       interface{}
		acknowledgedAt sql.NullTime
		detectorType   string
		severity       string
	)

	err := rows.Scan(
		&alert.ID, &alert.TenantID, &detectorType, &severity, &alert.Platform,
		&alert.Title, &alert.Message, &alert.ObservedValue, &alert.BaselineValue, &alert.SampleSize,
		&metadata, &alert.Acknowledged, &alert.AcknowledgedBy, &acknowledgedAt, &alert.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan alert: %w", err)
	}

	alert.DetectorType = DetectorType(detectorType)
	alert.Severity = Severity(severity)

	if acknowledgedAt.Valid {
		t := acknowledgedAt.Time
		alert.AcknowledgedAt = &t
	}

	if metadata != nil {
		switch v := metadata.(type) {
		case string:
			alert.Metadata = json.RawMessage(v)
		case []byte:
			alert.Metadata = json.RawMessage(v)
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to re-marshal alert metadata: %w", err)
			}
			alert.Metadata = raw
		}
	}

	return &alert, nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logging.Warn().Err(err).Msg("failed to close rows")
	}
}
