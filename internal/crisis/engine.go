// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

// Package crisis detects emerging PR crises in a tenant's engagement
// stream. Detectors compare a recent window against a trailing baseline
// and raise severity-graded alerts, which are persisted, pushed to
// WebSocket subscribers and delivered to configured notifiers.
package crisis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crowdpulse/crowdpulse/internal/logging"
	"github.com/crowdpulse/crowdpulse/internal/metrics"
)

// alertCooldown suppresses repeat alerts from the same detector for the
// same tenant while a crisis is ongoing.
const alertCooldown = 30 * time.Minute

// Engine coordinates detector evaluation and alert delivery.
type Engine struct {
	detectors   map[DetectorType]Detector
	alertStore  AlertStore
	history     EventHistory
	notifiers   []Notifier
	broadcaster AlertBroadcaster

	checkInterval time.Duration

	mu       sync.RWMutex
	enabled  bool
	lastFire map[string]time.Time // tenant+detector -> last alert time
}

// NewEngine creates a crisis detection engine.
func NewEngine(alertStore AlertStore, history EventHistory, broadcaster AlertBroadcaster, checkInterval time.Duration) *Engine {
	return &Engine{
		detectors:     make(map[DetectorType]Detector),
		alertStore:    alertStore,
		history:       history,
		broadcaster:   broadcaster,
		notifiers:     make([]Notifier, 0),
		checkInterval: checkInterval,
		enabled:       true,
		lastFire:      make(map[string]time.Time),
	}
}

// RegisterDetector adds a detector to the engine.
func (e *Engine) RegisterDetector(detector Detector) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.detectors[detector.Type()] = detector
	logging.Info().Str("detector", string(detector.Type())).Msg("registered crisis detector")
}

// RegisterNotifier adds a notifier to the engine.
func (e *Engine) RegisterNotifier(notifier Notifier) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.notifiers = append(e.notifiers, notifier)
	logging.Info().Str("notifier", notifier.Name()).Msg("registered crisis notifier")
}

// SetEnabled toggles the whole engine.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
}

// IsEnabled reports whether the engine evaluates detectors.
func (e *Engine) IsEnabled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.enabled
}

// Detector returns a registered detector by type, or nil.
func (e *Engine) Detector(dt DetectorType) Detector {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.detectors[dt]
}

// Detectors returns the registered detector types.
func (e *Engine) Detectors() []DetectorType {
	e.mu.RLock()
	defer e.mu.RUnlock()

	types := make([]DetectorType, 0, len(e.detectors))
	for dt := range e.detectors {
		types = append(types, dt)
	}
	return types
}

// RunWithContext runs the periodic detection sweep until the context is
// canceled. It implements the service contract expected by the
// supervisor tree.
func (e *Engine) RunWithContext(ctx context.Context) error {
	ticker := time.NewTicker(e.checkInterval)
	defer ticker.Stop()

	logging.Info().Dur("interval", e.checkInterval).Msg("crisis detection loop started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("crisis detection loop stopped")
			return ctx.Err()
		case <-ticker.C:
			e.Sweep(ctx)
		}
	}
}

// Sweep evaluates every enabled detector for every active tenant.
func (e *Engine) Sweep(ctx context.Context) {
	if !e.IsEnabled() {
		return
	}

	tenants, err := e.history.ActiveTenants(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("failed to list tenants for crisis sweep")
		return
	}

	for _, tenantID := range tenants {
		e.checkTenant(ctx, tenantID)
	}
}

// checkTenant runs all enabled detectors for one tenant.
func (e *Engine) checkTenant(ctx context.Context, tenantID string) {
	e.mu.RLock()
	detectors := make([]Detector, 0, len(e.detectors))
	for _, d := range e.detectors {
		if d.Enabled() {
			detectors = append(detectors, d)
		}
	}
	e.mu.RUnlock()

	for _, detector := range detectors {
		metrics.CrisisChecksTotal.WithLabelValues(string(detector.Type())).Inc()

		alert, err := detector.Check(ctx, tenantID)
		if err != nil {
			metrics.CrisisCheckErrors.WithLabelValues(string(detector.Type())).Inc()
			logging.Warn().
				Str("tenant_id", tenantID).
				Str("detector", string(detector.Type())).
				Err(err).
				Msg("crisis detector check failed")
			continue
		}
		if alert == nil {
			continue
		}

		e.handleAlert(ctx, alert)
	}
}

// handleAlert applies cooldown dedup, persists the alert and fans it out.
func (e *Engine) handleAlert(ctx context.Context, alert *Alert) {
	if !e.shouldFire(alert.TenantID, alert.DetectorType) {
		return
	}

	alert.ID = uuid.New().String()
	alert.CreatedAt = time.Now().UTC()

	if err := e.alertStore.SaveAlert(ctx, alert); err != nil {
		logging.Error().Str("tenant_id", alert.TenantID).Err(err).Msg("failed to persist crisis alert")
		return
	}

	metrics.CrisisAlertsTotal.WithLabelValues(string(alert.DetectorType), string(alert.Severity)).Inc()

	logging.Warn().
		Str("tenant_id", alert.TenantID).
		Str("detector", string(alert.DetectorType)).
		Str("severity", string(alert.Severity)).
		Str("title", alert.Title).
		Msg("crisis alert raised")

	if e.broadcaster != nil {
		e.broadcaster.BroadcastTenantJSON(alert.TenantID, "crisis_alert", alert)
	}

	for _, notifier := range e.notifiers {
		if !notifier.Enabled() {
			continue
		}
		if err := notifier.Send(ctx, alert); err != nil {
			metrics.CrisisNotifyErrors.WithLabelValues(notifier.Name()).Inc()
			logging.Warn().Str("notifier", notifier.Name()).Err(err).Msg("failed to deliver crisis alert")
		}
	}
}

// shouldFire checks and updates the per-tenant/detector cooldown.
func (e *Engine) shouldFire(tenantID string, dt DetectorType) bool {
	key := tenantID + "/" + string(dt)

	e.mu.Lock()
	defer e.mu.Unlock()

	if last, ok := e.lastFire[key]; ok && time.Since(last) < alertCooldown {
		return false
	}
	e.lastFire[key] = time.Now()
	return true
}

// String implements fmt.Stringer for supervisor logging.
func (e *Engine) String() string {
	return "crisis-engine"
}
