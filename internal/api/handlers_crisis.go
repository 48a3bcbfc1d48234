// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/crowdpulse/crowdpulse/internal/crisis"
)

// HandleListAlerts returns the tenant's crisis alerts, newest first.
// Supports detector_types, severities, acknowledged, start_date and
// end_date query filters plus limit/offset pagination.
func (h *Handlers) HandleListAlerts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	limit, offset := h.pagination(r)
	filter := crisis.AlertFilter{
		TenantID:     tenantID,
		Acknowledged: queryBool(r, "acknowledged"),
		StartDate:    queryTime(r, "start_date"),
		EndDate:      queryTime(r, "end_date"),
		Limit:        limit,
		Offset:       offset,
	}
	for _, raw := range splitCSV(r.URL.Query().Get("detector_types")) {
		filter.DetectorTypes = append(filter.DetectorTypes, crisis.DetectorType(raw))
	}
	for _, raw := range splitCSV(r.URL.Query().Get("severities")) {
		filter.Severities = append(filter.Severities, crisis.Severity(raw))
	}

	alerts, err := h.alertStore.ListAlerts(r.Context(), filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	total, err := h.alertStore.GetAlertCount(r.Context(), filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.SuccessWithPagination(alerts, &PaginationMeta{
		Count:   len(alerts),
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(alerts)) < total,
	})
}

// HandleGetAlert returns a single alert by ID.
func (h *Handlers) HandleGetAlert(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	alert, err := h.alertStore.GetAlert(r.Context(), tenantID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, crisis.ErrAlertNotFound) {
			rw.NotFound("alert not found")
			return
		}
		rw.DatabaseError(err)
		return
	}

	rw.Success(alert)
}

// HandleAcknowledgeAlert marks an alert as acknowledged. Repeat
// acknowledgements conflict rather than silently overwrite.
func (h *Handlers) HandleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	var req AcknowledgeAlertRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	alert, err := h.alertStore.GetAlert(r.Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, crisis.ErrAlertNotFound) {
			rw.NotFound("alert not found")
			return
		}
		rw.DatabaseError(err)
		return
	}
	if alert.Acknowledged {
		rw.Conflict("alert already acknowledged")
		return
	}

	if err := h.alertStore.AcknowledgeAlert(r.Context(), tenantID, id, req.AcknowledgedBy); err != nil {
		if errors.Is(err, crisis.ErrAlertNotFound) {
			rw.Conflict("alert already acknowledged")
			return
		}
		rw.DatabaseError(err)
		return
	}

	acked, err := h.alertStore.GetAlert(r.Context(), tenantID, id)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(acked)
}

// DetectorStatus describes one detector for the management API.
type DetectorStatus struct {
	Type    crisis.DetectorType `json:"type"`
	Enabled bool                `json:"enabled"`
	Config  interface{}         `json:"config"`
}

// HandleListDetectors returns every registered detector with its
// current configuration.
func (h *Handlers) HandleListDetectors(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if _, ok := tenantFromRequest(w, r); !ok {
		return
	}

	types := h.crisisEngine.Detectors()
	statuses := make([]DetectorStatus, 0, len(types))
	for _, dt := range types {
		d := h.crisisEngine.Detector(dt)
		if d == nil {
			continue
		}
		statuses = append(statuses, DetectorStatus{
			Type:    dt,
			Enabled: d.Enabled(),
			Config:  detectorConfig(d),
		})
	}

	rw.Success(statuses)
}

// HandleConfigureDetector applies a new configuration to one detector.
// The body is passed to the detector as raw JSON so each detector can
// validate its own fields.
func (h *Handlers) HandleConfigureDetector(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if _, ok := tenantFromRequest(w, r); !ok {
		return
	}

	d, ok := h.detectorFromRequest(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		rw.BadRequest("unable to read request body")
		return
	}

	if err := d.Configure(json.RawMessage(body)); err != nil {
		rw.BadRequest("invalid detector configuration: " + err.Error())
		return
	}

	rw.Success(DetectorStatus{
		Type:    d.Type(),
		Enabled: d.Enabled(),
		Config:  detectorConfig(d),
	})
}

// HandleSetDetectorEnabled enables or disables one detector.
func (h *Handlers) HandleSetDetectorEnabled(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if _, ok := tenantFromRequest(w, r); !ok {
		return
	}

	d, ok := h.detectorFromRequest(w, r)
	if !ok {
		return
	}

	var req DetectorEnabledRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	d.SetEnabled(*req.Enabled)
	rw.Success(DetectorStatus{
		Type:    d.Type(),
		Enabled: d.Enabled(),
		Config:  detectorConfig(d),
	})
}

// detectorFromRequest resolves the {type} URL parameter to a registered
// detector or writes a 404.
func (h *Handlers) detectorFromRequest(w http.ResponseWriter, r *http.Request) (crisis.Detector, bool) {
	dt := crisis.DetectorType(chi.URLParam(r, "type"))
	d := h.crisisEngine.Detector(dt)
	if d == nil {
		NewResponseWriter(w, r).NotFound("unknown detector type")
		return nil, false
	}
	return d, true
}

// detectorConfig returns the typed configuration for a detector.
func detectorConfig(d crisis.Detector) interface{} {
	switch det := d.(type) {
	case *crisis.SentimentSpikeDetector:
		return det.Config()
	case *crisis.VolumeSpikeDetector:
		return det.Config()
	case *crisis.InfluencerNegativeDetector:
		return det.Config()
	case *crisis.KeywordWatchlistDetector:
		return det.Config()
	default:
		return nil
	}
}

// splitCSV splits a comma-separated query value, trimming whitespace
// and dropping empty entries.
func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
