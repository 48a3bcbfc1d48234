// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package api

import (
	"net/http"

	"github.com/crowdpulse/crowdpulse/internal/database"
	"github.com/crowdpulse/crowdpulse/internal/metrics"
	"github.com/crowdpulse/crowdpulse/internal/models"
)

// HandleIngestEvent records a single engagement event. Text-bearing
// events are sentiment-scored before they hit the store.
func (h *Handlers) HandleIngestEvent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	var req IngestEventRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	event := req.toEvent(tenantID)
	h.scorer.ScoreEvents(r.Context(), []*models.EngagementEvent{event})

	if err := h.db.InsertEvent(r.Context(), event); err != nil {
		rw.DatabaseError(err)
		return
	}

	metrics.RecordIngest(string(event.Platform), string(event.EventType), 1)
	rw.Created(event)
}

// HandleIngestBatch records a batch of events atomically.
func (h *Handlers) HandleIngestBatch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	var req BatchIngestRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	events := make([]*models.EngagementEvent, len(req.Events))
	for i := range req.Events {
		events[i] = req.Events[i].toEvent(tenantID)
	}
	h.scorer.ScoreEvents(r.Context(), events)

	if err := h.db.InsertEventBatch(r.Context(), events); err != nil {
		rw.DatabaseError(err)
		return
	}

	metrics.IngestBatchSize.Observe(float64(len(events)))
	for _, event := range events {
		metrics.RecordIngest(string(event.Platform), string(event.EventType), 1)
	}

	rw.Created(map[string]interface{}{
		"ingested": len(events),
	})
}

// HandleListEvents returns the tenant's events, newest first.
func (h *Handlers) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	limit, offset := h.pagination(r)
	filter := database.EventFilter{
		TenantID:     tenantID,
		Platform:     r.URL.Query().Get("platform"),
		Topic:        r.URL.Query().Get("topic"),
		MemberHandle: r.URL.Query().Get("member_handle"),
		StartDate:    queryTime(r, "start_date"),
		EndDate:      queryTime(r, "end_date"),
		Limit:        limit,
		Offset:       offset,
	}
	filter.EventTypes = splitCSV(r.URL.Query().Get("event_types"))

	events, err := h.db.ListEvents(r.Context(), filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	total, err := h.db.CountEvents(r.Context(), filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.SuccessWithPagination(events, &PaginationMeta{
		Total:   total,
		Count:   len(events),
		Offset:  offset,
		Limit:   limit,
		HasMore: int64(offset+len(events)) < total,
	})
}
