// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

// Package websocket pushes live updates to dashboard clients. Each
// client is bound to one tenant at registration time; tenant-scoped
// messages are only delivered to that tenant's clients.
package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/crowdpulse/crowdpulse/internal/logging"
	"github.com/crowdpulse/crowdpulse/internal/metrics"
)

// Message types pushed to clients.
const (
	MessageTypePing            = "ping"
	MessageTypePong            = "pong"
	MessageTypeCrisisAlert     = "crisis_alert"
	MessageTypeSegmentsUpdated = "segments_updated"
	MessageTypeStatsUpdate     = "stats_update"
)

// Message represents a WebSocket message. TenantID is a delivery
// filter; empty means broadcast to every connected client.
type Message struct {
	Type     string      `json:"type"`
	Data     interface{} `json:"data"`
	TenantID string      `json:"-"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext starts the hub with context support for graceful
// shutdown. Lifecycle events take priority over broadcasts so client
// state is consistent before messages are delivered.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		// Lifecycle events first (non-blocking check).
		select {
		case client := <-h.Register:
			h.registerClient(client)
			continue
		case client := <-h.Unregister:
			h.unregisterClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (h *Hub) String() string {
	return "websocket-hub"
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Inc()
	logging.Info().
		Str("tenant_id", client.tenantID).
		Int("total_clients", count).
		Msg("websocket client connected")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		metrics.WSConnections.Dec()
	}
	count := len(h.clients)
	h.mu.Unlock()

	logging.Info().
		Str("tenant_id", client.tenantID).
		Int("total_clients", count).
		Msg("websocket client disconnected")
}

// broadcastToClients sends a message to matching clients in a
// deterministic order. Clients whose send buffer is full are dropped.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		if message.TenantID != "" && client.tenantID != message.TenantID {
			continue
		}
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
			metrics.WSMessagesSent.Inc()
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.WSConnections.Dec()
	}
}

// shutdown closes all connected clients and logs the reason.
func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
		metrics.WSConnections.Dec()
	}
	h.mu.Unlock()

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", reason).
		Int("clients_closed", len(clients)).
		Msg("websocket hub stopped")
}

// BroadcastTenantJSON sends a message to one tenant's clients. It
// implements the crisis.AlertBroadcaster interface.
func (h *Hub) BroadcastTenantJSON(tenantID, messageType string, data interface{}) {
	message := Message{
		Type:     messageType,
		Data:     data,
		TenantID: tenantID,
	}

	select {
	case h.broadcast <- message:
	default:
		logging.Warn().
			Str("tenant_id", tenantID).
			Str("message_type", messageType).
			Msg("broadcast channel full, dropping message")
	}
}

// BroadcastJSON sends a message to every connected client.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) {
	message := Message{
		Type: messageType,
		Data: data,
	}

	select {
	case h.broadcast <- message:
	default:
		logging.Warn().Str("message_type", messageType).Msg("broadcast channel full, dropping message")
	}
}

// StatsUpdateData is sent with stats_update messages.
type StatsUpdateData struct {
	Timestamp   string `json:"timestamp"`
	TotalEvents int64  `json:"total_events"`
}

// BroadcastStatsUpdate notifies a tenant's clients of new ingest totals.
func (h *Hub) BroadcastStatsUpdate(tenantID string, totalEvents int64) {
	h.BroadcastTenantJSON(tenantID, MessageTypeStatsUpdate, StatsUpdateData{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		TotalEvents: totalEvents,
	})
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
