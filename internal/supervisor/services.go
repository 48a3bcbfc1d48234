// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/crowdpulse/crowdpulse/internal/logging"
	"github.com/crowdpulse/crowdpulse/internal/segment"
)

// HTTPServer matches *http.Server's lifecycle methods.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService bridges http.Server's blocking ListenAndServe to
// suture's context-aware Serve.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
}

// NewHTTPServerService creates an HTTP server service wrapper.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
	}
}

// Serve implements suture.Service. http.ErrServerClosed is treated as
// a normal shutdown, not a failure.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// The original context is already canceled; shutdown gets its own.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}

		<-errCh
		return ctx.Err()
	}
}

// String implements fmt.Stringer for supervisor logs.
func (h *HTTPServerService) String() string {
	return "http-server"
}

// ContextRunner matches components that already follow the supervised
// run pattern: *websocket.Hub and *crisis.Engine.
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
	String() string
}

// RunnerService wraps a ContextRunner as a suture service.
type RunnerService struct {
	runner ContextRunner
}

// NewRunnerService wraps hub-style components for supervision.
func NewRunnerService(runner ContextRunner) *RunnerService {
	return &RunnerService{runner: runner}
}

// Serve implements suture.Service.
func (r *RunnerService) Serve(ctx context.Context) error {
	return r.runner.RunWithContext(ctx)
}

// String implements fmt.Stringer for supervisor logs.
func (r *RunnerService) String() string {
	return r.runner.String()
}

// TenantLister is the refresher's view of the storage layer.
type TenantLister interface {
	ListTenants(ctx context.Context) ([]string, error)
}

// SegmentRefresherService periodically recomputes every tenant's
// audience segments so API reads stay warm and history accumulates.
type SegmentRefresherService struct {
	engine   *segment.Engine
	tenants  TenantLister
	interval time.Duration
}

// NewSegmentRefresherService creates the periodic segment refresher.
func NewSegmentRefresherService(engine *segment.Engine, tenants TenantLister, interval time.Duration) *SegmentRefresherService {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &SegmentRefresherService{
		engine:   engine,
		tenants:  tenants,
		interval: interval,
	}
}

// Serve implements suture.Service. Refresh failures for one tenant are
// logged and never stop the loop or the other tenants.
func (s *SegmentRefresherService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.refreshAll(ctx)
		}
	}
}

func (s *SegmentRefresherService) refreshAll(ctx context.Context) {
	tenants, err := s.tenants.ListTenants(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("segment refresher failed to list tenants")
		return
	}

	for _, tenantID := range tenants {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.engine.Segments(ctx, tenantID, true); err != nil {
			if errors.Is(err, segment.ErrNotEnoughMembers) {
				continue
			}
			logging.Warn().Str("tenant_id", tenantID).Err(err).Msg("segment refresh failed")
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *SegmentRefresherService) String() string {
	return "segment-refresher"
}
