// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package supervisor

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crowdpulse/crowdpulse/internal/config"
	"github.com/crowdpulse/crowdpulse/internal/logging"
	"github.com/crowdpulse/crowdpulse/internal/models"
	"github.com/crowdpulse/crowdpulse/internal/segment"
)

type fakeHTTPServer struct {
	listenErr    error
	shutdownErr  error
	shutdownOnce sync.Once
	started      chan struct{}
	release      chan struct{}
	shutdowns    atomic.Int32
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	close(f.started)
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.release
	return nil
}

func (f *fakeHTTPServer) Shutdown(ctx context.Context) error {
	f.shutdowns.Add(1)
	f.shutdownOnce.Do(func() { close(f.release) })
	return f.shutdownErr
}

func TestHTTPServerServiceGracefulShutdown(t *testing.T) {
	server := newFakeHTTPServer()
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	<-server.started
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	if server.shutdowns.Load() != 1 {
		t.Errorf("Expected one shutdown call, got %d", server.shutdowns.Load())
	}
}

func TestHTTPServerServiceReportsListenFailure(t *testing.T) {
	server := newFakeHTTPServer()
	server.listenErr = errors.New("bind: address already in use")
	svc := NewHTTPServerService(server, time.Second)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, server.listenErr) {
		t.Fatalf("Expected listen error, got %v", err)
	}
}

type fakeRunner struct {
	ran atomic.Bool
}

func (f *fakeRunner) RunWithContext(ctx context.Context) error {
	f.ran.Store(true)
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeRunner) String() string { return "fake-runner" }

func TestRunnerServiceDelegates(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewRunnerService(runner)

	if svc.String() != "fake-runner" {
		t.Errorf("Expected delegated name, got %q", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	if !runner.ran.Load() {
		t.Error("Expected runner to be invoked")
	}
}

type fakeTenantLister struct {
	calls atomic.Int32
}

func (f *fakeTenantLister) ListTenants(ctx context.Context) ([]string, error) {
	f.calls.Add(1)
	return []string{"tenant-a"}, nil
}

type emptyProvider struct{}

func (emptyProvider) AudienceProfiles(ctx context.Context, tenantID string, lookback time.Duration, limit int) ([]*models.AudienceProfile, error) {
	return nil, nil
}

func (emptyProvider) PostingSlots(ctx context.Context, tenantID, platform string, lookback time.Duration) ([]models.PostingSlot, error) {
	return nil, nil
}

func TestSegmentRefresherTicksAndStops(t *testing.T) {
	cfg := &config.SegmentConfig{MinMembers: 5, MaxMembers: 100, CacheTTL: time.Minute}
	engine := segment.NewEngine(cfg, emptyProvider{}, nil, logging.NewTestLogger(io.Discard))

	tenants := &fakeTenantLister{}
	svc := NewSegmentRefresherService(engine, tenants, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for tenants.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("Refresher never listed tenants")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
