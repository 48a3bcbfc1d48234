// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func TestSlogBridgeWritesToZerolog(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)

	slogger := slog.New(&slogBridge{logger: logger})
	slogger.Info("service started", "service", "websocket-hub", "restarts", int64(2))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log output: %v (raw %q)", err, buf.String())
	}
	if entry["message"] != "service started" {
		t.Errorf("Expected message, got %v", entry["message"])
	}
	if entry["service"] != "websocket-hub" {
		t.Errorf("Expected service attribute, got %v", entry["service"])
	}
	if entry["restarts"] != float64(2) {
		t.Errorf("Expected restarts attribute, got %v", entry["restarts"])
	}
}

func TestSlogBridgeGroupsPrefixKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)

	slogger := slog.New(&slogBridge{logger: logger}).WithGroup("supervisor")
	slogger.Warn("service failed", "name", "crisis-engine")

	out := buf.String()
	if !strings.Contains(out, "supervisor.name") {
		t.Errorf("Expected grouped attribute key, got %q", out)
	}
}

func TestSlogBridgeRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf).Level(zerolog.ErrorLevel)

	slogger := slog.New(&slogBridge{logger: logger})
	slogger.Info("suppressed")

	if buf.Len() != 0 {
		t.Errorf("Expected info to be suppressed at error level, got %q", buf.String())
	}
}
