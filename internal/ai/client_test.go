// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/crowdpulse/crowdpulse/internal/config"
)

type fakeChatAPI struct {
	reply string
	err   error
	calls int
}

func (f *fakeChatAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.reply}},
		},
	}, nil
}

func newTestClient(api chatCompleter) *Client {
	return &Client{
		api:     api,
		cb:      newBreaker("llm-test"),
		model:   "gpt-4o-mini",
		timeout: time.Second,
		enabled: true,
	}
}

func TestCompleteJSONSuccess(t *testing.T) {
	api := &fakeChatAPI{reply: `{"segments":[]}`}
	client := newTestClient(api)

	reply, err := client.CompleteJSON(context.Background(), "cluster", "system", "user")
	if err != nil {
		t.Fatalf("CompleteJSON failed: %v", err)
	}
	if reply != `{"segments":[]}` {
		t.Errorf("Unexpected reply: %s", reply)
	}
	if api.calls != 1 {
		t.Errorf("Expected 1 API call, got %d", api.calls)
	}
}

func TestCompleteJSONDisabled(t *testing.T) {
	client := New(&config.AIConfig{Enabled: false})

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
	_, err := client.CompleteJSON(context.Background(), "cluster", "system", "user")
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Expected ErrDisabled, got %v", err)
	}
}

func TestCompleteJSONMissingKeyDisables(t *testing.T) {
	client := New(&config.AIConfig{Enabled: true, Model: "gpt-4o-mini"})
	if client.Enabled() {
		t.Error("Expected client without API key to be disabled")
	}
}

func TestCompleteJSONPropagatesError(t *testing.T) {
	api := &fakeChatAPI{err: errors.New("upstream boom")}
	client := newTestClient(api)

	_, err := client.CompleteJSON(context.Background(), "cluster", "system", "user")
	if err == nil {
		t.Fatal("Expected error from failing API")
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	api := &fakeChatAPI{err: errors.New("upstream boom")}
	client := newTestClient(api)

	// Drive the breaker past its failure threshold.
	for i := 0; i < 6; i++ {
		_, _ = client.CompleteJSON(context.Background(), "cluster", "s", "u")
	}

	callsBefore := api.calls
	_, err := client.CompleteJSON(context.Background(), "cluster", "s", "u")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("Expected open-state rejection, got %v", err)
	}
	if api.calls != callsBefore {
		t.Error("Expected rejected request to skip the API")
	}
}
