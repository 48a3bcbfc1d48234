// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

// Package ai provides the LLM completion client used for audience
// clustering and recommendation generation. Calls go through a circuit
// breaker so a degraded provider trips the segmentation engine into its
// heuristic path instead of stalling requests.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/crowdpulse/crowdpulse/internal/config"
	"github.com/crowdpulse/crowdpulse/internal/logging"
	"github.com/crowdpulse/crowdpulse/internal/metrics"
)

// ErrDisabled is returned when the AI integration is not configured.
var ErrDisabled = errors.New("ai: integration disabled")

// Completer is the completion interface consumed by the segment engine.
// Implementations must return a single JSON object as the reply body.
type Completer interface {
	CompleteJSON(ctx context.Context, operation, systemPrompt, userPrompt string) (string, error)
	Model() string
	Enabled() bool
}

// chatCompleter is the slice of the OpenAI client the Client needs.
// Tests substitute a fake.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client wraps the OpenAI chat-completion API with circuit breaker
// protection and request timeouts.
type Client struct {
	api         chatCompleter
	cb          *gobreaker.CircuitBreaker[string]
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	enabled     bool
}

// New creates an LLM client from configuration. A disabled configuration
// yields a client whose calls return ErrDisabled; callers are expected to
// fall back to heuristics.
func New(cfg *config.AIConfig) *Client {
	c := &Client{
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
		timeout:     cfg.RequestTimeout,
		enabled:     cfg.Enabled && cfg.APIKey != "",
	}
	if !c.enabled {
		return c
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	c.api = openai.NewClientWithConfig(apiCfg)
	c.cb = newBreaker("llm")

	return c
}

// newBreaker builds the circuit breaker guarding LLM calls.
// Opens after a 60% failure rate with at least 5 requests; half-opens
// after 2 minutes.
func newBreaker(name string) *gobreaker.CircuitBreaker[string] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Enabled reports whether LLM calls can be attempted.
func (c *Client) Enabled() bool {
	return c.enabled
}

// CompleteJSON sends a system+user prompt and returns the model's JSON
// reply body. The operation label is used for metrics only.
func (c *Client) CompleteJSON(ctx context.Context, operation, systemPrompt, userPrompt string) (string, error) {
	if !c.enabled {
		return "", ErrDisabled
	}

	start := time.Now()
	reply, err := c.cb.Execute(func() (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return c.complete(callCtx, systemPrompt, userPrompt)
	})
	duration := time.Since(start)

	switch {
	case err == nil:
		metrics.RecordLLMRequest(operation, "success", duration)
		return reply, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordLLMRequest(operation, "rejected", duration)
		logging.Warn().Str("operation", operation).Err(err).Msg("llm request rejected by circuit breaker")
		return "", err
	default:
		metrics.RecordLLMRequest(operation, "error", duration)
		logging.Warn().Str("operation", operation).Err(err).Msg("llm request failed")
		return "", err
	}
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
