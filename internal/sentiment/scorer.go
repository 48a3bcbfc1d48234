// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package sentiment

import (
	"context"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/crowdpulse/crowdpulse/internal/ai"
	"github.com/crowdpulse/crowdpulse/internal/logging"
	"github.com/crowdpulse/crowdpulse/internal/metrics"
	"github.com/crowdpulse/crowdpulse/internal/models"
)

// maxLLMBatch caps how many texts go into one completion call.
const maxLLMBatch = 50

const scoreSystemPrompt = `You are a sentiment scoring engine for social media text.
Score each numbered text from -1.0 (very negative) to 1.0 (very positive).
Respond with ONLY a JSON object of the form {"scores": [{"index": 0, "score": -0.8}, ...]}
with exactly one entry per input text, in any order. No prose.`

// Scorer assigns sentiment to engagement events. It delegates to the
// language model when one is configured and falls back to the lexicon
// analyzer on any failure; scoring never returns an error to ingestion.
type Scorer struct {
	analyzer *Analyzer
	llm      ai.Completer
}

// NewScorer creates a scorer. llm may be nil or disabled; the lexicon
// analyzer then scores everything.
func NewScorer(analyzer *Analyzer, llm ai.Completer) *Scorer {
	return &Scorer{
		analyzer: analyzer,
		llm:      llm,
	}
}

// ScoreEvents assigns sentiment to every text-bearing event that does
// not already carry a score.
func (s *Scorer) ScoreEvents(ctx context.Context, events []*models.EngagementEvent) {
	pending := make([]*models.EngagementEvent, 0, len(events))
	for _, event := range events {
		if event.Text == "" || event.SentimentScore != nil {
			continue
		}
		pending = append(pending, event)
	}
	if len(pending) == 0 {
		return
	}

	if s.llm == nil || !s.llm.Enabled() {
		s.analyzer.ScoreEvents(pending)
		return
	}

	for start := 0; start < len(pending); start += maxLLMBatch {
		end := start + maxLLMBatch
		if end > len(pending) {
			end = len(pending)
		}
		s.scoreBatch(ctx, pending[start:end])
	}
}

// llmScoreReply is the completion reply schema.
type llmScoreReply struct {
	Scores []struct {
		Index int     `json:"index"`
		Score float64 `json:"score"`
	} `json:"scores"`
}

// scoreBatch scores one chunk via the LLM, falling back to the lexicon
// for the whole chunk on any failure.
func (s *Scorer) scoreBatch(ctx context.Context, events []*models.EngagementEvent) {
	reply, err := s.llm.CompleteJSON(ctx, "sentiment", scoreSystemPrompt, buildScorePrompt(events))
	if err != nil {
		metrics.RecordLLMFallback("sentiment", "error")
		logging.Debug().Err(err).Int("batch", len(events)).Msg("llm sentiment scoring failed, using lexicon")
		s.analyzer.ScoreEvents(events)
		return
	}

	scores, err := parseScoreReply(reply, len(events))
	if err != nil {
		metrics.RecordLLMFallback("sentiment", "invalid_response")
		logging.Debug().Err(err).Msg("invalid llm sentiment reply, using lexicon")
		s.analyzer.ScoreEvents(events)
		return
	}

	for i, event := range events {
		score := scores[i]
		label := labelFor(score)
		event.SentimentScore = &score
		event.SentimentLabel = label
		metrics.SentimentScored.WithLabelValues(label).Inc()
	}
}

// buildScorePrompt numbers each text on its own line.
func buildScorePrompt(events []*models.EngagementEvent) string {
	var b strings.Builder
	b.WriteString("Texts:\n")
	for i, event := range events {
		fmt.Fprintf(&b, "%d: %s\n", i, strings.ReplaceAll(event.Text, "\n", " "))
	}
	return b.String()
}

// parseScoreReply validates the reply covers every index exactly once
// with scores in range.
func parseScoreReply(reply string, want int) ([]float64, error) {
	var parsed llmScoreReply
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		return nil, fmt.Errorf("reply is not valid JSON: %w", err)
	}
	if len(parsed.Scores) != want {
		return nil, fmt.Errorf("expected %d scores, got %d", want, len(parsed.Scores))
	}

	scores := make([]float64, want)
	seen := make([]bool, want)
	for _, entry := range parsed.Scores {
		if entry.Index < 0 || entry.Index >= want {
			return nil, fmt.Errorf("score index %d out of range", entry.Index)
		}
		if seen[entry.Index] {
			return nil, fmt.Errorf("duplicate score for index %d", entry.Index)
		}
		if entry.Score < -1 || entry.Score > 1 {
			return nil, fmt.Errorf("score %f out of range for index %d", entry.Score, entry.Index)
		}
		seen[entry.Index] = true
		scores[entry.Index] = entry.Score
	}
	return scores, nil
}
