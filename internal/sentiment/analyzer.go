// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

// Package sentiment scores short social-media text with a weighted
// lexicon. It handles negation ("not good") and intensifiers ("very
// bad") and maps scores to positive/neutral/negative labels. The
// analyzer is deterministic and dependency-free, which makes it the
// always-available scoring path for ingestion.
package sentiment

import (
	"strings"
	"unicode"

	"github.com/crowdpulse/crowdpulse/internal/metrics"
	"github.com/crowdpulse/crowdpulse/internal/models"
)

// Label values attached to scored events.
const (
	LabelPositive = "positive"
	LabelNeutral  = "neutral"
	LabelNegative = "negative"
)

// Thresholds for mapping a score to a label. Scores in the open interval
// (-0.15, 0.15) are neutral.
const (
	positiveThreshold = 0.15
	negativeThreshold = -0.15
)

// negationWindow is how many tokens a negation reaches forward.
const negationWindow = 3

// Result is the outcome of scoring one text.
type Result struct {
	Score float64 `json:"score"` // -1.0 .. 1.0
	Label string  `json:"label"`
	Hits  int     `json:"hits"` // lexicon terms matched
}

// Analyzer scores text against a weighted lexicon.
type Analyzer struct {
	lexicon      map[string]float64
	negations    map[string]bool
	intensifiers map[string]float64
}

// NewAnalyzer creates an analyzer with the built-in lexicon.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		lexicon:      defaultLexicon,
		negations:    defaultNegations,
		intensifiers: defaultIntensifiers,
	}
}

// Analyze scores a single text. Text with no lexicon hits is neutral
// with a zero score.
func (a *Analyzer) Analyze(text string) Result {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return Result{Score: 0, Label: LabelNeutral}
	}

	var (
		total float64
		hits  int
	)

	for i, token := range tokens {
		weight, ok := a.lexicon[token]
		if !ok {
			continue
		}

		multiplier := 1.0
		// Scan the preceding window for negations and intensifiers.
		// "not very good" flips and amplifies.
		for j := i - 1; j >= 0 && j >= i-negationWindow; j-- {
			prev := tokens[j]
			if a.negations[prev] {
				multiplier *= -0.8
			} else if boost, ok := a.intensifiers[prev]; ok {
				multiplier *= boost
			}
		}

		total += weight * multiplier
		hits++
	}

	if hits == 0 {
		return Result{Score: 0, Label: LabelNeutral}
	}

	score := clamp(total/float64(hits), -1, 1)
	result := Result{
		Score: score,
		Label: labelFor(score),
		Hits:  hits,
	}

	metrics.SentimentScored.WithLabelValues(result.Label).Inc()
	return result
}

// ScoreEvent populates the sentiment fields of a text-bearing event.
// Events without text are left unscored.
func (a *Analyzer) ScoreEvent(event *models.EngagementEvent) {
	if event.Text == "" || event.SentimentScore != nil {
		return
	}
	result := a.Analyze(event.Text)
	score := result.Score
	event.SentimentScore = &score
	event.SentimentLabel = result.Label
}

// ScoreEvents populates sentiment fields for a batch.
func (a *Analyzer) ScoreEvents(events []*models.EngagementEvent) {
	for _, event := range events {
		a.ScoreEvent(event)
	}
}

// labelFor maps a score to its label.
func labelFor(score float64) string {
	switch {
	case score >= positiveThreshold:
		return LabelPositive
	case score <= negativeThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// tokenize lowercases and splits text on non-letter boundaries,
// keeping apostrophes so contractions like "can't" survive.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}
