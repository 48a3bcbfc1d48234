// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package segment

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/crowdpulse/crowdpulse/internal/models"
)

// Bounds on an acceptable LLM clustering.
const (
	minLLMSegments = 2
	maxLLMSegments = 10

	maxRecommendationsPerSegment = 5
)

const clusterSystemPrompt = `You are an audience analyst for a social media management platform.
You will receive per-member engagement rollups for one brand's audience.
Cluster the members into between 2 and 10 named segments and reply with a single JSON object:

{
  "segments": [
    {
      "name": "short_snake_case_name",
      "description": "one sentence describing the segment",
      "members": ["@handle", ...],
      "recommendations": ["actionable engagement tip", ...]
    }
  ]
}

Rules:
- Every member handle you use MUST come from the provided list.
- Assign each member to at most one segment.
- Give each segment 1 to 5 concrete recommendations.
- Reply with JSON only.`

// llmSegmentReply is the schema the model must produce.
type llmSegmentReply struct {
	Segments []llmSegment `json:"segments"`
}

type llmSegment struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Members         []string `json:"members"`
	Recommendations []string `json:"recommendations"`
}

// buildClusterPrompts renders the system and user prompts for clustering.
// Profiles are serialized as compact JSON lines so the model sees exact
// handles and numbers.
func buildClusterPrompts(profiles []*models.AudienceProfile) (string, string) {
	var sb strings.Builder
	sb.WriteString("Audience rollups, one JSON object per line:\n")

	for _, p := range profiles {
		line, err := json.Marshal(map[string]interface{}{
			"handle":           p.MemberHandle,
			"followers":        p.Followers,
			"verified":         p.Verified,
			"total_events":     p.TotalEvents,
			"likes":            p.Likes,
			"shares":           p.Shares,
			"comments":         p.Comments,
			"mentions":         p.Mentions,
			"active_days":      p.ActiveDays,
			"days_since_seen":  p.DaysSinceSeen,
			"avg_sentiment":    p.AvgSentiment,
			"negative_ratio":   p.NegativeRatio,
			"engagement_score": p.EngagementScore,
			"top_platform":     p.TopPlatform,
			"top_topic":        p.TopTopic,
		})
		if err != nil {
			continue
		}
		sb.Write(line)
		sb.WriteByte('\n')
	}

	return clusterSystemPrompt, sb.String()
}

// parseSegmentReply validates and converts the model's JSON reply.
// A reply is rejected when it is not valid JSON, has an out-of-bounds
// segment count, names members that were never submitted, or assigns a
// member to more than one segment.
func parseSegmentReply(reply string, profiles []*models.AudienceProfile) ([]Segment, error) {
	var parsed llmSegmentReply
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		return nil, fmt.Errorf("reply is not valid JSON: %w", err)
	}

	if len(parsed.Segments) < minLLMSegments || len(parsed.Segments) > maxLLMSegments {
		return nil, fmt.Errorf("segment count %d outside [%d, %d]", len(parsed.Segments), minLLMSegments, maxLLMSegments)
	}

	known := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		known[p.MemberHandle] = true
	}

	assigned := make(map[string]string, len(profiles))
	segments := make([]Segment, 0, len(parsed.Segments))

	for _, s := range parsed.Segments {
		if s.Name == "" {
			return nil, fmt.Errorf("segment with empty name")
		}
		if len(s.Members) == 0 {
			return nil, fmt.Errorf("segment %q has no members", s.Name)
		}

		for _, handle := range s.Members {
			if !known[handle] {
				return nil, fmt.Errorf("segment %q references unknown member %q", s.Name, handle)
			}
			if prev, dup := assigned[handle]; dup {
				return nil, fmt.Errorf("member %q assigned to both %q and %q", handle, prev, s.Name)
			}
			assigned[handle] = s.Name
		}

		recs := s.Recommendations
		if len(recs) > maxRecommendationsPerSegment {
			recs = recs[:maxRecommendationsPerSegment]
		}

		segments = append(segments, Segment{
			Name:            s.Name,
			Description:     s.Description,
			Members:         s.Members,
			Recommendations: recs,
		})
	}

	return segments, nil
}
