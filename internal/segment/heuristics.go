// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package segment

import (
	"sort"

	"github.com/crowdpulse/crowdpulse/internal/models"
)

// Heuristic thresholds. Tuned for 90-day rollups of brand audiences.
const (
	dormantDays = 30

	advocateSentiment = 0.3
	advocateMinEvents = 5

	detractorSentiment     = -0.2
	detractorNegativeRatio = 0.4

	highlyEngagedScore = 40.0
)

// segmentDescriptions documents what each heuristic segment means.
var segmentDescriptions = map[string]string{
	SegmentAdvocates:     "Frequently engaged members with strongly positive sentiment who amplify the brand.",
	SegmentAtRisk:        "Members whose recent interactions skew negative and who may escalate publicly.",
	SegmentHighlyEngaged: "High-activity members without a strong sentiment lean.",
	SegmentCasual:        "Occasional interactors with neutral or unscored sentiment.",
	SegmentDormant:       "Members with no interaction in the last 30 days.",
}

// segmentRecommendations are the static playbooks attached to heuristic
// segments. The LLM path generates bespoke ones.
var segmentRecommendations = map[string][]string{
	SegmentAdvocates: {
		"Feature their content or testimonials in brand posts.",
		"Offer early access to launches and exclusive updates.",
		"Reply personally to keep amplification going.",
	},
	SegmentAtRisk: {
		"Route their complaints to support with priority handling.",
		"Respond publicly within hours, then move resolution to private channels.",
		"Review recent product or policy changes they reference.",
	},
	SegmentHighlyEngaged: {
		"Invite them into polls, AMAs and community threads.",
		"Test new content formats on this group first.",
	},
	SegmentCasual: {
		"Post during their active hours to lift visibility.",
		"Use strong hooks and calls to action to deepen engagement.",
	},
	SegmentDormant: {
		"Run a re-engagement campaign with a concrete incentive.",
		"Retarget with the content types they engaged with before going quiet.",
	},
}

// Classify assigns every profile to exactly one heuristic segment.
// Classification order matters: dormancy wins over everything, then
// detraction risk, then advocacy. Output is deterministic; segments are
// emitted in a fixed order and members sorted by engagement score.
func Classify(profiles []*models.AudienceProfile) []Segment {
	buckets := map[string][]*models.AudienceProfile{}

	for _, p := range profiles {
		name := classifyOne(p)
		buckets[name] = append(buckets[name], p)
	}

	order := []string{SegmentAdvocates, SegmentAtRisk, SegmentHighlyEngaged, SegmentCasual, SegmentDormant}
	segments := make([]Segment, 0, len(order))

	for _, name := range order {
		members := buckets[name]
		if len(members) == 0 {
			continue
		}

		sort.Slice(members, func(i, j int) bool {
			if members[i].EngagementScore != members[j].EngagementScore {
				return members[i].EngagementScore > members[j].EngagementScore
			}
			return members[i].MemberHandle < members[j].MemberHandle
		})

		handles := make([]string, len(members))
		for i, m := range members {
			handles[i] = m.MemberHandle
		}

		segments = append(segments, Segment{
			Name:            name,
			Description:     segmentDescriptions[name],
			Members:         handles,
			Recommendations: segmentRecommendations[name],
		})
	}

	return segments
}

// classifyOne maps a single profile to its segment name.
func classifyOne(p *models.AudienceProfile) string {
	if p.DaysSinceSeen >= dormantDays {
		return SegmentDormant
	}

	scored := p.ScoredEvents > 0
	if scored && (p.AvgSentiment <= detractorSentiment || p.NegativeRatio >= detractorNegativeRatio) {
		return SegmentAtRisk
	}
	if scored && p.AvgSentiment >= advocateSentiment && p.TotalEvents >= advocateMinEvents {
		return SegmentAdvocates
	}
	if p.EngagementScore >= highlyEngagedScore {
		return SegmentHighlyEngaged
	}
	return SegmentCasual
}
