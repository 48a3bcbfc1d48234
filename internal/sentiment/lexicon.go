// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package sentiment

// defaultLexicon weights common social-media sentiment terms between
// -1.0 and 1.0. It is intentionally small and skewed toward the
// vocabulary of brand mentions and customer feedback.
var defaultLexicon = map[string]float64{
	// Positive
	"love":        0.9,
	"loved":       0.9,
	"amazing":     0.9,
	"awesome":     0.9,
	"excellent":   0.9,
	"fantastic":   0.9,
	"incredible":  0.8,
	"perfect":     0.8,
	"best":        0.8,
	"great":       0.7,
	"wonderful":   0.7,
	"brilliant":   0.7,
	"impressive":  0.6,
	"good":        0.5,
	"happy":       0.5,
	"like":        0.4,
	"nice":        0.4,
	"enjoy":       0.4,
	"enjoyed":     0.4,
	"helpful":     0.4,
	"thanks":      0.3,
	"thank":       0.3,
	"recommend":   0.6,
	"recommended": 0.6,
	"fast":        0.3,
	"works":       0.3,
	"solid":       0.3,
	"smooth":      0.4,
	"win":         0.4,
	"excited":     0.6,
	"glad":        0.5,

	// Negative
	"hate":          -0.9,
	"hated":         -0.9,
	"terrible":      -0.9,
	"horrible":      -0.9,
	"awful":         -0.9,
	"worst":         -0.9,
	"disgusting":    -0.8,
	"scam":          -0.8,
	"fraud":         -0.8,
	"broken":        -0.7,
	"garbage":       -0.7,
	"useless":       -0.7,
	"disappointed":  -0.6,
	"disappointing": -0.6,
	"bad":           -0.5,
	"poor":          -0.5,
	"slow":          -0.4,
	"annoying":      -0.5,
	"angry":         -0.6,
	"furious":       -0.8,
	"refund":        -0.4,
	"cancel":        -0.3,
	"cancelled":     -0.3,
	"bug":           -0.4,
	"bugs":          -0.4,
	"crash":         -0.5,
	"crashes":       -0.5,
	"fail":          -0.6,
	"failed":        -0.6,
	"failure":       -0.6,
	"boycott":       -0.8,
	"avoid":         -0.5,
	"lies":          -0.6,
	"lying":         -0.6,
	"shame":         -0.5,
	"ridiculous":    -0.5,
	"unacceptable":  -0.7,
	"ignored":       -0.4,
	"waiting":       -0.2,
	"wait":          -0.1,
}

// defaultNegations flip the polarity of terms within reach.
var defaultNegations = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"neither": true,
	"nobody":  true,
	"nothing": true,
	"don't":   true,
	"doesn't": true,
	"didn't":  true,
	"can't":   true,
	"cannot":  true,
	"won't":   true,
	"isn't":   true,
	"aren't":  true,
	"wasn't":  true,
	"weren't": true,
	"without": true,
	"hardly":  true,
	"barely":  true,
}

// defaultIntensifiers amplify or dampen the following term.
var defaultIntensifiers = map[string]float64{
	"very":       1.3,
	"really":     1.3,
	"extremely":  1.5,
	"absolutely": 1.5,
	"totally":    1.4,
	"completely": 1.4,
	"incredibly": 1.5,
	"so":         1.2,
	"super":      1.3,
	"quite":      1.1,
	"somewhat":   0.7,
	"slightly":   0.6,
	"kinda":      0.7,
	"bit":        0.6,
}
