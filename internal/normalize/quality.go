// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import "github.com/pdiddy/votewallet/pkg/types"

// Field weights for the completeness score. The weights are policy, not
// contract: callers should rely only on the score being monotone in the set
// of present fields and bounded by MaxQuality.
const (
	weightName        = 20
	weightCategory    = 15
	weightAddress     = 15
	weightCity        = 10
	weightState       = 10
	weightZip         = 10
	weightPhone       = 10
	weightWebsite     = 10
	weightRating      = 5
	weightReviewCount = 5

	MaxQuality = 100
)

// Quality returns the additive completeness score of c, capped at
// MaxQuality.
func Quality(c types.BusinessCandidate) int {
	score := 0
	add := func(present bool, w int) {
		if present {
			score += w
		}
	}
	add(c.Name != "", weightName)
	add(c.Category != "", weightCategory)
	add(c.Address != "", weightAddress)
	add(c.City != "", weightCity)
	add(c.State != "", weightState)
	add(c.Zip != "", weightZip)
	add(c.Phone != "", weightPhone)
	add(c.Website != "", weightWebsite)
	add(c.Rating != nil, weightRating)
	add(c.ReviewCount != nil, weightReviewCount)
	if score > MaxQuality {
		score = MaxQuality
	}
	return score
}
