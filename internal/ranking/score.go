package ranking

import (
	"math"
	"time"
)

// EngagementScore computes the weighted engagement bundle for a post.
// Likes are lightweight engagements, reposts spread content, comments
// drive discussion, and quotes represent high-effort engagement, so the
// default weights climb in that order (1.8, 1.4, 3, 4.5).
func EngagementScore(p Post, w *Weights) float64 {
	if w == nil {
		w = DefaultWeights()
	}
	return float64(p.Likes)*w.Engagement.Likes +
		float64(p.Reposts)*w.Engagement.Reposts +
		float64(p.Comments)*w.Engagement.Comments +
		float64(p.Quotes)*w.Engagement.Quotes
}

// ViralityBonus rewards engagement coming specifically from the viewer's
// own network. Default weight: 2 per engaged follower.
func ViralityBonus(p Post, w *Weights) float64 {
	if w == nil {
		w = DefaultWeights()
	}
	return float64(p.EngagedByFollowers) * w.Bonus.Virality
}

// HashtagBonus rewards posts tagged with currently trending hashtags.
// Each distinct hashtag in the intersection contributes the hashtag
// weight (default 3). Duplicate hashtags on a post count once.
func HashtagBonus(p Post, trending map[string]bool, w *Weights) float64 {
	if w == nil {
		w = DefaultWeights()
	}
	if len(trending) == 0 || len(p.Hashtags) == 0 {
		return 0
	}
	seen := make(map[string]bool, len(p.Hashtags))
	matches := 0
	for _, tag := range p.Hashtags {
		if trending[tag] && !seen[tag] {
			seen[tag] = true
			matches++
		}
	}
	return float64(matches) * w.Bonus.Hashtag
}

// InteractionBonus boosts authors the viewer interacts with frequently.
// Authors absent from the history default to DefaultInteractionCount.
func InteractionBonus(author string, history map[string]int, w *Weights) float64 {
	if w == nil {
		w = DefaultWeights()
	}
	count, ok := history[author]
	if !ok {
		count = DefaultInteractionCount
	}
	return float64(count) * w.Bonus.Interaction
}

// FormatBonus boosts posts in the viewer's preferred content formats.
// Formats absent from the preferences default to DefaultFormatWeight.
func FormatBonus(format string, preferences map[string]float64, w *Weights) float64 {
	if w == nil {
		w = DefaultWeights()
	}
	weight, ok := preferences[format]
	if !ok {
		weight = DefaultFormatWeight
	}
	return weight * w.Bonus.Format
}

// TimeDecay computes the recency dampener for a post created at createdAt,
// evaluated at now. Formula: 1 / (1 + hours^exponent) with the default
// exponent 1.2, a slightly super-linear falloff that favors freshness.
//
// Hours since post is clamped to zero before exponentiation, so posts with
// future timestamps decay by exactly 1 (no boost, no domain error from a
// fractional power of a negative base).
func TimeDecay(createdAt, now time.Time, w *Weights) float64 {
	if w == nil {
		w = DefaultWeights()
	}
	hours := now.Sub(createdAt).Hours()
	if hours < 0 {
		hours = 0
	}
	return 1 / (1 + math.Pow(hours, w.Decay.Exponent))
}

// DiversityPenalty dampens authors who appear frequently in the candidate
// set so no single author dominates the feed. The penalty is 2% per post
// beyond the author's first (default step 0.02), floored at 0.9. A
// single-appearance author is not penalized.
func DiversityPenalty(frequency int, w *Weights) float64 {
	if w == nil {
		w = DefaultWeights()
	}
	if frequency < 1 {
		frequency = 1
	}
	penalty := 1 - float64(frequency-1)*w.Diversity.Step
	return math.Max(penalty, w.Diversity.Floor)
}
