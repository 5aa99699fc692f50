package ranking

import (
	"sort"
	"time"
)

// Ranker scores and orders candidate posts for a viewer. It holds the
// calibrated weights and a clock; a single Ranker is safe for concurrent
// use because Rank reads shared state and never writes it.
type Ranker struct {
	weights *Weights
	now     func() time.Time
}

// NewRanker creates a Ranker with the given weights. Passing nil uses
// the default calibration.
func NewRanker(weights *Weights) *Ranker {
	if weights == nil {
		weights = DefaultWeights()
	}
	return &Ranker{
		weights: weights,
		now:     time.Now,
	}
}

// NewRankerWithClock creates a Ranker with an injectable clock for
// deterministic time decay in tests.
func NewRankerWithClock(weights *Weights, now func() time.Time) *Ranker {
	r := NewRanker(weights)
	if now != nil {
		r.now = now
	}
	return r
}

// Rank produces the viewer's personalized ordering of the candidate posts.
//
// Pipeline:
//  1. Validate every candidate; a malformed post aborts the whole call
//     with an error identifying its position and author. No partial
//     result is returned.
//  2. Count author appearances across the FULL candidate set, followed
//     or not. An author's total activity dampens their retained posts.
//  3. Keep only posts whose author is in viewer.Follows.
//  4. Score each retained post and attach the result to a copy.
//  5. Stable sort descending by final score; equal scores keep their
//     input order.
//
// Empty posts or an empty follow set yield an empty slice, not an error.
// The input slice and its posts are never modified.
func (r *Ranker) Rank(posts []Post, viewer Viewer) ([]ScoredPost, error) {
	for i := range posts {
		if err := posts[i].validate(i); err != nil {
			return nil, err
		}
	}

	if len(posts) == 0 || len(viewer.Follows) == 0 {
		return []ScoredPost{}, nil
	}

	// Author frequency over the full candidate set, not the filtered subset.
	authorFrequency := make(map[string]int, len(posts))
	for i := range posts {
		authorFrequency[posts[i].Author]++
	}

	now := r.now()
	scored := make([]ScoredPost, 0, len(posts))
	for i := range posts {
		p := posts[i]
		if !viewer.Follows[p.Author] {
			continue
		}
		scored = append(scored, ScoredPost{
			Post:       p,
			FinalScore: r.score(p, viewer, authorFrequency[p.Author], now),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})

	return scored, nil
}

// score computes the final score for a single post: the additive bonus
// bundle dampened by time decay and the diversity penalty.
func (r *Ranker) score(p Post, viewer Viewer, frequency int, now time.Time) float64 {
	bundle := EngagementScore(p, r.weights) +
		ViralityBonus(p, r.weights) +
		HashtagBonus(p, viewer.TrendingHashtags, r.weights) +
		InteractionBonus(p.Author, viewer.InteractionHistory, r.weights) +
		FormatBonus(p.ContentFormat, viewer.FormatPreferences, r.weights)

	return bundle *
		TimeDecay(p.CreatedAt, now, r.weights) *
		DiversityPenalty(frequency, r.weights)
}
