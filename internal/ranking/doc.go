// Package ranking implements the personalized feed scoring pipeline:
// filter by follow set, score each post, stable sort by final score.
//
// Basic Usage:
//
//	// Load calibration (typically at startup)
//	weights, err := ranking.LoadCalibration("configs/ranking.calibration.json")
//	if err != nil {
//		log.Warn("using default weights", "error", err)
//	}
//
//	ranker := ranking.NewRanker(weights)
//	scored, err := ranker.Rank(posts, ranking.Viewer{
//		Follows:            ranking.Set("did:example:alice"),
//		InteractionHistory: map[string]int{"did:example:alice": 10},
//		TrendingHashtags:   ranking.Set("#AI", "#Bluesky"),
//		FormatPreferences:  map[string]float64{"text": 1, "video": 3},
//	})
//
// The result is ordered by descending final score. Posts whose author is
// not in the viewer's follow set are dropped before scoring. Rank never
// mutates its input; scores are attached to returned copies, so a single
// Ranker is safe for concurrent use across requests.
//
// Scoring:
//
// The final score is an additive bundle of engagement, virality, hashtag,
// interaction, and format bonuses, dampened by two multiplicative factors:
// a power-law time decay and a per-author diversity penalty. Each component
// is exported individually so callers can inspect or recombine them.
//
// Calibration:
//
// The calibration system allows deploy-time tuning of scoring weights via
// JSON configuration files loaded at startup. Partial files override only
// the weights they name; everything else keeps its default. Picking up new
// calibration requires a restart.
package ranking
