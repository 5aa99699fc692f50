// Package feed wires the ranking pipeline to the feed-generator surface:
// it pulls candidate posts and viewer context from a source, ranks them,
// and maps the result to AT Protocol post URIs.
package feed

import (
	"context"
	"time"

	"github.com/onnwee/skyfeed/internal/ranking"
)

// Source supplies the candidate posts and the viewer context for a
// ranking pass. Implementations must be safe for concurrent use.
type Source interface {
	// Posts returns the candidate posts to rank.
	Posts(ctx context.Context) ([]ranking.Post, error)

	// Viewer returns the viewer context to rank against.
	Viewer(ctx context.Context) (ranking.Viewer, error)
}

// StaticSource serves a fixed in-process dataset. It stands in for a
// real candidate pipeline (firehose indexing, AppView hydration) which
// is out of scope for this service.
type StaticSource struct {
	posts  []ranking.Post
	viewer ranking.Viewer
}

// NewStaticSource creates a source over the given fixed dataset.
func NewStaticSource(posts []ranking.Post, viewer ranking.Viewer) *StaticSource {
	return &StaticSource{posts: posts, viewer: viewer}
}

// Posts returns a copy of the fixed candidate set so callers can't
// mutate the source's backing data.
func (s *StaticSource) Posts(_ context.Context) ([]ranking.Post, error) {
	out := make([]ranking.Post, len(s.posts))
	copy(out, s.posts)
	return out, nil
}

// Viewer returns the fixed viewer context.
func (s *StaticSource) Viewer(_ context.Context) (ranking.Viewer, error) {
	return s.viewer, nil
}

// SampleSource returns a StaticSource populated with a small demo
// dataset: three followed authors with varying engagement, recency, and
// hashtag overlap.
func SampleSource() *StaticSource {
	now := time.Now()
	posts := []ranking.Post{
		{
			Author:             "did:example:user1",
			Likes:              10,
			Reposts:            5,
			Comments:           2,
			Quotes:             3,
			Hashtags:           []string{"#AI", "#Bluesky"},
			ContentFormat:      "text",
			EngagedByFollowers: 2,
			CreatedAt:          now.Add(-2 * time.Hour),
			RecordKey:          "3kpostuser1a",
		},
		{
			Author:             "did:example:user1",
			Likes:              5,
			Reposts:            2,
			Comments:           1,
			Quotes:             0,
			Hashtags:           []string{"#Design"},
			ContentFormat:      "image",
			EngagedByFollowers: 1,
			CreatedAt:          now.Add(-time.Hour),
			RecordKey:          "3kpostuser1b",
		},
		{
			Author:             "did:example:user2",
			Likes:              20,
			Reposts:            3,
			Comments:           10,
			Quotes:             1,
			Hashtags:           []string{"#Tech", "#AI"},
			ContentFormat:      "video",
			EngagedByFollowers: 5,
			CreatedAt:          now.Add(-30 * time.Minute),
			RecordKey:          "3kpostuser2a",
		},
		{
			Author:             "did:example:user3",
			Likes:              15,
			Reposts:            7,
			Comments:           5,
			Quotes:             2,
			Hashtags:           []string{"#AI", "#Future"},
			ContentFormat:      "text",
			EngagedByFollowers: 3,
			CreatedAt:          now.Add(-5 * time.Minute),
			RecordKey:          "3kpostuser3a",
		},
	}
	viewer := ranking.Viewer{
		Follows: ranking.Set("did:example:user1", "did:example:user2", "did:example:user3"),
		InteractionHistory: map[string]int{
			"did:example:user1": 10,
			"did:example:user2": 5,
			"did:example:user3": 2,
		},
		TrendingHashtags: ranking.Set("#AI", "#Bluesky"),
		FormatPreferences: map[string]float64{
			"text":  1,
			"image": 2,
			"video": 3,
		},
	}
	return NewStaticSource(posts, viewer)
}
