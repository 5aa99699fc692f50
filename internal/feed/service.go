package feed

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/skyfeed/internal/ranking"
	"github.com/onnwee/skyfeed/internal/tracing"
)

// PostCollection is the AT Protocol collection NSID for feed posts, used
// when building at:// URIs.
const PostCollection = "app.bsky.feed.post"

// SkeletonItem is one entry of a feed skeleton response: a bare post URI
// in rank order. The AppView hydrates the rest.
type SkeletonItem struct {
	Post string `json:"post"`
}

// Service ranks candidate posts from a source and exposes the result as
// a feed skeleton.
type Service struct {
	ranker  *ranking.Ranker
	source  Source
	metrics *Metrics
}

// NewService creates a feed Service. metrics may be nil to disable
// instrumentation (useful in tests).
func NewService(ranker *ranking.Ranker, source Source, metrics *Metrics) *Service {
	return &Service{
		ranker:  ranker,
		source:  source,
		metrics: metrics,
	}
}

// Skeleton produces the ranked feed skeleton for the source's viewer.
// limit caps the number of returned items; limit <= 0 means no cap.
// The returned items preserve rank order.
func (s *Service) Skeleton(ctx context.Context, limit int) ([]SkeletonItem, error) {
	posts, err := s.source.Posts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate posts: %w", err)
	}
	viewer, err := s.source.Viewer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer context: %w", err)
	}

	ctx, endSpan := tracing.StartSpan(ctx, "rank_posts")
	tracing.SetAttributes(ctx, attribute.Int("feed.candidates", len(posts)))

	start := time.Now()
	scored, err := s.ranker.Rank(posts, viewer)
	if err != nil {
		endSpan(err)
		return nil, fmt.Errorf("ranking failed: %w", err)
	}
	tracing.SetAttributes(ctx, attribute.Int("feed.ranked", len(scored)))
	endSpan(nil)

	if s.metrics != nil {
		s.metrics.ObserveRank(time.Since(start).Seconds(), len(scored), len(posts)-len(scored))
	}

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	items := make([]SkeletonItem, len(scored))
	for i, sp := range scored {
		items[i] = SkeletonItem{Post: PostURI(sp.Post)}
	}
	return items, nil
}

// PostURI builds the at:// URI for a post: at://<did>/app.bsky.feed.post/<rkey>.
func PostURI(p ranking.Post) string {
	return fmt.Sprintf("at://%s/%s/%s", p.Author, PostCollection, p.RecordKey)
}
