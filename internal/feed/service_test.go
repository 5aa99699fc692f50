package feed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/onnwee/skyfeed/internal/ranking"
)

// failingSource forces errors on either call.
type failingSource struct {
	postsErr  error
	viewerErr error
}

func (f *failingSource) Posts(_ context.Context) ([]ranking.Post, error) {
	if f.postsErr != nil {
		return nil, f.postsErr
	}
	return nil, nil
}

func (f *failingSource) Viewer(_ context.Context) (ranking.Viewer, error) {
	return ranking.Viewer{}, f.viewerErr
}

// TestSkeleton_SampleData ranks the demo dataset end to end.
func TestSkeleton_SampleData(t *testing.T) {
	svc := NewService(ranking.NewRanker(nil), SampleSource(), nil)

	items, err := svc.Skeleton(context.Background(), 0)
	if err != nil {
		t.Fatalf("Skeleton failed: %v", err)
	}

	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}
	for _, item := range items {
		if !strings.HasPrefix(item.Post, "at://did:example:") {
			t.Errorf("expected at:// URI, got %q", item.Post)
		}
		if !strings.Contains(item.Post, "/"+PostCollection+"/") {
			t.Errorf("expected %s collection in URI, got %q", PostCollection, item.Post)
		}
	}
}

// TestSkeleton_Limit verifies the limit caps results in rank order.
func TestSkeleton_Limit(t *testing.T) {
	svc := NewService(ranking.NewRanker(nil), SampleSource(), nil)

	all, err := svc.Skeleton(context.Background(), 0)
	if err != nil {
		t.Fatalf("Skeleton failed: %v", err)
	}
	limited, err := svc.Skeleton(context.Background(), 2)
	if err != nil {
		t.Fatalf("Skeleton failed: %v", err)
	}

	if len(limited) != 2 {
		t.Fatalf("expected 2 items, got %d", len(limited))
	}
	for i := range limited {
		if limited[i] != all[i] {
			t.Errorf("limited item %d diverges from full ranking: %v vs %v", i, limited[i], all[i])
		}
	}
}

// TestSkeleton_SourceErrors verifies source failures surface as errors.
func TestSkeleton_SourceErrors(t *testing.T) {
	svc := NewService(ranking.NewRanker(nil), &failingSource{postsErr: errors.New("boom")}, nil)
	if _, err := svc.Skeleton(context.Background(), 0); err == nil {
		t.Error("expected error when posts load fails")
	}

	svc = NewService(ranking.NewRanker(nil), &failingSource{viewerErr: errors.New("boom")}, nil)
	if _, err := svc.Skeleton(context.Background(), 0); err == nil {
		t.Error("expected error when viewer load fails")
	}
}

// TestSkeleton_RankErrorSurfaces verifies a malformed candidate aborts
// the skeleton with no partial result.
func TestSkeleton_RankErrorSurfaces(t *testing.T) {
	bad := ranking.Post{Author: "did:example:alice"} // missing created_at
	source := NewStaticSource([]ranking.Post{bad}, ranking.Viewer{
		Follows: ranking.Set("did:example:alice"),
	})
	svc := NewService(ranking.NewRanker(nil), source, nil)

	items, err := svc.Skeleton(context.Background(), 0)
	if err == nil {
		t.Fatal("expected ranking error")
	}
	if items != nil {
		t.Error("expected no partial result alongside error")
	}

	var mfe *ranking.MissingFieldError
	if !errors.As(err, &mfe) {
		t.Errorf("expected wrapped *ranking.MissingFieldError, got %v", err)
	}
}

// TestSkeleton_Metrics verifies ranked and dropped counts are recorded.
func TestSkeleton_Metrics(t *testing.T) {
	now := time.Now()
	posts := []ranking.Post{
		{Author: "did:example:alice", ContentFormat: "text", CreatedAt: now, RecordKey: "a"},
		{Author: "did:example:stranger", ContentFormat: "text", CreatedAt: now, RecordKey: "b"},
	}
	source := NewStaticSource(posts, ranking.Viewer{Follows: ranking.Set("did:example:alice")})

	metrics := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatalf("failed to register metrics: %v", err)
	}

	svc := NewService(ranking.NewRanker(nil), source, metrics)
	if _, err := svc.Skeleton(context.Background(), 0); err != nil {
		t.Fatalf("Skeleton failed: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	got := make(map[string]float64)
	for _, fam := range families {
		for _, m := range fam.GetMetric() {
			if m.GetCounter() != nil {
				got[fam.GetName()] = m.GetCounter().GetValue()
			}
		}
	}

	if got[MetricPostsRanked] != 1 {
		t.Errorf("expected 1 ranked post, got %f", got[MetricPostsRanked])
	}
	if got[MetricPostsDropped] != 1 {
		t.Errorf("expected 1 dropped post, got %f", got[MetricPostsDropped])
	}
}

// TestPostURI verifies the at:// URI layout.
func TestPostURI(t *testing.T) {
	p := ranking.Post{Author: "did:example:alice", RecordKey: "3kabc"}
	want := "at://did:example:alice/app.bsky.feed.post/3kabc"
	if got := PostURI(p); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

// TestStaticSource_CopiesPosts verifies callers cannot mutate the
// source's backing data through the returned slice.
func TestStaticSource_CopiesPosts(t *testing.T) {
	source := SampleSource()
	posts, err := source.Posts(context.Background())
	if err != nil {
		t.Fatalf("Posts failed: %v", err)
	}
	posts[0].Author = "did:example:mallory"

	again, err := source.Posts(context.Background())
	if err != nil {
		t.Fatalf("Posts failed: %v", err)
	}
	if again[0].Author == "did:example:mallory" {
		t.Error("mutation of returned slice leaked into source")
	}
}
