package feed

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics names as constants for consistency.
const (
	MetricPostsRanked  = "feed_posts_ranked_total"
	MetricPostsDropped = "feed_posts_dropped_total"
	MetricRankDuration = "feed_rank_duration_seconds"
)

// Metrics contains Prometheus metrics for the feed service.
// All operations are thread-safe.
type Metrics struct {
	postsRanked  prometheus.Counter
	postsDropped prometheus.Counter
	rankDuration prometheus.Histogram
}

// NewMetrics creates and returns a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		postsRanked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricPostsRanked,
			Help: "Total number of posts that passed the follow filter and were scored",
		}),
		postsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricPostsDropped,
			Help: "Total number of candidate posts dropped by the follow filter",
		}),
		rankDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricRankDuration,
			Help:    "Histogram of ranking pass duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0},
		}),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.postsRanked,
		m.postsDropped,
		m.rankDuration,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRank records the outcome of one ranking pass.
func (m *Metrics) ObserveRank(durationSeconds float64, ranked, dropped int) {
	m.rankDuration.Observe(durationSeconds)
	m.postsRanked.Add(float64(ranked))
	m.postsDropped.Add(float64(dropped))
}
