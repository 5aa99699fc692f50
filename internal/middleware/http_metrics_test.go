package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// TestNormalizePath verifies known routes pass through and unknown paths
// collapse into one bucket.
func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/", "/"},
		{"/health", "/health"},
		{"/metrics", "/metrics"},
		{"/.well-known/did.json", "/.well-known/did.json"},
		{"/xrpc/app.bsky.feed.getFeedSkeleton", "/xrpc/app.bsky.feed.getFeedSkeleton"},
		{"/xrpc/app.bsky.feed.describeFeedGenerator", "/xrpc/app.bsky.feed.describeFeedGenerator"},
		{"/admin/login.php", "/other"},
		{"/xrpc/com.example.unknown", "/other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// TestHTTPMetrics_RecordsRequests verifies request counts are recorded
// with normalized path labels.
func TestHTTPMetrics_RecordsRequests(t *testing.T) {
	metrics := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatalf("failed to register metrics: %v", err)
	}

	handler := HTTPMetrics(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/xrpc/app.bsky.feed.getFeedSkeleton", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nonsense", nil))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	counts := make(map[string]float64)
	for _, fam := range families {
		if fam.GetName() != MetricHTTPRequestsTotal {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "path" {
					counts[label.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}

	if counts["/xrpc/app.bsky.feed.getFeedSkeleton"] != 1 {
		t.Errorf("expected 1 skeleton request, got %f", counts["/xrpc/app.bsky.feed.getFeedSkeleton"])
	}
	if counts["/other"] != 1 {
		t.Errorf("expected 1 /other request, got %f", counts["/other"])
	}
}

// TestHTTPMetrics_ExcludesHealthAndMetrics verifies self-noise endpoints
// are not recorded.
func TestHTTPMetrics_ExcludesHealthAndMetrics(t *testing.T) {
	metrics := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatalf("failed to register metrics: %v", err)
	}

	handler := HTTPMetrics(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() == MetricHTTPRequestsTotal && len(fam.GetMetric()) > 0 {
			t.Error("expected no recorded requests for excluded endpoints")
		}
	}
}
