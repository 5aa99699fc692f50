package ranking

import (
	"math"
	"testing"
	"time"
)

// TestEngagementScore tests the weighted engagement bundle.
func TestEngagementScore(t *testing.T) {
	tests := []struct {
		name     string
		post     Post
		expected float64
	}{
		{
			name:     "no engagement",
			post:     Post{},
			expected: 0,
		},
		{
			name:     "likes only",
			post:     Post{Likes: 10},
			expected: 18, // 10 * 1.8
		},
		{
			name:     "reposts only",
			post:     Post{Reposts: 5},
			expected: 7, // 5 * 1.4
		},
		{
			name:     "comments only",
			post:     Post{Comments: 4},
			expected: 12, // 4 * 3
		},
		{
			name:     "quotes only",
			post:     Post{Quotes: 2},
			expected: 9, // 2 * 4.5
		},
		{
			name:     "all signals combined",
			post:     Post{Likes: 10, Reposts: 5, Comments: 2, Quotes: 3},
			expected: 44.5, // 18 + 7 + 6 + 13.5
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EngagementScore(tt.post, nil)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

// TestViralityBonus tests the engaged-followers boost.
func TestViralityBonus(t *testing.T) {
	tests := []struct {
		name     string
		engaged  int
		expected float64
	}{
		{name: "no network engagement", engaged: 0, expected: 0},
		{name: "two followers engaged", engaged: 2, expected: 4},
		{name: "many followers engaged", engaged: 50, expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ViralityBonus(Post{EngagedByFollowers: tt.engaged}, nil)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

// TestHashtagBonus tests trending hashtag matching.
func TestHashtagBonus(t *testing.T) {
	trending := Set("#AI", "#Bluesky")

	tests := []struct {
		name     string
		hashtags []string
		trending map[string]bool
		expected float64
	}{
		{
			name:     "no hashtags",
			hashtags: nil,
			trending: trending,
			expected: 0,
		},
		{
			name:     "no trending set",
			hashtags: []string{"#AI"},
			trending: nil,
			expected: 0,
		},
		{
			name:     "no overlap",
			hashtags: []string{"#Design", "#Art"},
			trending: trending,
			expected: 0,
		},
		{
			name:     "single match",
			hashtags: []string{"#AI", "#Design"},
			trending: trending,
			expected: 3,
		},
		{
			name:     "two matches",
			hashtags: []string{"#AI", "#Bluesky"},
			trending: trending,
			expected: 6,
		},
		{
			name:     "duplicate hashtags count once",
			hashtags: []string{"#AI", "#AI", "#AI"},
			trending: trending,
			expected: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HashtagBonus(Post{Hashtags: tt.hashtags}, tt.trending, nil)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

// TestInteractionBonus tests the author affinity boost and its default.
func TestInteractionBonus(t *testing.T) {
	history := map[string]int{"did:example:alice": 10}

	tests := []struct {
		name     string
		author   string
		expected float64
	}{
		{name: "known author", author: "did:example:alice", expected: 20},
		{name: "unknown author defaults to zero", author: "did:example:bob", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := InteractionBonus(tt.author, history, nil)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

// TestFormatBonus tests content format preference and its default of 1.
func TestFormatBonus(t *testing.T) {
	preferences := map[string]float64{"text": 1, "video": 3}

	tests := []struct {
		name     string
		format   string
		expected float64
	}{
		{name: "neutral preference", format: "text", expected: 2},
		{name: "strong preference", format: "video", expected: 6},
		{name: "unknown format defaults to weight 1", format: "audio", expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatBonus(tt.format, preferences, nil)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

// TestTimeDecay tests the power-law recency falloff.
func TestTimeDecay(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		createdAt   time.Time
		expectedMin float64
		expectedMax float64
	}{
		{
			name:        "brand new post",
			createdAt:   now,
			expectedMin: 0.99,
			expectedMax: 1.0,
		},
		{
			name:        "two hours old",
			createdAt:   now.Add(-2 * time.Hour),
			expectedMin: 0.30,
			expectedMax: 0.31, // 1 / (1 + 2^1.2) ~= 0.3033
		},
		{
			name:        "one day old",
			createdAt:   now.Add(-24 * time.Hour),
			expectedMin: 0.02,
			expectedMax: 0.03,
		},
		{
			name:        "future timestamp clamps to no decay",
			createdAt:   now.Add(3 * time.Hour),
			expectedMin: 0.99,
			expectedMax: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TimeDecay(tt.createdAt, now, nil)
			if result < tt.expectedMin || result > tt.expectedMax {
				t.Errorf("expected decay in [%f, %f], got %f", tt.expectedMin, tt.expectedMax, result)
			}
		})
	}
}

// TestTimeDecay_Monotonic verifies decay strictly decreases with age.
func TestTimeDecay_Monotonic(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	prev := TimeDecay(now, now, nil)
	for hours := 1; hours <= 72; hours++ {
		cur := TimeDecay(now.Add(-time.Duration(hours)*time.Hour), now, nil)
		if cur >= prev {
			t.Fatalf("decay not strictly decreasing at %d hours: %f >= %f", hours, cur, prev)
		}
		prev = cur
	}
}

// TestDiversityPenalty tests the repeated-author dampener and its floor.
func TestDiversityPenalty(t *testing.T) {
	tests := []struct {
		name      string
		frequency int
		expected  float64
	}{
		{name: "single appearance is unpenalized", frequency: 1, expected: 1.0},
		{name: "zero frequency treated as single", frequency: 0, expected: 1.0},
		{name: "two appearances", frequency: 2, expected: 0.98},
		{name: "four appearances", frequency: 4, expected: 0.94},
		{name: "six appearances hits the floor", frequency: 6, expected: 0.9},
		{name: "floor holds for prolific authors", frequency: 100, expected: 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DiversityPenalty(tt.frequency, nil)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

// TestDiversityPenalty_NonIncreasing verifies the penalty never grows with
// frequency.
func TestDiversityPenalty_NonIncreasing(t *testing.T) {
	prev := DiversityPenalty(1, nil)
	for freq := 2; freq <= 20; freq++ {
		cur := DiversityPenalty(freq, nil)
		if cur > prev {
			t.Fatalf("penalty increased at frequency %d: %f > %f", freq, cur, prev)
		}
		prev = cur
	}
}
