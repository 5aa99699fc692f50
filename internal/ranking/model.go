package ranking

import (
	"fmt"
	"time"
)

// Default lookup values for viewer context maps. A viewer who has never
// interacted with an author contributes no interaction bonus; an
// unlisted content format carries a neutral weight of 1.
const (
	DefaultInteractionCount = 0
	DefaultFormatWeight     = 1.0
)

// Post is a candidate post supplied by the caller. All fields except
// Hashtags and RecordKey are required; Rank rejects posts that are
// missing any of them.
type Post struct {
	Author             string    `json:"author"`               // Author DID
	Likes              int       `json:"likes"`
	Reposts            int       `json:"reposts"`
	Comments           int       `json:"comments"`
	Quotes             int       `json:"quotes"`
	Hashtags           []string  `json:"hashtags,omitempty"`
	ContentFormat      string    `json:"content_format"`       // e.g. "text", "image", "video"
	EngagedByFollowers int       `json:"engaged_by_followers"` // Engagement count from the viewer's own network
	CreatedAt          time.Time `json:"created_at"`

	// RecordKey is the AT Protocol record key used to build the post's
	// at:// URI. It is carried through ranking untouched.
	RecordKey string `json:"record_key,omitempty"`
}

// Viewer holds the per-request viewer context the ranker scores against.
type Viewer struct {
	// Follows is the set of author DIDs the viewer follows. Posts by
	// anyone else are dropped before scoring.
	Follows map[string]bool

	// InteractionHistory maps author DID to the viewer's historical
	// interaction count. Missing authors default to DefaultInteractionCount.
	InteractionHistory map[string]int

	// TrendingHashtags is the set of hashtags currently trending.
	TrendingHashtags map[string]bool

	// FormatPreferences maps content format to a preference weight.
	// Missing formats default to DefaultFormatWeight.
	FormatPreferences map[string]float64
}

// ScoredPost is a post with its computed final score attached. Rank
// returns copies; the caller's posts are never modified.
type ScoredPost struct {
	Post
	FinalScore float64 `json:"final_score"`
}

// Set builds a string set from its arguments.
func Set(values ...string) map[string]bool {
	s := make(map[string]bool, len(values))
	for _, v := range values {
		s[v] = true
	}
	return s
}

// MissingFieldError reports a post that lacks a required attribute.
// It identifies the offending post by input position and author so the
// caller can locate it; no partial ranking result accompanies it.
type MissingFieldError struct {
	Index  int    // Position of the post in the input slice
	Author string // Author DID, empty when the author field itself is missing
	Field  string // Name of the missing field
}

// Error implements the error interface.
func (e *MissingFieldError) Error() string {
	if e.Author == "" {
		return fmt.Sprintf("post %d: missing required field %q", e.Index, e.Field)
	}
	return fmt.Sprintf("post %d (author %q): missing required field %q", e.Index, e.Author, e.Field)
}

// validate checks that a post carries every required attribute.
// Returns a *MissingFieldError identifying the first missing field.
func (p *Post) validate(index int) error {
	if p.Author == "" {
		return &MissingFieldError{Index: index, Field: "author"}
	}
	if p.CreatedAt.IsZero() {
		return &MissingFieldError{Index: index, Author: p.Author, Field: "created_at"}
	}
	if p.ContentFormat == "" {
		return &MissingFieldError{Index: index, Author: p.Author, Field: "content_format"}
	}
	if p.Likes < 0 || p.Reposts < 0 || p.Comments < 0 || p.Quotes < 0 || p.EngagedByFollowers < 0 {
		return fmt.Errorf("post %d (author %q): engagement counts must be non-negative", index, p.Author)
	}
	return nil
}
