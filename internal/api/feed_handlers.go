package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/onnwee/skyfeed/internal/feed"
	"github.com/onnwee/skyfeed/internal/middleware"
)

// MaxFeedLimit caps the number of skeleton items returned per request,
// matching the app.bsky.feed.getFeedSkeleton lexicon.
const MaxFeedLimit = 100

// FeedSkeletonResponse is the getFeedSkeleton response body.
type FeedSkeletonResponse struct {
	Feed []feed.SkeletonItem `json:"feed"`
}

// DescribeFeedGeneratorResponse is the describeFeedGenerator response body.
type DescribeFeedGeneratorResponse struct {
	DID   string            `json:"did"`
	Feeds []FeedDescription `json:"feeds"`
}

// FeedDescription identifies one feed served by this generator.
type FeedDescription struct {
	URI string `json:"uri"`
}

// DIDDocument is the minimal did:web document served at /.well-known/did.json.
type DIDDocument struct {
	Context []string     `json:"@context"`
	ID      string       `json:"id"`
	Service []DIDService `json:"service"`
}

// DIDService declares a service endpoint inside a DID document.
type DIDService struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	ServiceEndpoint string `json:"serviceEndpoint"`
}

// FeedHandlers holds dependencies for the feed generator HTTP handlers.
type FeedHandlers struct {
	service    *feed.Service
	serviceDID string
	feedURI    string
	hostname   string
}

// NewFeedHandlers creates a new FeedHandlers instance.
func NewFeedHandlers(service *feed.Service, serviceDID, feedURI, hostname string) *FeedHandlers {
	return &FeedHandlers{
		service:    service,
		serviceDID: serviceDID,
		feedURI:    feedURI,
		hostname:   hostname,
	}
}

// GetFeedSkeleton handles GET /xrpc/app.bsky.feed.getFeedSkeleton.
// It ranks the candidate posts for the viewer and returns their URIs in
// rank order. The optional feed query parameter, when present, must name
// the feed this generator serves; the optional limit parameter must be a
// positive integer and is capped at MaxFeedLimit.
func (h *FeedHandlers) GetFeedSkeleton(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeMethodNotAllowed)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Only GET is supported")
		return
	}

	if requested := r.URL.Query().Get("feed"); requested != "" && requested != h.feedURI {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeUnknownFeed)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeUnknownFeed, "Unknown feed: "+requested)
		return
	}

	limit := MaxFeedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "limit must be a positive integer")
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	items, err := h.service.Skeleton(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to build feed skeleton", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to generate feed")
		return
	}

	// An empty feed serializes as [] rather than null.
	if items == nil {
		items = []feed.SkeletonItem{}
	}
	writeJSON(w, r.Context(), http.StatusOK, FeedSkeletonResponse{Feed: items})
}

// DescribeFeedGenerator handles GET /xrpc/app.bsky.feed.describeFeedGenerator.
func (h *FeedHandlers) DescribeFeedGenerator(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeMethodNotAllowed)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Only GET is supported")
		return
	}

	writeJSON(w, r.Context(), http.StatusOK, DescribeFeedGeneratorResponse{
		DID:   h.serviceDID,
		Feeds: []FeedDescription{{URI: h.feedURI}},
	})
}

// WellKnownDID handles GET /.well-known/did.json, serving the did:web
// document that lets the AppView resolve this generator.
func (h *FeedHandlers) WellKnownDID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeMethodNotAllowed)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Only GET is supported")
		return
	}

	writeJSON(w, r.Context(), http.StatusOK, DIDDocument{
		Context: []string{"https://www.w3.org/ns/did/v1"},
		ID:      h.serviceDID,
		Service: []DIDService{
			{
				ID:              "#bsky_fg",
				Type:            "BskyFeedGenerator",
				ServiceEndpoint: "https://" + h.hostname,
			},
		},
	})
}
