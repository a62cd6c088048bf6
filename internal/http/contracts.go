// Package http defines the JSON contracts of the REST API.
package http

import (
	"time"

	"github.com/EricBell/accessible-outings/internal/domain"
	"github.com/EricBell/accessible-outings/internal/score"
)

// ErrorResponse is the shape of every API error.
type ErrorResponse struct {
	Error     string    `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SearchParams echoes the resolved parameters of a venue search.
type SearchParams struct {
	ZipCode        string  `json:"zip_code"`
	Query          string  `json:"query,omitempty"`
	CategoryID     *int    `json:"category_id"`
	Radius         int     `json:"radius"`
	AccessibleOnly bool    `json:"accessible_only"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	LocationName   string  `json:"location_name"`
}

// SearchResponse is the venue search result payload.
type SearchResponse struct {
	Success      bool                `json:"success"`
	Venues       []score.RankedVenue `json:"venues"`
	TotalResults int                 `json:"total_results"`
	SearchParams SearchParams        `json:"search_params"`
}

// VenueDetail is a venue enriched with everything the detail view shows.
type VenueDetail struct {
	Venue                      domain.Venue        `json:"venue"`
	FullAddress                string              `json:"full_address"`
	Hours                      map[string]string   `json:"hours"`
	TodayHours                 string              `json:"today_hours"`
	OpenToday                  bool                `json:"open_today"`
	AccessibilitySummary       score.Summary       `json:"accessibility_summary"`
	AverageAccessibilityRating *float64            `json:"average_accessibility_rating"`
	Recommendations            []string            `json:"recommendations"`
	SimilarVenues              []score.RankedVenue `json:"similar_venues"`
	IsFavorited                bool                `json:"is_favorited"`
	UserReview                 *domain.UserReview  `json:"user_review"`
	RecentReviews              []domain.UserReview `json:"recent_reviews"`
}

// VenueDetailResponse wraps the venue detail payload.
type VenueDetailResponse struct {
	Success bool        `json:"success"`
	Venue   VenueDetail `json:"venue"`
}

// CategoryInsights aggregates accessibility data across a category.
type CategoryInsights struct {
	VenueCount              int            `json:"venue_count"`
	AccessibleCount         int            `json:"accessible_count"`
	AccessibilityPercentage float64        `json:"accessibility_percentage"`
	CommonFeatures          []FeatureCount `json:"common_features"`
}

// FeatureCount is one accessibility feature and how many venues have it.
type FeatureCount struct {
	Feature string `json:"feature"`
	Count   int    `json:"count"`
}

// CategoryInfo is a category with its insights.
type CategoryInfo struct {
	domain.VenueCategory
	Insights CategoryInsights `json:"insights"`
}

// CategoriesResponse lists all categories.
type CategoriesResponse struct {
	Success    bool           `json:"success"`
	Categories []CategoryInfo `json:"categories"`
}

// FavoritesResponse lists a user's favorites.
type FavoritesResponse struct {
	Success   bool                  `json:"success"`
	Favorites []domain.UserFavorite `json:"favorites"`
}

// FavoriteResponse wraps one favorite after an add.
type FavoriteResponse struct {
	Success  bool                `json:"success"`
	Message  string              `json:"message"`
	Favorite domain.UserFavorite `json:"favorite"`
}

// ReviewsResponse lists reviews.
type ReviewsResponse struct {
	Success bool                `json:"success"`
	Reviews []domain.UserReview `json:"reviews"`
}

// ReviewResponse wraps one review after a submit.
type ReviewResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Review  domain.UserReview `json:"review"`
}

// GeocodeResponse resolves a ZIP code.
type GeocodeResponse struct {
	Success      bool    `json:"success"`
	ZipCode      string  `json:"zip_code"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	LocationName string  `json:"location_name"`
}

// ScoreResponse is the standalone accessibility score payload.
type ScoreResponse struct {
	Success              bool          `json:"success"`
	VenueID              int           `json:"venue_id"`
	AccessibilitySummary score.Summary `json:"accessibility_summary"`
}

// SearchHistoryResponse lists a user's recent searches.
type SearchHistoryResponse struct {
	Success       bool                   `json:"success"`
	SearchHistory []domain.SearchHistory `json:"search_history"`
}

// PopularSearch is one aggregated search with its category name resolved.
type PopularSearch struct {
	ZipCode      string `json:"zip_code"`
	CategoryID   *int   `json:"category_id"`
	CategoryName string `json:"category_name,omitempty"`
	SearchCount  int    `json:"search_count"`
}

// PopularSearchesResponse lists the most-searched (zip, category) pairs.
type PopularSearchesResponse struct {
	Success         bool            `json:"success"`
	PopularSearches []PopularSearch `json:"popular_searches"`
}

// EventsResponse lists events.
type EventsResponse struct {
	Success bool           `json:"success"`
	Events  []domain.Event `json:"events"`
}

// CacheClearResponse reports a cache clear.
type CacheClearResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	ClearedCount int    `json:"cleared_count"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Success   bool      `json:"success"`
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	PlacesAPI string    `json:"places_api"`
	AppName   string    `json:"app_name"`
	Timestamp time.Time `json:"timestamp"`
}
