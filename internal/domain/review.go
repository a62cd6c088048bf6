package domain

import (
	"time"

	"github.com/lib/pq"
)

// UserFavorite marks a venue a user has saved. One row per (user, venue).
type UserFavorite struct {
	ID                          int       `db:"id" json:"id"`
	UserID                      int       `db:"user_id" json:"user_id"`
	VenueID                     int       `db:"venue_id" json:"venue_id"`
	Notes                       string    `db:"notes" json:"notes"`
	PersonalAccessibilityRating *int      `db:"personal_accessibility_rating" json:"personal_accessibility_rating"`
	CreatedAt                   time.Time `db:"created_at" json:"created_at"`

	// Joined venue, populated by list queries.
	Venue *Venue `db:"-" json:"venue,omitempty"`
}

// UserReview is a visit log and rating for a venue. One row per (user, venue);
// a second submission updates the first.
type UserReview struct {
	ID                       int            `db:"id" json:"id"`
	UserID                   int            `db:"user_id" json:"user_id"`
	VenueID                  int            `db:"venue_id" json:"venue_id"`
	VisitDate                *time.Time     `db:"visit_date" json:"visit_date"`
	OverallRating            *int           `db:"overall_rating" json:"overall_rating"`
	AccessibilityRating      *int           `db:"accessibility_rating" json:"accessibility_rating"`
	ReviewText               string         `db:"review_text" json:"review_text"`
	AccessibilityNotes       string         `db:"accessibility_notes" json:"accessibility_notes"`
	WouldReturn              *bool          `db:"would_return" json:"would_return"`
	RecommendedForWheelchair *bool          `db:"recommended_for_wheelchair" json:"recommended_for_wheelchair"`
	Photos                   pq.StringArray `db:"photos" json:"photos"`
	WeatherConditions        string         `db:"weather_conditions" json:"weather_conditions"`
	VisitDurationHours       *float64       `db:"visit_duration_hours" json:"visit_duration_hours"`
	CompanionCount           *int           `db:"companion_count" json:"companion_count"`
	CreatedAt                time.Time      `db:"created_at" json:"created_at"`
}

// IsRecent reports whether the review is at most 30 days old.
func (r *UserReview) IsRecent(now time.Time) bool {
	return now.Sub(r.CreatedAt) <= 30*24*time.Hour
}

// SearchHistory records one venue search for analytics and recommendations.
type SearchHistory struct {
	ID                  int       `db:"id" json:"id"`
	UserID              int       `db:"user_id" json:"user_id"`
	SearchZip           string    `db:"search_zip" json:"search_zip"`
	SearchRadius        int       `db:"search_radius" json:"search_radius"`
	CategoryFilter      *int      `db:"category_filter" json:"category_filter"`
	ResultsCount        int       `db:"results_count" json:"results_count"`
	AccessibilityFilter bool      `db:"accessibility_filter" json:"accessibility_filter"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// PopularSearch is an aggregated (zip, category) search count over a
// trailing window.
type PopularSearch struct {
	SearchZip      string `db:"search_zip" json:"zip_code"`
	CategoryFilter *int   `db:"category_filter" json:"category_id"`
	SearchCount    int    `db:"search_count" json:"search_count"`
}
