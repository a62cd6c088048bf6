// Package persistence defines the repository contracts the storage layer
// implements and the HTTP layer consumes.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/EricBell/accessible-outings/internal/domain"
	"github.com/EricBell/accessible-outings/internal/geo"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// VenueFilter narrows a bounding-box venue search.
type VenueFilter struct {
	CategoryID     *int
	AccessibleOnly bool // Restrict to wheelchair-accessible venues
	Limit          int
}

// VenueRepo stores venues and supports the search prefilter.
type VenueRepo interface {
	GetByID(ctx context.Context, id int) (*domain.Venue, error)
	GetByPlaceID(ctx context.Context, placeID string) (*domain.Venue, error)
	// Upsert inserts the venue or, when a row with the same place ID exists,
	// updates it in place. The venue's ID is populated either way.
	Upsert(ctx context.Context, v *domain.Venue) error
	// SearchWithin returns venues inside the bounding box, filtered.
	SearchWithin(ctx context.Context, box geo.BoundingBox, f VenueFilter) ([]domain.Venue, error)
	// SimilarAccessible returns wheelchair-accessible venues sharing a
	// category, excluding one venue.
	SimilarAccessible(ctx context.Context, categoryID, excludeVenueID int) ([]domain.Venue, error)
}

// CategoryStats aggregates accessibility data across a category's venues.
type CategoryStats struct {
	VenueCount      int `db:"venue_count"`
	AccessibleCount int `db:"accessible_count"`
}

// CategoryRepo stores venue categories.
type CategoryRepo interface {
	List(ctx context.Context) ([]domain.VenueCategory, error)
	GetByID(ctx context.Context, id int) (*domain.VenueCategory, error)
	Stats(ctx context.Context, categoryID int) (*CategoryStats, error)
	// VenueFeatures returns the accessibility flags of every venue in a
	// category, for insight aggregation.
	VenueFeatures(ctx context.Context, categoryID int) ([]domain.AccessibilityFeatures, error)
}

// UserRepo reads user accounts.
type UserRepo interface {
	GetByID(ctx context.Context, id int) (*domain.User, error)
}

// ReviewRepo stores user reviews, one per (user, venue).
type ReviewRepo interface {
	// Upsert inserts the review or updates the user's existing review for
	// the venue. The review's ID is populated either way.
	Upsert(ctx context.Context, r *domain.UserReview) error
	GetByUserVenue(ctx context.Context, userID, venueID int) (*domain.UserReview, error)
	ListByVenue(ctx context.Context, venueID, limit int) ([]domain.UserReview, error)
	ListByUser(ctx context.Context, userID, limit int) ([]domain.UserReview, error)
	// VenueRatings returns the non-null accessibility ratings for a venue.
	VenueRatings(ctx context.Context, venueID int) ([]int, error)
}

// FavoriteRepo stores user favorites, one per (user, venue).
type FavoriteRepo interface {
	// Upsert adds the favorite or refreshes notes/rating on the existing one.
	Upsert(ctx context.Context, f *domain.UserFavorite) error
	// Remove deletes the favorite; ErrNotFound when it does not exist.
	Remove(ctx context.Context, userID, venueID int) error
	ListByUser(ctx context.Context, userID int) ([]domain.UserFavorite, error)
	IsFavorited(ctx context.Context, userID, venueID int) (bool, error)
}

// SearchHistoryRepo records searches for analytics.
type SearchHistoryRepo interface {
	Log(ctx context.Context, s *domain.SearchHistory) error
	RecentByUser(ctx context.Context, userID, limit int) ([]domain.SearchHistory, error)
	// Popular returns grouped (zip, category) counts since the cutoff.
	Popular(ctx context.Context, since time.Time, limit int) ([]domain.PopularSearch, error)
}

// EventRepo stores events, deduplicated by (source, external ID) for
// externally sourced rows.
type EventRepo interface {
	UpsertExternal(ctx context.Context, e *domain.Event) error
	ListByVenue(ctx context.Context, venueID int, from time.Time) ([]domain.Event, error)
	ListUpcomingByVenues(ctx context.Context, venueIDs []int, from time.Time, limit int) ([]domain.Event, error)
}
