package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/EricBell/accessible-outings/internal/domain"
	contracts "github.com/EricBell/accessible-outings/internal/http"
	"github.com/EricBell/accessible-outings/internal/persistence"
	"github.com/EricBell/accessible-outings/internal/score"
)

const (
	maxSimilarVenues = 3
	recentReviewsCap = 5
)

func venueID(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

// VenueDetail handles GET /api/venues/{id}: the venue with its accessibility
// summary, recommendations, similar venues, and review context.
func (h *Handlers) VenueDetail(w http.ResponseWriter, r *http.Request) {
	id, err := venueID(r)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "Invalid venue ID")
		return
	}

	venue, err := h.searcher.VenueDetails(r.Context(), id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			h.writeError(w, r, http.StatusNotFound, "Venue not found")
			return
		}
		log.Error().Err(err).Int("venue_id", id).Msg("venue detail lookup failed")
		h.writeError(w, r, http.StatusInternalServerError, "Failed to load venue")
		return
	}

	reviews, err := h.reviews.ListByVenue(r.Context(), id, recentReviewsCap)
	if err != nil {
		log.Warn().Err(err).Int("venue_id", id).Msg("failed to load venue reviews")
	}

	today := time.Now().Weekday()
	detail := contracts.VenueDetail{
		Venue:                      *venue,
		FullAddress:                venue.FullAddress(),
		Hours:                      venue.Hours(),
		TodayHours:                 venue.HoursFor(today),
		OpenToday:                  venue.OpenOn(today),
		AccessibilitySummary:       score.Summarize(venue),
		AverageAccessibilityRating: h.averageAccessibilityRating(r, id),
		Recommendations:            score.Recommendations(venue, reviews),
		SimilarVenues:              h.similarVenues(r, venue),
		RecentReviews:              reviews,
	}

	if uid, ok := userID(r); ok {
		fav, err := h.favorites.IsFavorited(r.Context(), uid, id)
		if err == nil {
			detail.IsFavorited = fav
		}
		if review, err := h.reviews.GetByUserVenue(r.Context(), uid, id); err == nil {
			detail.UserReview = review
		}
	}

	h.writeJSON(w, http.StatusOK, contracts.VenueDetailResponse{Success: true, Venue: detail})
}

// averageAccessibilityRating returns the mean user accessibility rating for
// the venue, rounded to one decimal, or nil when nobody has rated it.
func (h *Handlers) averageAccessibilityRating(r *http.Request, venueID int) *float64 {
	ratings, err := h.reviews.VenueRatings(r.Context(), venueID)
	if err != nil {
		log.Warn().Err(err).Int("venue_id", venueID).Msg("failed to load venue ratings")
		return nil
	}
	if len(ratings) == 0 {
		return nil
	}
	sum := 0
	for _, v := range ratings {
		sum += v
	}
	avg := math.Round(10*float64(sum)/float64(len(ratings))) / 10
	return &avg
}

// similarVenues returns up to maxSimilarVenues accessible venues in the same
// category, ranked by proximity to the venue itself when it has coordinates.
func (h *Handlers) similarVenues(r *http.Request, venue *domain.Venue) []score.RankedVenue {
	if venue.CategoryID == nil {
		return nil
	}
	similar, err := h.venues.SimilarAccessible(r.Context(), *venue.CategoryID, venue.ID)
	if err != nil || len(similar) == 0 {
		return nil
	}

	origin, ok := venue.Location()
	if !ok {
		origin.Latitude = h.cfg.App.DefaultLatitude
		origin.Longitude = h.cfg.App.DefaultLongitude
	}
	ranked, err := score.Rank(similar, origin)
	if err != nil {
		return nil
	}
	if len(ranked) > maxSimilarVenues {
		ranked = ranked[:maxSimilarVenues]
	}
	return ranked
}

// AccessibilityScore handles GET /api/accessibility-score/{id}.
func (h *Handlers) AccessibilityScore(w http.ResponseWriter, r *http.Request) {
	id, err := venueID(r)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "Invalid venue ID")
		return
	}

	venue, err := h.venues.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			h.writeError(w, r, http.StatusNotFound, "Venue not found")
			return
		}
		log.Error().Err(err).Int("venue_id", id).Msg("venue lookup failed")
		h.writeError(w, r, http.StatusInternalServerError, "Failed to load venue")
		return
	}

	h.writeJSON(w, http.StatusOK, contracts.ScoreResponse{
		Success:              true,
		VenueID:              id,
		AccessibilitySummary: score.Summarize(venue),
	})
}
