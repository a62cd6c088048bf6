package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/EricBell/accessible-outings/internal/domain"
	contracts "github.com/EricBell/accessible-outings/internal/http"
)

const userReviewsCap = 50

// ListUserReviews handles GET /api/reviews: the acting user's reviews.
func (h *Handlers) ListUserReviews(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	reviews, err := h.reviews.ListByUser(r.Context(), uid, userReviewsCap)
	if err != nil {
		log.Error().Err(err).Int("user_id", uid).Msg("failed to list reviews")
		h.writeError(w, r, http.StatusInternalServerError, "Failed to load reviews")
		return
	}
	if reviews == nil {
		reviews = []domain.UserReview{}
	}

	h.writeJSON(w, http.StatusOK, contracts.ReviewsResponse{Success: true, Reviews: reviews})
}

// ListVenueReviews handles GET /api/venues/{id}/reviews.
func (h *Handlers) ListVenueReviews(w http.ResponseWriter, r *http.Request) {
	id, err := venueID(r)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "Invalid venue ID")
		return
	}

	limit := queryInt(r, "limit", recentReviewsCap)
	reviews, err := h.reviews.ListByVenue(r.Context(), id, limit)
	if err != nil {
		log.Error().Err(err).Int("venue_id", id).Msg("failed to list venue reviews")
		h.writeError(w, r, http.StatusInternalServerError, "Failed to load reviews")
		return
	}
	if reviews == nil {
		reviews = []domain.UserReview{}
	}

	h.writeJSON(w, http.StatusOK, contracts.ReviewsResponse{Success: true, Reviews: reviews})
}

type reviewRequest struct {
	VenueID                  int      `json:"venue_id"`
	VisitDate                *string  `json:"visit_date"`
	OverallRating            *int     `json:"overall_rating"`
	AccessibilityRating      *int     `json:"accessibility_rating"`
	ReviewText               string   `json:"review_text"`
	AccessibilityNotes       string   `json:"accessibility_notes"`
	WouldReturn              *bool    `json:"would_return"`
	RecommendedForWheelchair *bool    `json:"recommended_for_wheelchair"`
	Photos                   []string `json:"photos"`
	WeatherConditions        string   `json:"weather_conditions"`
	VisitDurationHours       *float64 `json:"visit_duration_hours"`
	CompanionCount           *int     `json:"companion_count"`
}

func validRating(r *int) bool {
	return r == nil || (*r >= 1 && *r <= 5)
}

// SubmitReview handles POST /api/venues/{id}/reviews and POST /api/reviews
// with venue_id in the body. A second submission by the same user updates
// the first.
func (h *Handlers) SubmitReview(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := venueID(r)
	if err != nil {
		id = req.VenueID
	}
	if id <= 0 {
		h.writeError(w, r, http.StatusBadRequest, "Invalid venue ID")
		return
	}
	if !validRating(req.OverallRating) || !validRating(req.AccessibilityRating) {
		h.writeError(w, r, http.StatusBadRequest, "Ratings must be between 1 and 5")
		return
	}

	review := &domain.UserReview{
		UserID:                   uid,
		VenueID:                  id,
		OverallRating:            req.OverallRating,
		AccessibilityRating:      req.AccessibilityRating,
		ReviewText:               req.ReviewText,
		AccessibilityNotes:       req.AccessibilityNotes,
		WouldReturn:              req.WouldReturn,
		RecommendedForWheelchair: req.RecommendedForWheelchair,
		Photos:                   req.Photos,
		WeatherConditions:        req.WeatherConditions,
		VisitDurationHours:       req.VisitDurationHours,
		CompanionCount:           req.CompanionCount,
	}
	if req.VisitDate != nil {
		d, err := time.Parse("2006-01-02", *req.VisitDate)
		if err != nil {
			h.writeError(w, r, http.StatusBadRequest, "visit_date must be YYYY-MM-DD")
			return
		}
		review.VisitDate = &d
	}

	if err := h.reviews.Upsert(r.Context(), review); err != nil {
		log.Error().Err(err).Int("user_id", uid).Int("venue_id", id).Msg("failed to save review")
		h.writeError(w, r, http.StatusInternalServerError, "Failed to save review")
		return
	}

	h.writeJSON(w, http.StatusOK, contracts.ReviewResponse{
		Success: true,
		Message: "Review saved",
		Review:  *review,
	})
}
