package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/EricBell/accessible-outings/internal/domain"
	contracts "github.com/EricBell/accessible-outings/internal/http"
	"github.com/EricBell/accessible-outings/internal/persistence"
)

// ListFavorites handles GET /api/favorites.
func (h *Handlers) ListFavorites(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	favorites, err := h.favorites.ListByUser(r.Context(), uid)
	if err != nil {
		log.Error().Err(err).Int("user_id", uid).Msg("failed to list favorites")
		h.writeError(w, r, http.StatusInternalServerError, "Failed to load favorites")
		return
	}
	if favorites == nil {
		favorites = []domain.UserFavorite{}
	}

	h.writeJSON(w, http.StatusOK, contracts.FavoritesResponse{Success: true, Favorites: favorites})
}

type favoriteRequest struct {
	VenueID                     int    `json:"venue_id"`
	Notes                       string `json:"notes"`
	PersonalAccessibilityRating *int   `json:"personal_accessibility_rating"`
}

// AddFavorite handles POST /api/favorites/{id} and POST /api/favorites with
// venue_id in the body.
func (h *Handlers) AddFavorite(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req favoriteRequest
	if r.Body != nil {
		// Body is optional; a bare POST favorites with no notes.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	id, err := venueID(r)
	if err != nil {
		id = req.VenueID
	}
	if id <= 0 {
		h.writeError(w, r, http.StatusBadRequest, "Invalid venue ID")
		return
	}

	if _, err := h.venues.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			h.writeError(w, r, http.StatusNotFound, "Venue not found")
			return
		}
		log.Error().Err(err).Int("venue_id", id).Msg("venue lookup failed")
		h.writeError(w, r, http.StatusInternalServerError, "Failed to add favorite")
		return
	}

	fav := &domain.UserFavorite{
		UserID:                      uid,
		VenueID:                     id,
		Notes:                       req.Notes,
		PersonalAccessibilityRating: req.PersonalAccessibilityRating,
	}
	if err := h.favorites.Upsert(r.Context(), fav); err != nil {
		log.Error().Err(err).Int("user_id", uid).Int("venue_id", id).Msg("failed to save favorite")
		h.writeError(w, r, http.StatusInternalServerError, "Failed to add favorite")
		return
	}

	h.writeJSON(w, http.StatusOK, contracts.FavoriteResponse{
		Success:  true,
		Message:  "Venue added to favorites",
		Favorite: *fav,
	})
}

// RemoveFavorite handles DELETE /api/favorites/{id}.
func (h *Handlers) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id, err := venueID(r)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "Invalid venue ID")
		return
	}

	if err := h.favorites.Remove(r.Context(), uid, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			h.writeError(w, r, http.StatusNotFound, "Favorite not found")
			return
		}
		log.Error().Err(err).Int("user_id", uid).Int("venue_id", id).Msg("failed to remove favorite")
		h.writeError(w, r, http.StatusInternalServerError, "Failed to remove favorite")
		return
	}

	h.writeJSON(w, http.StatusOK, contracts.FavoriteResponse{
		Success: true,
		Message: "Venue removed from favorites",
	})
}
