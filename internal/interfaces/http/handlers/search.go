package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/EricBell/accessible-outings/internal/domain"
	"github.com/EricBell/accessible-outings/internal/geo"
	"github.com/EricBell/accessible-outings/internal/geocoding"
	contracts "github.com/EricBell/accessible-outings/internal/http"
	"github.com/EricBell/accessible-outings/internal/persistence"
	"github.com/EricBell/accessible-outings/internal/places"
	"github.com/EricBell/accessible-outings/internal/score"
)

// Search handles GET /api/search: geocode the origin, run the venue search,
// and record it in the user's history.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	zip := q.Get("zip_code")
	address := q.Get("address")
	if zip == "" && address == "" {
		h.writeError(w, r, http.StatusBadRequest, "ZIP code is required")
		return
	}

	radius := queryInt(r, "radius", h.cfg.App.DefaultRadiusMiles)
	if radius <= 0 {
		radius = h.cfg.App.DefaultRadiusMiles
	}
	if radius > h.cfg.App.MaxRadiusMiles {
		radius = h.cfg.App.MaxRadiusMiles
	}

	var categoryID *int
	if id := queryInt(r, "category_id", 0); id > 0 {
		categoryID = &id
	}
	accessibleOnly := queryBool(r, "accessible_only")

	origin, err := h.geocoder.SearchOrigin(r.Context(), zip, address)
	if err != nil {
		if errors.Is(err, geocoding.ErrInvalidZip) {
			h.writeError(w, r, http.StatusBadRequest, "Invalid ZIP code format")
			return
		}
		h.writeError(w, r, http.StatusBadGateway, "Unable to resolve search location")
		return
	}

	query := q.Get("q")
	ranked, err := h.searcher.Search(r.Context(), places.SearchParams{
		Origin:         origin,
		Query:          query,
		RadiusMiles:    radius,
		CategoryID:     categoryID,
		AccessibleOnly: accessibleOnly,
		Limit:          queryInt(r, "limit", 0),
	})
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			h.writeError(w, r, http.StatusNotFound, "Category not found")
			return
		}
		if errors.Is(err, geo.ErrInvalidCoordinate) {
			h.writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Str("zip", zip).Msg("venue search failed")
		h.writeError(w, r, http.StatusInternalServerError, "Search failed")
		return
	}
	if ranked == nil {
		ranked = []score.RankedVenue{}
	}

	h.logSearch(r, zip, radius, categoryID, accessibleOnly, len(ranked))

	h.writeJSON(w, http.StatusOK, contracts.SearchResponse{
		Success:      true,
		Venues:       ranked,
		TotalResults: len(ranked),
		SearchParams: contracts.SearchParams{
			ZipCode:        zip,
			Query:          query,
			CategoryID:     categoryID,
			Radius:         radius,
			AccessibleOnly: accessibleOnly,
			Latitude:       origin.Latitude,
			Longitude:      origin.Longitude,
			LocationName:   h.geocoder.DisplayName(r.Context(), origin),
		},
	})
}

// logSearch records the search for a signed-in user. Failures are logged,
// never surfaced.
func (h *Handlers) logSearch(r *http.Request, zip string, radius int, categoryID *int, accessibleOnly bool, results int) {
	uid, ok := userID(r)
	if !ok {
		return
	}
	entry := &domain.SearchHistory{
		UserID:              uid,
		SearchZip:           zip,
		SearchRadius:        radius,
		CategoryFilter:      categoryID,
		ResultsCount:        results,
		AccessibilityFilter: accessibleOnly,
	}
	if err := h.history.Log(r.Context(), entry); err != nil {
		log.Warn().Err(err).Int("user_id", uid).Msg("failed to record search history")
	}
}
