package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/EricBell/accessible-outings/internal/domain"
	"github.com/EricBell/accessible-outings/internal/geo"
	contracts "github.com/EricBell/accessible-outings/internal/http"
)

const defaultEventLimit = 20

// Events handles GET /api/events: upcoming events either for one venue
// (venue_id) or near a point (lat, lon, radius).
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		events []domain.Event
		err    error
	)
	switch {
	case q.Get("venue_id") != "":
		id, convErr := strconv.Atoi(q.Get("venue_id"))
		if convErr != nil || id <= 0 {
			h.writeError(w, r, http.StatusBadRequest, "Invalid venue_id")
			return
		}
		events, err = h.events.ByVenue(r.Context(), id)

	case q.Get("lat") != "" && q.Get("lon") != "":
		lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
		lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
		if latErr != nil || lonErr != nil {
			h.writeError(w, r, http.StatusBadRequest, "Invalid coordinates")
			return
		}
		radius := queryInt(r, "radius", h.cfg.App.DefaultRadiusMiles)
		if radius > h.cfg.App.MaxRadiusMiles {
			radius = h.cfg.App.MaxRadiusMiles
		}
		limit := queryInt(r, "limit", defaultEventLimit)
		origin := geo.Point{Latitude: lat, Longitude: lon}
		events, err = h.events.Nearby(r.Context(), origin, float64(radius), limit)

	default:
		h.writeError(w, r, http.StatusBadRequest, "Either venue_id or lat and lon are required")
		return
	}

	if err != nil {
		if errors.Is(err, geo.ErrInvalidCoordinate) {
			h.writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Msg("event lookup failed")
		h.writeError(w, r, http.StatusInternalServerError, "Failed to load events")
		return
	}
	if events == nil {
		events = []domain.Event{}
	}

	h.writeJSON(w, http.StatusOK, contracts.EventsResponse{Success: true, Events: events})
}
