package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/EricBell/accessible-outings/internal/geocoding"
	contracts "github.com/EricBell/accessible-outings/internal/http"
)

// Geocode handles GET /api/geocode: resolve a ZIP code to coordinates and a
// display name.
func (h *Handlers) Geocode(w http.ResponseWriter, r *http.Request) {
	zip := r.URL.Query().Get("zip_code")
	if zip == "" {
		h.writeError(w, r, http.StatusBadRequest, "ZIP code is required")
		return
	}

	info, err := h.geocoder.LookupZip(r.Context(), zip)
	if err != nil {
		switch {
		case errors.Is(err, geocoding.ErrInvalidZip):
			h.writeError(w, r, http.StatusBadRequest, "Invalid ZIP code format")
		case errors.Is(err, geocoding.ErrNoResults):
			h.writeError(w, r, http.StatusNotFound, "ZIP code not found")
		default:
			log.Error().Err(err).Str("zip", zip).Msg("geocode failed")
			h.writeError(w, r, http.StatusBadGateway, "Geocoding service unavailable")
		}
		return
	}

	name := info.FormattedAddress
	if info.City != "" && info.State != "" {
		name = info.City + ", " + info.State
	}

	h.writeJSON(w, http.StatusOK, contracts.GeocodeResponse{
		Success:      true,
		ZipCode:      info.ZipCode,
		Latitude:     info.Latitude,
		Longitude:    info.Longitude,
		LocationName: name,
	})
}
