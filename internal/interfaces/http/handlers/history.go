package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/EricBell/accessible-outings/internal/domain"
	contracts "github.com/EricBell/accessible-outings/internal/http"
)

const (
	historyCap        = 20
	popularCap        = 10
	popularWindowDays = 30
)

// SearchHistory handles GET /api/search-history: the acting user's recent
// searches, newest first.
func (h *Handlers) SearchHistory(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	history, err := h.history.RecentByUser(r.Context(), uid, historyCap)
	if err != nil {
		log.Error().Err(err).Int("user_id", uid).Msg("failed to load search history")
		h.writeError(w, r, http.StatusInternalServerError, "Failed to load search history")
		return
	}
	if history == nil {
		history = []domain.SearchHistory{}
	}

	h.writeJSON(w, http.StatusOK, contracts.SearchHistoryResponse{Success: true, SearchHistory: history})
}

// PopularSearches handles GET /api/popular-searches: the most-searched
// (ZIP, category) pairs over the trailing window.
func (h *Handlers) PopularSearches(w http.ResponseWriter, r *http.Request) {
	since := time.Now().AddDate(0, 0, -popularWindowDays)
	popular, err := h.history.Popular(r.Context(), since, popularCap)
	if err != nil {
		log.Error().Err(err).Msg("failed to load popular searches")
		h.writeError(w, r, http.StatusInternalServerError, "Failed to load popular searches")
		return
	}

	names := h.categoryNames(r)
	out := make([]contracts.PopularSearch, 0, len(popular))
	for _, p := range popular {
		ps := contracts.PopularSearch{
			ZipCode:     p.SearchZip,
			CategoryID:  p.CategoryFilter,
			SearchCount: p.SearchCount,
		}
		if p.CategoryFilter != nil {
			ps.CategoryName = names[*p.CategoryFilter]
		}
		out = append(out, ps)
	}

	h.writeJSON(w, http.StatusOK, contracts.PopularSearchesResponse{Success: true, PopularSearches: out})
}

func (h *Handlers) categoryNames(r *http.Request) map[int]string {
	names := map[int]string{}
	cats, err := h.categories.List(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("failed to resolve category names")
		return names
	}
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names
}
