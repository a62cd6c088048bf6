package handlers

import (
	"math"
	"net/http"
	"sort"

	"github.com/rs/zerolog/log"

	contracts "github.com/EricBell/accessible-outings/internal/http"
	"github.com/EricBell/accessible-outings/internal/score"
)

const maxCommonFeatures = 5

// Categories handles GET /api/categories: every category with aggregated
// accessibility insights.
func (h *Handlers) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list categories")
		h.writeError(w, r, http.StatusInternalServerError, "Failed to load categories")
		return
	}

	out := make([]contracts.CategoryInfo, 0, len(cats))
	for _, c := range cats {
		info := contracts.CategoryInfo{VenueCategory: c}
		if insights, err := h.categoryInsights(r, c.ID); err == nil {
			info.Insights = *insights
		} else {
			log.Warn().Err(err).Int("category_id", c.ID).Msg("failed to compute category insights")
		}
		out = append(out, info)
	}

	h.writeJSON(w, http.StatusOK, contracts.CategoriesResponse{Success: true, Categories: out})
}

func (h *Handlers) categoryInsights(r *http.Request, categoryID int) (*contracts.CategoryInsights, error) {
	stats, err := h.categories.Stats(r.Context(), categoryID)
	if err != nil {
		return nil, err
	}

	insights := &contracts.CategoryInsights{
		VenueCount:      stats.VenueCount,
		AccessibleCount: stats.AccessibleCount,
	}
	if stats.VenueCount > 0 {
		pct := 100 * float64(stats.AccessibleCount) / float64(stats.VenueCount)
		insights.AccessibilityPercentage = math.Round(pct*10) / 10
	}

	features, err := h.categories.VenueFeatures(r.Context(), categoryID)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, f := range features {
		for _, name := range score.FeatureList(f) {
			counts[name]++
		}
	}
	for name, n := range counts {
		insights.CommonFeatures = append(insights.CommonFeatures, contracts.FeatureCount{Feature: name, Count: n})
	}
	sort.Slice(insights.CommonFeatures, func(i, j int) bool {
		a, b := insights.CommonFeatures[i], insights.CommonFeatures[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Feature < b.Feature
	})
	if len(insights.CommonFeatures) > maxCommonFeatures {
		insights.CommonFeatures = insights.CommonFeatures[:maxCommonFeatures]
	}
	return insights, nil
}
