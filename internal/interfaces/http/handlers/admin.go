package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	contracts "github.com/EricBell/accessible-outings/internal/http"
)

// ClearCache handles POST /api/cache/clear. With a pattern it deletes
// matching keys; without one it purges expired entries only.
func (h *Handlers) ClearCache(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")

	var (
		cleared int
		message string
		err     error
	)
	if pattern != "" {
		cleared, err = h.cache.DeletePattern(r.Context(), pattern)
		message = "Cleared cache entries matching " + pattern
	} else {
		cleared, err = h.cache.PurgeExpired(r.Context())
		message = "Purged expired cache entries"
	}
	if err != nil {
		log.Error().Err(err).Str("pattern", pattern).Msg("cache clear failed")
		h.writeError(w, r, http.StatusInternalServerError, "Failed to clear cache")
		return
	}

	h.writeJSON(w, http.StatusOK, contracts.CacheClearResponse{
		Success:      true,
		Message:      message,
		ClearedCount: cleared,
	})
}

// Health handles GET /api/health: storage connectivity and external API
// configuration status.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := contracts.HealthResponse{
		Success:   true,
		Status:    "healthy",
		Database:  "connected",
		PlacesAPI: "configured",
		AppName:   h.cfg.App.Name,
		Timestamp: time.Now().UTC(),
	}

	status := http.StatusOK
	if err := h.db.PingContext(r.Context()); err != nil {
		log.Warn().Err(err).Msg("database health check failed")
		resp.Success = false
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}
	if h.cfg.Places.APIKey == "" {
		resp.PlacesAPI = "not configured"
	}

	h.writeJSON(w, status, resp)
}
