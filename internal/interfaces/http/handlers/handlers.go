// Package handlers implements the REST API endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/EricBell/accessible-outings/internal/cache"
	"github.com/EricBell/accessible-outings/internal/config"
	"github.com/EricBell/accessible-outings/internal/domain"
	"github.com/EricBell/accessible-outings/internal/events"
	"github.com/EricBell/accessible-outings/internal/geo"
	"github.com/EricBell/accessible-outings/internal/geocoding"
	contracts "github.com/EricBell/accessible-outings/internal/http"
	"github.com/EricBell/accessible-outings/internal/persistence"
	"github.com/EricBell/accessible-outings/internal/places"
	"github.com/EricBell/accessible-outings/internal/score"
)

// userHeader carries the acting user's ID. Requests without it are
// anonymous; user-scoped endpoints reject them.
const userHeader = "X-User-ID"

type ctxKey string

// RequestIDKey is the context key the request ID middleware stores under.
const RequestIDKey ctxKey = "request_id"

// Geocoder resolves ZIP codes and addresses to coordinates.
type Geocoder interface {
	SearchOrigin(ctx context.Context, zip, address string) (geo.Point, error)
	LookupZip(ctx context.Context, zip string) (*geocoding.ZipInfo, error)
	DisplayName(ctx context.Context, pt geo.Point) string
}

// VenueSearcher runs venue searches and detail lookups.
type VenueSearcher interface {
	Search(ctx context.Context, p places.SearchParams) ([]score.RankedVenue, error)
	VenueDetails(ctx context.Context, venueID int) (*domain.Venue, error)
}

// EventSource serves upcoming events.
type EventSource interface {
	ByVenue(ctx context.Context, venueID int) ([]domain.Event, error)
	Nearby(ctx context.Context, origin geo.Point, radiusMiles float64, limit int) ([]domain.Event, error)
}

// Pinger checks storage connectivity for the health endpoint.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers holds the endpoint implementations and their dependencies.
type Handlers struct {
	cfg      *config.Config
	geocoder Geocoder
	searcher VenueSearcher
	events   EventSource
	cache    cache.Cache
	db       Pinger

	venues     persistence.VenueRepo
	categories persistence.CategoryRepo
	favorites  persistence.FavoriteRepo
	reviews    persistence.ReviewRepo
	history    persistence.SearchHistoryRepo
	users      persistence.UserRepo
}

// Deps bundles the handler dependencies.
type Deps struct {
	Config   *config.Config
	Geocoder Geocoder
	Searcher VenueSearcher
	Events   EventSource
	Cache    cache.Cache
	DB       Pinger

	Venues     persistence.VenueRepo
	Categories persistence.CategoryRepo
	Favorites  persistence.FavoriteRepo
	Reviews    persistence.ReviewRepo
	History    persistence.SearchHistoryRepo
	Users      persistence.UserRepo
}

// New creates the handlers.
func New(d Deps) *Handlers {
	return &Handlers{
		cfg:        d.Config,
		geocoder:   d.Geocoder,
		searcher:   d.Searcher,
		events:     d.Events,
		cache:      d.Cache,
		db:         d.DB,
		venues:     d.Venues,
		categories: d.Categories,
		favorites:  d.Favorites,
		reviews:    d.Reviews,
		history:    d.History,
		users:      d.Users,
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	requestID, _ := r.Context().Value(RequestIDKey).(string)
	h.writeJSON(w, status, contracts.ErrorResponse{
		Error:     message,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
	})
}

// userID extracts the acting user from the request header. ok is false
// when the header is absent or malformed.
func userID(r *http.Request) (int, bool) {
	raw := r.Header.Get(userHeader)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// requireUser writes a 401 and returns false when the request is anonymous
// or names a user that does not exist.
func (h *Handlers) requireUser(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := userID(r)
	if !ok {
		h.writeError(w, r, http.StatusUnauthorized, "Authentication required")
		return 0, false
	}
	if _, err := h.users.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			h.writeError(w, r, http.StatusUnauthorized, "Unknown user")
			return 0, false
		}
		log.Error().Err(err).Int("user_id", id).Msg("user lookup failed")
		h.writeError(w, r, http.StatusInternalServerError, "Failed to verify user")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func queryBool(r *http.Request, name string) bool {
	switch r.URL.Query().Get(name) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// NotFound handles unknown routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.writeError(w, r, http.StatusNotFound, "The requested endpoint does not exist")
}

var _ Geocoder = (*geocoding.Service)(nil)
var _ VenueSearcher = (*places.SearchService)(nil)
var _ EventSource = (*events.Aggregator)(nil)
