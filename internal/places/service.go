package places

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/EricBell/accessible-outings/internal/domain"
	"github.com/EricBell/accessible-outings/internal/geo"
	"github.com/EricBell/accessible-outings/internal/persistence"
	"github.com/EricBell/accessible-outings/internal/score"
)

// metersPerMile converts the search radius for the places API.
const metersPerMile = 1609.34

// staleAfter is how old a stored venue may be before a search refreshes it
// from the places API.
const staleAfter = 7 * 24 * time.Hour

// SearchService discovers venues through the places API and keeps the
// venue store in sync with what it finds.
type SearchService struct {
	client     *Client
	venues     persistence.VenueRepo
	categories persistence.CategoryRepo
	now        func() time.Time
}

// NewSearchService builds a venue search service.
func NewSearchService(client *Client, venues persistence.VenueRepo, categories persistence.CategoryRepo) *SearchService {
	return &SearchService{
		client:     client,
		venues:     venues,
		categories: categories,
		now:        time.Now,
	}
}

// SearchParams describes one venue search. Query switches to a free-text
// search; otherwise the category's keywords or a plain nearby search apply.
type SearchParams struct {
	Origin         geo.Point
	Query          string
	RadiusMiles    int
	CategoryID     *int
	AccessibleOnly bool
	Limit          int
}

// Search queries the places API around the origin, upserts what it finds,
// and returns the venues ranked by distance.
func (s *SearchService) Search(ctx context.Context, p SearchParams) ([]score.RankedVenue, error) {
	if err := p.Origin.Validate(); err != nil {
		return nil, err
	}
	radiusMeters := int(float64(p.RadiusMiles) * metersPerMile)

	var found []Place
	if p.Query != "" {
		var err error
		found, err = s.client.TextSearch(ctx, p.Query, &p.Origin, radiusMeters)
		if err != nil {
			return nil, err
		}
	} else if p.CategoryID != nil {
		category, err := s.categories.GetByID(ctx, *p.CategoryID)
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				return nil, fmt.Errorf("category %d: %w", *p.CategoryID, err)
			}
			return nil, err
		}
		found, err = s.client.SearchByCategory(ctx, p.Origin, category, radiusMeters)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		found, err = s.client.SearchNearby(ctx, p.Origin, radiusMeters, "", "")
		if err != nil {
			return nil, err
		}
	}

	venues := make([]domain.Venue, 0, len(found))
	for i := range found {
		v, err := s.resolve(ctx, &found[i], p.CategoryID)
		if err != nil {
			log.Error().Err(err).Str("place_id", found[i].PlaceID).Msg("failed to resolve place")
			continue
		}
		if v == nil {
			continue
		}
		if p.AccessibleOnly && !v.WheelchairAccessible {
			continue
		}
		venues = append(venues, *v)
	}

	ranked, err := score.Rank(venues, p.Origin)
	if err != nil {
		return nil, err
	}
	if p.Limit > 0 && len(ranked) > p.Limit {
		ranked = ranked[:p.Limit]
	}
	return ranked, nil
}

// resolve maps a place result to a stored venue, creating it on first
// sight and refreshing it when the stored copy has gone stale.
func (s *SearchService) resolve(ctx context.Context, p *Place, categoryID *int) (*domain.Venue, error) {
	if p.PlaceID == "" {
		return nil, nil
	}

	existing, err := s.venues.GetByPlaceID(ctx, p.PlaceID)
	switch {
	case err == nil:
		if s.now().Sub(existing.LastUpdated) <= staleAfter {
			return existing, nil
		}
		return s.refresh(ctx, existing, categoryID)
	case errors.Is(err, persistence.ErrNotFound):
		return s.create(ctx, p, categoryID)
	default:
		return nil, err
	}
}

func (s *SearchService) create(ctx context.Context, p *Place, categoryID *int) (*domain.Venue, error) {
	// Details carry reviews, hours, and the wheelchair entrance flag that
	// the search result lacks. Fall back to the search result when the
	// details call fails.
	detailed, err := s.client.Details(ctx, p.PlaceID)
	if err != nil {
		log.Warn().Err(err).Str("place_id", p.PlaceID).Msg("place details unavailable, using search result")
		detailed = p
	}

	v := s.client.ToVenue(detailed, categoryID)
	if err := s.venues.Upsert(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to store venue %q: %w", v.Name, err)
	}
	log.Info().Str("name", v.Name).Int("venue_id", v.ID).Msg("created venue")
	return v, nil
}

func (s *SearchService) refresh(ctx context.Context, existing *domain.Venue, categoryID *int) (*domain.Venue, error) {
	detailed, err := s.client.Details(ctx, existing.PlaceID)
	if err != nil {
		// A refresh failure is not fatal; serve the stale copy.
		log.Warn().Err(err).Str("place_id", existing.PlaceID).Msg("venue refresh failed, serving stored copy")
		return existing, nil
	}

	if categoryID == nil {
		categoryID = existing.CategoryID
	}
	v := s.client.ToVenue(detailed, categoryID)
	v.VerifiedAccessible = existing.VerifiedAccessible
	if err := s.venues.Upsert(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to refresh venue %q: %w", existing.Name, err)
	}
	return v, nil
}

// VenueDetails returns a stored venue, refreshing it from the places API
// when stale.
func (s *SearchService) VenueDetails(ctx context.Context, venueID int) (*domain.Venue, error) {
	v, err := s.venues.GetByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if v.PlaceID == "" || s.now().Sub(v.LastUpdated) <= staleAfter {
		return v, nil
	}
	return s.refresh(ctx, v, v.CategoryID)
}
