package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/EricBell/accessible-outings/internal/domain"
	"github.com/EricBell/accessible-outings/internal/geo"
	"github.com/EricBell/accessible-outings/internal/persistence"
)

// Aggregator serves upcoming events, merging what is stored with what the
// external provider finds. A nil provider serves stored events only.
type Aggregator struct {
	events   persistence.EventRepo
	venues   persistence.VenueRepo
	provider Provider
	now      func() time.Time
}

// NewAggregator builds an event aggregator.
func NewAggregator(events persistence.EventRepo, venues persistence.VenueRepo, provider Provider) *Aggregator {
	return &Aggregator{
		events:   events,
		venues:   venues,
		provider: provider,
		now:      time.Now,
	}
}

// ByVenue returns upcoming events at one venue.
func (a *Aggregator) ByVenue(ctx context.Context, venueID int) ([]domain.Event, error) {
	return a.events.ListByVenue(ctx, venueID, a.now())
}

// Nearby returns upcoming events at venues around the origin. When storage
// holds fewer than half the requested events and a provider is configured,
// the provider is queried and its results synced before merging.
func (a *Aggregator) Nearby(ctx context.Context, origin geo.Point, radiusMiles float64, limit int) ([]domain.Event, error) {
	box, err := geo.Bounds(origin, radiusMiles)
	if err != nil {
		return nil, err
	}

	venues, err := a.venues.SearchWithin(ctx, box, persistence.VenueFilter{})
	if err != nil {
		return nil, err
	}
	// The bounding box overshoots at its corners; keep only venues truly
	// inside the radius.
	venueIDs := make([]int, 0, len(venues))
	for _, v := range venues {
		if loc, ok := v.Location(); ok {
			inside, err := geo.WithinRadius(origin, loc, radiusMiles)
			if err != nil || !inside {
				continue
			}
		}
		venueIDs = append(venueIDs, v.ID)
	}

	stored, err := a.events.ListUpcomingByVenues(ctx, venueIDs, a.now(), limit)
	if err != nil {
		return nil, err
	}

	if a.provider == nil || len(stored) >= limit/2 {
		return stored, nil
	}

	synced, err := a.syncFromProvider(ctx, origin, radiusMiles, limit)
	if err != nil {
		// Stored events still answer the request when the provider is down.
		log.Warn().Err(err).Msg("event provider search failed, serving stored events only")
		return stored, nil
	}

	merged := stored
	seen := make(map[int]bool, len(stored))
	for _, e := range stored {
		seen[e.ID] = true
	}
	for _, e := range synced {
		if !seen[e.ID] && e.Upcoming(a.now()) {
			merged = append(merged, e)
			seen[e.ID] = true
		}
	}

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// syncFromProvider searches the provider and upserts what it returns,
// creating venues for events at places we have not seen.
func (a *Aggregator) syncFromProvider(ctx context.Context, origin geo.Point, radiusMiles float64, limit int) ([]domain.Event, error) {
	now := a.now()
	found, err := a.provider.SearchEvents(ctx, SearchQuery{
		Location:    fmt.Sprintf("%v,%v", origin.Latitude, origin.Longitude),
		From:        now,
		To:          now.AddDate(0, 0, 30),
		RadiusMiles: int(radiusMiles),
		MaxResults:  limit,
	})
	if err != nil {
		return nil, err
	}

	var synced []domain.Event
	for i := range found {
		e, err := a.syncOne(ctx, &found[i])
		if err != nil {
			log.Error().Err(err).Str("external_id", found[i].ExternalID).Msg("failed to sync event")
			continue
		}
		synced = append(synced, *e)
	}
	log.Info().Int("count", len(synced)).Str("source", a.provider.Name()).Msg("synced external events")
	return synced, nil
}

func (a *Aggregator) syncOne(ctx context.Context, pe *ProviderEvent) (*domain.Event, error) {
	venue, err := a.resolveVenue(ctx, pe)
	if err != nil {
		return nil, err
	}

	e := &domain.Event{
		Title:              pe.Title,
		Description:        pe.Description,
		VenueID:            venue.ID,
		StartDate:          pe.StartDate,
		StartTime:          pe.StartTime,
		EndDate:            pe.EndDate,
		EndTime:            pe.EndTime,
		Cost:               pe.Cost,
		RegistrationURL:    pe.RegistrationURL,
		EventURL:           pe.EventURL,
		AccessibilityNotes: pe.AccessibilityNotes,
		// The venue's entrance accessibility carries over to its events.
		WheelchairAccessible: venue.WheelchairAccessible,
		Source:               a.provider.Name(),
		ExternalID:           pe.ExternalID,
	}
	if err := a.events.UpsertExternal(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// resolveVenue finds the stored venue for a provider event, creating a
// minimal record keyed by the provider's venue ID when none exists.
func (a *Aggregator) resolveVenue(ctx context.Context, pe *ProviderEvent) (*domain.Venue, error) {
	placeID := fmt.Sprintf("%s_venue_%s", a.provider.Name(), pe.VenueExternalID)

	existing, err := a.venues.GetByPlaceID(ctx, placeID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return nil, err
	}

	v := &domain.Venue{
		PlaceID:   placeID,
		Name:      pe.VenueName,
		Address:   pe.VenueAddress,
		Latitude:  pe.VenueLatitude,
		Longitude: pe.VenueLongitude,
	}
	if v.Name == "" {
		v.Name = pe.VenueAddress
	}
	if err := a.venues.Upsert(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to create event venue %q: %w", v.Name, err)
	}
	return v, nil
}
