// Package events aggregates venue events from local storage and external
// event APIs.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/EricBell/accessible-outings/internal/config"
)

// ProviderEvent is the provider-independent shape of an external event.
type ProviderEvent struct {
	ExternalID  string
	Title       string
	Description string

	StartDate *time.Time
	StartTime string
	EndDate   *time.Time
	EndTime   string

	VenueExternalID string
	VenueName       string
	VenueAddress    string
	VenueLatitude   *float64
	VenueLongitude  *float64

	Cost               string
	RegistrationURL    string
	EventURL           string
	AccessibilityNotes string
}

// SearchQuery describes an external event search.
type SearchQuery struct {
	Location    string // free-form address, ZIP, or "lat,lon"
	From        time.Time
	To          time.Time
	RadiusMiles int
	MaxResults  int
}

// Provider is an external event source.
type Provider interface {
	Name() string
	SearchEvents(ctx context.Context, q SearchQuery) ([]ProviderEvent, error)
}

// accessibilityPhrases are scanned for in event descriptions and venue
// text to surface accessibility mentions.
var accessibilityPhrases = []string{
	"wheelchair accessible", "wheelchair access", "ada compliant",
	"accessible parking", "accessible restroom", "elevator access",
	"hearing loop", "sign language", "asl interpreter",
	"braille", "large print", "audio description",
	"mobility assistance", "accessible entrance",
}

// scanAccessibility returns the accessibility phrases found in the text,
// joined for storage as notes.
func scanAccessibility(parts ...string) string {
	text := strings.ToLower(strings.Join(parts, " "))
	var found []string
	for _, phrase := range accessibilityPhrases {
		if strings.Contains(text, phrase) {
			found = append(found, phrase)
		}
	}
	return strings.Join(found, "; ")
}

// maxPageSize is the upstream's per-page result cap.
const maxPageSize = 50

// EventbriteProvider searches the Eventbrite events API.
type EventbriteProvider struct {
	baseURL string
	token   string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewEventbrite builds an Eventbrite provider from the events configuration.
func NewEventbrite(cfg config.EventsConfig) *EventbriteProvider {
	return &EventbriteProvider{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "eventbrite",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

func (p *EventbriteProvider) Name() string { return "eventbrite" }

type eventbriteEvent struct {
	ID   string `json:"id"`
	Name struct {
		Text string `json:"text"`
	} `json:"name"`
	Description struct {
		Text string `json:"text"`
	} `json:"description"`
	Start struct {
		UTC   string `json:"utc"`
		Local string `json:"local"`
	} `json:"start"`
	End struct {
		UTC   string `json:"utc"`
		Local string `json:"local"`
	} `json:"end"`
	URL    string `json:"url"`
	IsFree bool   `json:"is_free"`
	Venue  *struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
		Address   struct {
			Address1   string `json:"address_1"`
			City       string `json:"city"`
			Region     string `json:"region"`
			PostalCode string `json:"postal_code"`
		} `json:"address"`
	} `json:"venue"`
}

type eventbriteSearchResponse struct {
	Events []eventbriteEvent `json:"events"`
}

// SearchEvents queries Eventbrite for events near the query location.
func (p *EventbriteProvider) SearchEvents(ctx context.Context, q SearchQuery) ([]ProviderEvent, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("eventbrite rate limit wait: %w", err)
	}

	pageSize := q.MaxResults
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	params := url.Values{}
	params.Set("location.address", q.Location)
	params.Set("location.within", fmt.Sprintf("%dmi", q.RadiusMiles))
	params.Set("start_date.range_start", q.From.UTC().Format("2006-01-02T15:04:05"))
	params.Set("start_date.range_end", q.To.UTC().Format("2006-01-02T15:04:05"))
	params.Set("sort_by", "date")
	params.Set("expand", "venue")
	params.Set("page_size", fmt.Sprintf("%d", pageSize))

	reqURL := p.baseURL + "/events/search/?" + params.Encode()

	raw, err := p.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+p.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("eventbrite authentication failed")
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("eventbrite HTTP %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		log.Error().Err(err).Str("location", q.Location).Msg("eventbrite search failed")
		return nil, fmt.Errorf("eventbrite search: %w", err)
	}

	var parsed eventbriteSearchResponse
	if err := json.Unmarshal(raw.([]byte), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse eventbrite response: %w", err)
	}

	events := make([]ProviderEvent, 0, len(parsed.Events))
	for i := range parsed.Events {
		ev, ok := p.convert(&parsed.Events[i])
		if !ok {
			continue
		}
		events = append(events, ev)
	}

	log.Debug().Int("count", len(events)).Str("location", q.Location).Msg("eventbrite events retrieved")
	return events, nil
}

// convert maps an upstream event to the provider-independent shape,
// rejecting events without a title, start, or venue.
func (p *EventbriteProvider) convert(e *eventbriteEvent) (ProviderEvent, bool) {
	title := strings.TrimSpace(e.Name.Text)
	start, startTime := parseWhen(e.Start.UTC, e.Start.Local)
	if title == "" || start == nil {
		return ProviderEvent{}, false
	}

	ev := ProviderEvent{
		ExternalID:      e.ID,
		Title:           title,
		Description:     truncate(e.Description.Text, 1000),
		StartDate:       start,
		StartTime:       startTime,
		EventURL:        e.URL,
		RegistrationURL: e.URL,
		Cost:            "Check website",
	}
	if e.IsFree {
		ev.Cost = "Free"
	}
	if end, endTime := parseWhen(e.End.UTC, e.End.Local); end != nil {
		ev.EndDate = end
		ev.EndTime = endTime
	}

	if e.Venue != nil {
		ev.VenueExternalID = e.Venue.ID
		ev.VenueName = e.Venue.Name
		addr := e.Venue.Address
		var parts []string
		for _, s := range []string{addr.Address1, addr.City, addr.Region, addr.PostalCode} {
			if s != "" {
				parts = append(parts, s)
			}
		}
		ev.VenueAddress = strings.Join(parts, ", ")

		var lat, lon float64
		if _, err := fmt.Sscanf(e.Venue.Latitude, "%f", &lat); err == nil {
			if _, err := fmt.Sscanf(e.Venue.Longitude, "%f", &lon); err == nil {
				ev.VenueLatitude = &lat
				ev.VenueLongitude = &lon
			}
		}
	}
	if ev.VenueName == "" && ev.VenueAddress == "" {
		return ProviderEvent{}, false
	}

	ev.AccessibilityNotes = scanAccessibility(ev.Description, ev.VenueAddress)
	return ev, true
}

// parseWhen parses the upstream's UTC or local timestamp, returning the
// date and an HH:MM display time.
func parseWhen(utc, local string) (*time.Time, string) {
	for _, candidate := range []struct {
		value  string
		layout string
	}{
		{utc, "2006-01-02T15:04:05Z"},
		{local, "2006-01-02T15:04:05"},
	} {
		if candidate.value == "" {
			continue
		}
		ts, err := time.Parse(candidate.layout, candidate.value)
		if err != nil {
			continue
		}
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		return &day, ts.Format("15:04")
	}
	return nil, ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
