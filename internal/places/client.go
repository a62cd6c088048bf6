// Package places integrates with the Google Places API for venue
// discovery: nearby/text/details lookups with response caching, plus
// extraction of accessibility signals from place data.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/EricBell/accessible-outings/internal/cache"
	"github.com/EricBell/accessible-outings/internal/config"
	"github.com/EricBell/accessible-outings/internal/domain"
	"github.com/EricBell/accessible-outings/internal/geo"
)

// maxAPIRadiusMeters is the upstream's cap on nearby search radius.
const maxAPIRadiusMeters = 50000

// detailFields is the field mask requested on details lookups.
const detailFields = "place_id,name,formatted_address,geometry,formatted_phone_number," +
	"website,rating,price_level,opening_hours,photos,types,reviews," +
	"wheelchair_accessible_entrance"

// Place is the subset of a Places API result we consume.
type Place struct {
	PlaceID          string  `json:"place_id"`
	Name             string  `json:"name"`
	FormattedAddress string  `json:"formatted_address"`
	Vicinity         string  `json:"vicinity"`
	Phone            string  `json:"formatted_phone_number"`
	Website          string  `json:"website"`
	Rating           *float64 `json:"rating"`
	PriceLevel       *int     `json:"price_level"`
	Types            []string `json:"types"`

	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`

	OpeningHours struct {
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`

	Photos []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos"`

	Reviews []struct {
		Text   string `json:"text"`
		Rating int    `json:"rating"`
	} `json:"reviews"`

	WheelchairAccessibleEntrance bool `json:"wheelchair_accessible_entrance"`
}

type searchResponse struct {
	Status  string  `json:"status"`
	Results []Place `json:"results"`
}

type detailsResponse struct {
	Status string `json:"status"`
	Result *Place `json:"result"`
}

// Client calls the Places API with caching, rate limiting, and a
// circuit breaker.
type Client struct {
	baseURL    string
	apiKey     string
	client     *http.Client
	cache      cache.Cache
	nearbyTTL  time.Duration
	detailsTTL time.Duration
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

// NewClient builds a Places client from the places configuration.
func NewClient(cfg config.PlacesConfig, c cache.Cache) *Client {
	return &Client{
		baseURL:    cfg.PlacesBaseURL,
		apiKey:     cfg.APIKey,
		client:     &http.Client{Timeout: cfg.RequestTimeout},
		cache:      c,
		nearbyTTL:  cfg.NearbyTTL,
		detailsTTL: cfg.DetailsTTL,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "places",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values, cacheKey string, ttl time.Duration) ([]byte, error) {
	if body, ok := c.cache.Get(ctx, cacheKey); ok {
		log.Debug().Str("cache_key", cacheKey).Msg("places cache hit")
		return body, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("places rate limit wait: %w", err)
	}

	params.Set("key", c.apiKey)
	reqURL := c.baseURL + "/" + endpoint + "?" + params.Encode()

	raw, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("places HTTP %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		log.Error().Err(err).Str("endpoint", endpoint).Msg("places request failed")
		return nil, fmt.Errorf("places request: %w", err)
	}

	body := raw.([]byte)

	// Only successful payloads are worth caching.
	var status struct {
		Status string `json:"status"`
	}
	if json.Unmarshal(body, &status) == nil && status.Status == "OK" {
		c.cache.Set(ctx, cacheKey, body, ttl)
	}
	return body, nil
}

// SearchNearby finds places around pt within radiusMeters. The keyword and
// venueType narrow the search; an empty venueType defaults to establishment.
func (c *Client) SearchNearby(ctx context.Context, pt geo.Point, radiusMeters int, venueType, keyword string) ([]Place, error) {
	if radiusMeters > maxAPIRadiusMeters {
		radiusMeters = maxAPIRadiusMeters
	}
	if venueType == "" {
		venueType = "establishment"
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%v,%v", pt.Latitude, pt.Longitude))
	params.Set("radius", fmt.Sprintf("%d", radiusMeters))
	params.Set("type", venueType)
	if keyword != "" {
		params.Set("keyword", keyword)
	}

	cacheKey := fmt.Sprintf("nearby_%v_%v_%d_%s_%s", pt.Latitude, pt.Longitude, radiusMeters, venueType, keyword)

	body, err := c.fetch(ctx, "nearbysearch/json", params, cacheKey, c.nearbyTTL)
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse nearby search response: %w", err)
	}
	if parsed.Status != "OK" && parsed.Status != "ZERO_RESULTS" {
		log.Warn().Str("status", parsed.Status).Msg("places nearby search failed")
		return nil, fmt.Errorf("places nearby search status %s", parsed.Status)
	}
	return parsed.Results, nil
}

// TextSearch finds places matching a free-form query, optionally biased
// around a location.
func (c *Client) TextSearch(ctx context.Context, query string, pt *geo.Point, radiusMeters int) ([]Place, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("type", "establishment")
	if pt != nil {
		params.Set("location", fmt.Sprintf("%v,%v", pt.Latitude, pt.Longitude))
		params.Set("radius", fmt.Sprintf("%d", radiusMeters))
	}

	h := fnv.New64a()
	h.Write([]byte(query))
	cacheKey := fmt.Sprintf("text_search_%x_%v_%d", h.Sum64(), pt, radiusMeters)

	body, err := c.fetch(ctx, "textsearch/json", params, cacheKey, c.nearbyTTL)
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse text search response: %w", err)
	}
	if parsed.Status != "OK" && parsed.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("places text search status %s", parsed.Status)
	}
	return parsed.Results, nil
}

// Details fetches the full record for a place.
func (c *Client) Details(ctx context.Context, placeID string) (*Place, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailFields)

	body, err := c.fetch(ctx, "details/json", params, "place_details_"+placeID, c.detailsTTL)
	if err != nil {
		return nil, err
	}

	var parsed detailsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse place details response: %w", err)
	}
	if parsed.Status != "OK" || parsed.Result == nil {
		return nil, fmt.Errorf("places details status %s", parsed.Status)
	}
	return parsed.Result, nil
}

// SearchByCategory fans nearby searches out over the category's keywords,
// deduplicating by place ID. At most three keywords are queried and at most
// sixty places returned.
func (c *Client) SearchByCategory(ctx context.Context, pt geo.Point, category *domain.VenueCategory, radiusMeters int) ([]Place, error) {
	const maxKeywords = 3
	const maxResults = 60

	keywords := []string(category.SearchKeywords)
	if len(keywords) == 0 {
		keywords = []string{strings.ToLower(category.Name)}
	}
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	seen := make(map[string]bool)
	var all []Place
	for _, kw := range keywords {
		results, err := c.SearchNearby(ctx, pt, radiusMeters, "", kw)
		if err != nil {
			return nil, err
		}
		for _, p := range results {
			if p.PlaceID == "" || seen[p.PlaceID] {
				continue
			}
			seen[p.PlaceID] = true
			all = append(all, p)
		}
		if len(all) >= maxResults {
			break
		}
	}

	if len(all) > maxResults {
		all = all[:maxResults]
	}
	return all, nil
}

// PhotoURL builds a photo fetch URL for a photo reference.
func (c *Client) PhotoURL(photoReference string, maxWidth int) string {
	return fmt.Sprintf("%s/photo?maxwidth=%d&photoreference=%s&key=%s",
		c.baseURL, maxWidth, url.QueryEscape(photoReference), url.QueryEscape(c.apiKey))
}
