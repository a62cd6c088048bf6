// Package geocoding converts ZIP codes and street addresses to
// coordinates via the Google Geocoding API, with response caching,
// client-side rate limiting, and a circuit breaker around the upstream.
package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/EricBell/accessible-outings/internal/cache"
	"github.com/EricBell/accessible-outings/internal/config"
	"github.com/EricBell/accessible-outings/internal/geo"
)

var (
	// ErrInvalidZip is returned for input that is not a US ZIP code.
	ErrInvalidZip = errors.New("invalid ZIP code format")
	// ErrNoResults is returned when the upstream has no match for the input.
	ErrNoResults = errors.New("no geocoding results")
)

var (
	zipFive     = regexp.MustCompile(`^\d{5}$`)
	zipFivePlus = regexp.MustCompile(`^\d{5}-\d{4}$`)
	zipNine     = regexp.MustCompile(`^\d{9}$`)
	digitRe     = regexp.MustCompile(`\d`)
)

// ValidateZip reports whether s is a US ZIP code in 5-digit, ZIP+4, or
// undashed 9-digit form.
func ValidateZip(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return zipFive.MatchString(s) || zipFivePlus.MatchString(s) || zipNine.MatchString(s)
}

// NormalizeZip reduces a ZIP code to its 5-digit form. Input with fewer
// than five digits is returned trimmed but otherwise unchanged.
func NormalizeZip(s string) string {
	s = strings.TrimSpace(s)
	digits := digitRe.FindAllString(s, -1)
	if len(digits) >= 5 {
		return strings.Join(digits[:5], "")
	}
	return s
}

// AddressInfo is the parsed result of a reverse geocode lookup.
type AddressInfo struct {
	FormattedAddress string `json:"formatted_address"`
	StreetNumber     string `json:"street_number,omitempty"`
	Route            string `json:"route,omitempty"`
	City             string `json:"city,omitempty"`
	State            string `json:"state,omitempty"`
	PostalCode       string `json:"postal_code,omitempty"`
	Country          string `json:"country,omitempty"`
}

// ZipInfo describes a ZIP code and its resolved location.
type ZipInfo struct {
	ZipCode          string  `json:"zip_code"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	City             string  `json:"city,omitempty"`
	State            string  `json:"state,omitempty"`
	Country          string  `json:"country,omitempty"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
}

// Service is the geocoding client.
type Service struct {
	baseURL   string
	apiKey    string
	client    *http.Client
	cache     cache.Cache
	ttl       time.Duration
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	defaultPt geo.Point
}

// New builds a Service from the places configuration. The default point
// is the fallback origin used by SearchOrigin when every lookup fails.
func New(cfg config.PlacesConfig, defaultPt geo.Point, c cache.Cache) *Service {
	return &Service{
		baseURL: cfg.GeocodeBaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		cache:   c,
		ttl:     cfg.GeocodeTTL,
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "geocoding",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		defaultPt: defaultPt,
	}
}

// response is the subset of the Google Geocoding payload we consume.
type response struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName  string   `json:"long_name"`
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (s *Service) fetch(ctx context.Context, params url.Values, cacheKey string) (*response, error) {
	if body, ok := s.cache.Get(ctx, cacheKey); ok {
		var cached response
		if err := json.Unmarshal(body, &cached); err == nil {
			log.Debug().Str("cache_key", cacheKey).Msg("geocoding cache hit")
			return &cached, nil
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("geocoding rate limit wait: %w", err)
	}

	params.Set("key", s.apiKey)
	reqURL := s.baseURL + "?" + params.Encode()

	raw, err := s.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("geocoding HTTP %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		log.Error().Err(err).Str("cache_key", cacheKey).Msg("geocoding request failed")
		return nil, fmt.Errorf("geocoding request: %w", err)
	}

	body := raw.([]byte)
	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse geocoding response: %w", err)
	}

	if parsed.Status == "OK" {
		s.cache.Set(ctx, cacheKey, body, s.ttl)
	}
	return &parsed, nil
}

func firstLocation(r *response) (geo.Point, error) {
	if r.Status != "OK" || len(r.Results) == 0 {
		return geo.Point{}, ErrNoResults
	}
	loc := r.Results[0].Geometry.Location
	pt := geo.Point{Latitude: loc.Lat, Longitude: loc.Lng}
	if err := pt.Validate(); err != nil {
		return geo.Point{}, err
	}
	return pt, nil
}

// GeocodeZip resolves a US ZIP code to coordinates.
func (s *Service) GeocodeZip(ctx context.Context, zip string) (geo.Point, error) {
	if !ValidateZip(zip) {
		return geo.Point{}, fmt.Errorf("%w: %q", ErrInvalidZip, zip)
	}
	normalized := NormalizeZip(zip)

	params := url.Values{}
	params.Set("address", normalized)
	params.Set("components", "country:US")

	r, err := s.fetch(ctx, params, "geocode_zip_"+normalized)
	if err != nil {
		return geo.Point{}, err
	}
	return firstLocation(r)
}

// GeocodeAddress resolves a free-form street address to coordinates.
func (s *Service) GeocodeAddress(ctx context.Context, address string) (geo.Point, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return geo.Point{}, ErrNoResults
	}

	h := fnv.New64a()
	h.Write([]byte(address))
	cacheKey := fmt.Sprintf("geocode_address_%x", h.Sum64())

	params := url.Values{}
	params.Set("address", address)

	r, err := s.fetch(ctx, params, cacheKey)
	if err != nil {
		return geo.Point{}, err
	}
	return firstLocation(r)
}

// ReverseGeocode resolves coordinates to address components.
func (s *Service) ReverseGeocode(ctx context.Context, pt geo.Point) (*AddressInfo, error) {
	if err := pt.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%v,%v", pt.Latitude, pt.Longitude))

	r, err := s.fetch(ctx, params, fmt.Sprintf("reverse_geocode_%v_%v", pt.Latitude, pt.Longitude))
	if err != nil {
		return nil, err
	}
	if r.Status != "OK" || len(r.Results) == 0 {
		return nil, ErrNoResults
	}

	res := r.Results[0]
	info := &AddressInfo{FormattedAddress: res.FormattedAddress}
	for _, comp := range res.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "street_number":
				info.StreetNumber = comp.LongName
			case "route":
				info.Route = comp.LongName
			case "locality":
				info.City = comp.LongName
			case "administrative_area_level_1":
				info.State = comp.ShortName
			case "postal_code":
				info.PostalCode = comp.LongName
			case "country":
				info.Country = comp.ShortName
			}
		}
	}
	return info, nil
}

// LookupZip resolves a ZIP code and enriches it with reverse-geocoded
// city/state details. Reverse lookup failures degrade to coordinates only.
func (s *Service) LookupZip(ctx context.Context, zip string) (*ZipInfo, error) {
	pt, err := s.GeocodeZip(ctx, zip)
	if err != nil {
		return nil, err
	}

	info := &ZipInfo{
		ZipCode:   NormalizeZip(zip),
		Latitude:  pt.Latitude,
		Longitude: pt.Longitude,
	}

	addr, err := s.ReverseGeocode(ctx, pt)
	if err != nil {
		log.Warn().Err(err).Str("zip", info.ZipCode).Msg("reverse geocode failed for ZIP lookup")
		return info, nil
	}
	info.City = addr.City
	info.State = addr.State
	info.Country = addr.Country
	info.FormattedAddress = addr.FormattedAddress
	return info, nil
}

// SearchOrigin resolves the origin for a venue search: ZIP first, street
// address second, and the configured default location last.
func (s *Service) SearchOrigin(ctx context.Context, zip, address string) (geo.Point, error) {
	if zip != "" {
		pt, err := s.GeocodeZip(ctx, zip)
		if err == nil {
			return pt, nil
		}
		if errors.Is(err, ErrInvalidZip) && address == "" {
			return geo.Point{}, err
		}
		log.Warn().Err(err).Str("zip", zip).Msg("ZIP geocode failed, trying fallbacks")
	}

	if address != "" {
		pt, err := s.GeocodeAddress(ctx, address)
		if err == nil {
			return pt, nil
		}
		log.Warn().Err(err).Str("address", address).Msg("address geocode failed, using default origin")
	}

	return s.defaultPt, nil
}

// DisplayName returns a human-readable name for coordinates, falling back
// to the raw values when reverse geocoding fails.
func (s *Service) DisplayName(ctx context.Context, pt geo.Point) string {
	addr, err := s.ReverseGeocode(ctx, pt)
	if err == nil {
		switch {
		case addr.City != "" && addr.State != "":
			return addr.City + ", " + addr.State
		case addr.City != "":
			return addr.City
		case addr.State != "":
			return addr.State
		}
	}
	return fmt.Sprintf("%.4f, %.4f", pt.Latitude, pt.Longitude)
}
