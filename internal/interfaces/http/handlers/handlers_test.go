package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EricBell/accessible-outings/internal/cache"
	"github.com/EricBell/accessible-outings/internal/config"
	"github.com/EricBell/accessible-outings/internal/domain"
	"github.com/EricBell/accessible-outings/internal/geo"
	"github.com/EricBell/accessible-outings/internal/geocoding"
	contracts "github.com/EricBell/accessible-outings/internal/http"
	"github.com/EricBell/accessible-outings/internal/persistence"
	"github.com/EricBell/accessible-outings/internal/places"
	"github.com/EricBell/accessible-outings/internal/score"
)

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }

type fakeGeocoder struct {
	origin  geo.Point
	zipInfo *geocoding.ZipInfo
	err     error
}

func (f *fakeGeocoder) SearchOrigin(context.Context, string, string) (geo.Point, error) {
	return f.origin, f.err
}

func (f *fakeGeocoder) LookupZip(context.Context, string) (*geocoding.ZipInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.zipInfo, nil
}

func (f *fakeGeocoder) DisplayName(context.Context, geo.Point) string { return "Concord, NH" }

type fakeSearcher struct {
	ranked []score.RankedVenue
	venue  *domain.Venue
	err    error
	params places.SearchParams
}

func (f *fakeSearcher) Search(_ context.Context, p places.SearchParams) ([]score.RankedVenue, error) {
	f.params = p
	return f.ranked, f.err
}

func (f *fakeSearcher) VenueDetails(context.Context, int) (*domain.Venue, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.venue == nil {
		return nil, persistence.ErrNotFound
	}
	return f.venue, nil
}

type fakeEvents struct {
	events []domain.Event
	err    error
}

func (f *fakeEvents) ByVenue(context.Context, int) ([]domain.Event, error) {
	return f.events, f.err
}

func (f *fakeEvents) Nearby(context.Context, geo.Point, float64, int) ([]domain.Event, error) {
	return f.events, f.err
}

type fakeVenueRepo struct {
	venues  map[int]*domain.Venue
	similar []domain.Venue
}

func (f *fakeVenueRepo) GetByID(_ context.Context, id int) (*domain.Venue, error) {
	v, ok := f.venues[id]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return v, nil
}

func (f *fakeVenueRepo) GetByPlaceID(context.Context, string) (*domain.Venue, error) {
	return nil, persistence.ErrNotFound
}

func (f *fakeVenueRepo) Upsert(context.Context, *domain.Venue) error { return nil }

func (f *fakeVenueRepo) SearchWithin(context.Context, geo.BoundingBox, persistence.VenueFilter) ([]domain.Venue, error) {
	return nil, nil
}

func (f *fakeVenueRepo) SimilarAccessible(context.Context, int, int) ([]domain.Venue, error) {
	return f.similar, nil
}

type fakeCategoryRepo struct {
	categories []domain.VenueCategory
	stats      persistence.CategoryStats
	features   []domain.AccessibilityFeatures
}

func (f *fakeCategoryRepo) List(context.Context) ([]domain.VenueCategory, error) {
	return f.categories, nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id int) (*domain.VenueCategory, error) {
	for i := range f.categories {
		if f.categories[i].ID == id {
			return &f.categories[i], nil
		}
	}
	return nil, persistence.ErrNotFound
}

func (f *fakeCategoryRepo) Stats(context.Context, int) (*persistence.CategoryStats, error) {
	s := f.stats
	return &s, nil
}

func (f *fakeCategoryRepo) VenueFeatures(context.Context, int) ([]domain.AccessibilityFeatures, error) {
	return f.features, nil
}

type fakeFavoriteRepo struct {
	favorites map[int]map[int]*domain.UserFavorite
}

func (f *fakeFavoriteRepo) Upsert(_ context.Context, fav *domain.UserFavorite) error {
	if f.favorites == nil {
		f.favorites = map[int]map[int]*domain.UserFavorite{}
	}
	if f.favorites[fav.UserID] == nil {
		f.favorites[fav.UserID] = map[int]*domain.UserFavorite{}
	}
	fav.ID = len(f.favorites[fav.UserID]) + 1
	f.favorites[fav.UserID][fav.VenueID] = fav
	return nil
}

func (f *fakeFavoriteRepo) Remove(_ context.Context, userID, venueID int) error {
	if f.favorites[userID] == nil || f.favorites[userID][venueID] == nil {
		return persistence.ErrNotFound
	}
	delete(f.favorites[userID], venueID)
	return nil
}

func (f *fakeFavoriteRepo) ListByUser(_ context.Context, userID int) ([]domain.UserFavorite, error) {
	var out []domain.UserFavorite
	for _, fav := range f.favorites[userID] {
		out = append(out, *fav)
	}
	return out, nil
}

func (f *fakeFavoriteRepo) IsFavorited(_ context.Context, userID, venueID int) (bool, error) {
	return f.favorites[userID] != nil && f.favorites[userID][venueID] != nil, nil
}

type fakeReviewRepo struct {
	reviews []domain.UserReview
}

func (f *fakeReviewRepo) Upsert(_ context.Context, r *domain.UserReview) error {
	r.ID = len(f.reviews) + 1
	f.reviews = append(f.reviews, *r)
	return nil
}

func (f *fakeReviewRepo) GetByUserVenue(_ context.Context, userID, venueID int) (*domain.UserReview, error) {
	for i := range f.reviews {
		if f.reviews[i].UserID == userID && f.reviews[i].VenueID == venueID {
			return &f.reviews[i], nil
		}
	}
	return nil, persistence.ErrNotFound
}

func (f *fakeReviewRepo) ListByVenue(_ context.Context, venueID, limit int) ([]domain.UserReview, error) {
	var out []domain.UserReview
	for _, r := range f.reviews {
		if r.VenueID == venueID && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) ListByUser(_ context.Context, userID, limit int) ([]domain.UserReview, error) {
	var out []domain.UserReview
	for _, r := range f.reviews {
		if r.UserID == userID && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) VenueRatings(_ context.Context, venueID int) ([]int, error) {
	var out []int
	for _, r := range f.reviews {
		if r.VenueID == venueID && r.AccessibilityRating != nil {
			out = append(out, *r.AccessibilityRating)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[int]*domain.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return u, nil
}

type fakeHistoryRepo struct {
	logged  []domain.SearchHistory
	popular []domain.PopularSearch
}

func (f *fakeHistoryRepo) Log(_ context.Context, s *domain.SearchHistory) error {
	f.logged = append(f.logged, *s)
	return nil
}

func (f *fakeHistoryRepo) RecentByUser(_ context.Context, userID, limit int) ([]domain.SearchHistory, error) {
	return f.logged, nil
}

func (f *fakeHistoryRepo) Popular(context.Context, time.Time, int) ([]domain.PopularSearch, error) {
	return f.popular, nil
}

type fakePinger struct{ err error }

func (f *fakePinger) PingContext(context.Context) error { return f.err }

type fixture struct {
	handlers  *Handlers
	geocoder  *fakeGeocoder
	searcher  *fakeSearcher
	events    *fakeEvents
	venues    *fakeVenueRepo
	favorites *fakeFavoriteRepo
	reviews   *fakeReviewRepo
	history   *fakeHistoryRepo
	pinger    *fakePinger
	users     *fakeUserRepo
	router    *mux.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.Default()
	cfg.Places.APIKey = "test-key"

	f := &fixture{
		geocoder: &fakeGeocoder{origin: geo.Point{Latitude: 43.2081, Longitude: -71.5376}},
		searcher: &fakeSearcher{},
		events:   &fakeEvents{},
		venues:   &fakeVenueRepo{venues: map[int]*domain.Venue{}},
		favorites: &fakeFavoriteRepo{
			favorites: map[int]map[int]*domain.UserFavorite{},
		},
		reviews: &fakeReviewRepo{},
		history: &fakeHistoryRepo{},
		pinger:  &fakePinger{},
		users: &fakeUserRepo{users: map[int]*domain.User{
			42: {ID: 42, Username: "jo"},
		}},
	}

	categories := &fakeCategoryRepo{
		categories: []domain.VenueCategory{
			{ID: 1, Name: "Museums"},
			{ID: 2, Name: "Botanical Gardens"},
		},
		stats: persistence.CategoryStats{VenueCount: 4, AccessibleCount: 3},
		features: []domain.AccessibilityFeatures{
			{WheelchairAccessible: true, RampAccess: true},
			{WheelchairAccessible: true},
		},
	}

	f.handlers = New(Deps{
		Config:     &cfg,
		Geocoder:   f.geocoder,
		Searcher:   f.searcher,
		Events:     f.events,
		Cache:      cache.NewMemory(),
		DB:         f.pinger,
		Venues:     f.venues,
		Categories: categories,
		Favorites:  f.favorites,
		Reviews:    f.reviews,
		History:    f.history,
		Users:      f.users,
	})

	h := f.handlers
	r := mux.NewRouter()
	r.HandleFunc("/api/search", h.Search).Methods("GET")
	r.HandleFunc("/api/geocode", h.Geocode).Methods("GET")
	r.HandleFunc("/api/categories", h.Categories).Methods("GET")
	r.HandleFunc("/api/venues/{id:[0-9]+}", h.VenueDetail).Methods("GET")
	r.HandleFunc("/api/venues/{id:[0-9]+}/reviews", h.ListVenueReviews).Methods("GET")
	r.HandleFunc("/api/venues/{id:[0-9]+}/reviews", h.SubmitReview).Methods("POST")
	r.HandleFunc("/api/accessibility-score/{id:[0-9]+}", h.AccessibilityScore).Methods("GET")
	r.HandleFunc("/api/favorites", h.ListFavorites).Methods("GET")
	r.HandleFunc("/api/favorites", h.AddFavorite).Methods("POST")
	r.HandleFunc("/api/favorites/{id:[0-9]+}", h.AddFavorite).Methods("POST")
	r.HandleFunc("/api/favorites/{id:[0-9]+}", h.RemoveFavorite).Methods("DELETE")
	r.HandleFunc("/api/reviews", h.ListUserReviews).Methods("GET")
	r.HandleFunc("/api/reviews", h.SubmitReview).Methods("POST")
	r.HandleFunc("/api/search-history", h.SearchHistory).Methods("GET")
	r.HandleFunc("/api/popular-searches", h.PopularSearches).Methods("GET")
	r.HandleFunc("/api/events", h.Events).Methods("GET")
	r.HandleFunc("/api/cache/clear", h.ClearCache).Methods("POST")
	r.HandleFunc("/api/health", h.Health).Methods("GET")
	f.router = r

	return f
}

func (f *fixture) do(t *testing.T, method, target, userID string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestSearch_RequiresZip(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "GET", "/api/search", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp contracts.ErrorResponse
	decode(t, rec, &resp)
	assert.Equal(t, "ZIP code is required", resp.Error)
}

func TestSearch_InvalidZip(t *testing.T) {
	f := newFixture(t)
	f.geocoder.err = geocoding.ErrInvalidZip

	rec := f.do(t, "GET", "/api/search?zip_code=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch_ReturnsRankedVenues(t *testing.T) {
	f := newFixture(t)
	f.searcher.ranked = []score.RankedVenue{
		{
			Venue: domain.Venue{ID: 7, Name: "Currier Museum of Art"},
			Score: 57,
			Tier:  score.TierFair,
		},
	}

	rec := f.do(t, "GET", "/api/search?zip_code=03301&radius=25&accessible_only=true", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp contracts.SearchResponse
	decode(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.TotalResults)
	assert.Equal(t, "Currier Museum of Art", resp.Venues[0].Venue.Name)
	assert.Equal(t, "03301", resp.SearchParams.ZipCode)
	assert.Equal(t, 25, resp.SearchParams.Radius)
	assert.True(t, resp.SearchParams.AccessibleOnly)
	assert.Equal(t, "Concord, NH", resp.SearchParams.LocationName)

	assert.Equal(t, 25, f.searcher.params.RadiusMiles)
	assert.True(t, f.searcher.params.AccessibleOnly)
}

func TestSearch_CapsRadiusAndLogsHistory(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, "GET", "/api/search?zip_code=03301&radius=500&category_id=2", "42", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 60, f.searcher.params.RadiusMiles)
	require.Len(t, f.history.logged, 1)
	entry := f.history.logged[0]
	assert.Equal(t, 42, entry.UserID)
	assert.Equal(t, "03301", entry.SearchZip)
	assert.Equal(t, 60, entry.SearchRadius)
	require.NotNil(t, entry.CategoryFilter)
	assert.Equal(t, 2, *entry.CategoryFilter)
}

func TestSearch_TextQuery(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, "GET", "/api/search?zip_code=03301&q=sculpture+garden", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "sculpture garden", f.searcher.params.Query)

	var resp contracts.SearchResponse
	decode(t, rec, &resp)
	assert.Equal(t, "sculpture garden", resp.SearchParams.Query)
}

func TestSearch_AddressOnly(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, "GET", "/api/search?address=150+Ash+St+Manchester", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSearch_AnonymousNotLogged(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "GET", "/api/search?zip_code=03301", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.history.logged)
}

func TestVenueDetail(t *testing.T) {
	f := newFixture(t)
	lat, lon := 42.9956, -71.4548
	venue := &domain.Venue{
		ID:          7,
		Name:        "Currier Museum of Art",
		Address:     "150 Ash St",
		City:        "Manchester",
		State:       "NH",
		ZipCode:     "03104",
		CategoryID:  ptrInt(1),
		Latitude:    ptrFloat(lat),
		Longitude:   ptrFloat(lon),
		HoursMonday: "Closed",
		HoursSunday: "10:00 AM - 5:00 PM",
		AccessibilityFeatures: domain.AccessibilityFeatures{
			WheelchairAccessible: true,
			RampAccess:           true,
			ElevatorAccess:       true,
			AccessibleRestroom:   true,
		},
	}
	f.searcher.venue = venue
	f.venues.venues[7] = venue
	f.venues.similar = []domain.Venue{
		{ID: 9, Name: "SEE Science Center", Latitude: ptrFloat(42.9995), Longitude: ptrFloat(-71.4622)},
	}
	f.reviews.reviews = []domain.UserReview{
		{ID: 1, UserID: 42, VenueID: 7, ReviewText: "Lovely visit", AccessibilityRating: ptrInt(4)},
		{ID: 2, UserID: 43, VenueID: 7, AccessibilityRating: ptrInt(5)},
	}
	require.NoError(t, f.favorites.Upsert(context.Background(), &domain.UserFavorite{UserID: 42, VenueID: 7}))

	rec := f.do(t, "GET", "/api/venues/7", "42", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp contracts.VenueDetailResponse
	decode(t, rec, &resp)
	detail := resp.Venue
	assert.Equal(t, "Currier Museum of Art", detail.Venue.Name)
	assert.Equal(t, "150 Ash St, Manchester, NH, 03104", detail.FullAddress)
	assert.Equal(t, "Closed", detail.Hours["monday"])
	assert.Equal(t, "10:00 AM - 5:00 PM", detail.Hours["sunday"])
	assert.Equal(t, 57, detail.AccessibilitySummary.Score)
	assert.Equal(t, score.TierFair, detail.AccessibilitySummary.Tier)
	require.NotNil(t, detail.AverageAccessibilityRating)
	assert.InDelta(t, 4.5, *detail.AverageAccessibilityRating, 1e-9)
	assert.True(t, detail.IsFavorited)
	require.NotNil(t, detail.UserReview)
	assert.Equal(t, "Lovely visit", detail.UserReview.ReviewText)
	require.Len(t, detail.SimilarVenues, 1)
	assert.Equal(t, "SEE Science Center", detail.SimilarVenues[0].Venue.Name)
	assert.NotEmpty(t, detail.Recommendations)
}

func TestVenueDetail_NotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "GET", "/api/venues/99", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAccessibilityScore(t *testing.T) {
	f := newFixture(t)
	f.venues.venues[3] = &domain.Venue{
		ID: 3,
		AccessibilityFeatures: domain.AccessibilityFeatures{
			WheelchairAccessible: true,
			AccessibleParking:    true,
			AccessibleRestroom:   true,
			ElevatorAccess:       true,
			WideDoorways:         true,
			RampAccess:           true,
		},
	}

	rec := f.do(t, "GET", "/api/accessibility-score/3", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp contracts.ScoreResponse
	decode(t, rec, &resp)
	assert.Equal(t, 3, resp.VenueID)
	assert.Equal(t, 86, resp.AccessibilitySummary.Score)
	assert.Equal(t, score.TierExcellent, resp.AccessibilitySummary.Tier)
}

func TestCategories_Insights(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "GET", "/api/categories", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp contracts.CategoriesResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Categories, 2)

	insights := resp.Categories[0].Insights
	assert.Equal(t, 4, insights.VenueCount)
	assert.Equal(t, 3, insights.AccessibleCount)
	assert.Equal(t, 75.0, insights.AccessibilityPercentage)
	require.NotEmpty(t, insights.CommonFeatures)
	assert.Equal(t, "Wheelchair Accessible", insights.CommonFeatures[0].Feature)
	assert.Equal(t, 2, insights.CommonFeatures[0].Count)
}

func TestFavorites_RequireAuth(t *testing.T) {
	f := newFixture(t)
	for _, tc := range []struct{ method, target string }{
		{"GET", "/api/favorites"},
		{"POST", "/api/favorites/1"},
		{"DELETE", "/api/favorites/1"},
		{"GET", "/api/reviews"},
		{"GET", "/api/search-history"},
	} {
		rec := f.do(t, tc.method, tc.target, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.target)
	}
}

func TestRequireUser_UnknownUser(t *testing.T) {
	f := newFixture(t)
	f.venues.venues[5] = &domain.Venue{ID: 5}

	rec := f.do(t, "POST", "/api/favorites/5", "999", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp contracts.ErrorResponse
	decode(t, rec, &resp)
	assert.Equal(t, "Unknown user", resp.Error)
}

func TestAddFavorite(t *testing.T) {
	f := newFixture(t)
	f.venues.venues[5] = &domain.Venue{ID: 5, Name: "Bedrock Gardens"}

	rec := f.do(t, "POST", "/api/favorites/5", "42", `{"notes":"quiet on weekdays"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp contracts.FavoriteResponse
	decode(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "quiet on weekdays", resp.Favorite.Notes)

	fav, err := f.favorites.IsFavorited(context.Background(), 42, 5)
	require.NoError(t, err)
	assert.True(t, fav)
}

func TestAddFavorite_VenueIDInBody(t *testing.T) {
	f := newFixture(t)
	f.venues.venues[5] = &domain.Venue{ID: 5}

	rec := f.do(t, "POST", "/api/favorites", "42", `{"venue_id":5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	fav, err := f.favorites.IsFavorited(context.Background(), 42, 5)
	require.NoError(t, err)
	assert.True(t, fav)
}

func TestSubmitReview_VenueIDInBody(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, "POST", "/api/reviews", "42", `{"venue_id":7,"accessibility_rating":4}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp contracts.ReviewResponse
	decode(t, rec, &resp)
	assert.Equal(t, 7, resp.Review.VenueID)
}

func TestAddFavorite_VenueMissing(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "POST", "/api/favorites/99", "42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveFavorite(t *testing.T) {
	f := newFixture(t)
	f.venues.venues[5] = &domain.Venue{ID: 5}
	require.NoError(t, f.favorites.Upsert(context.Background(), &domain.UserFavorite{UserID: 42, VenueID: 5}))

	rec := f.do(t, "DELETE", "/api/favorites/5", "42", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, "DELETE", "/api/favorites/5", "42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitReview(t *testing.T) {
	f := newFixture(t)
	body := `{"overall_rating":5,"accessibility_rating":4,"review_text":"Ramps everywhere","visit_date":"2026-08-15"}`

	rec := f.do(t, "POST", "/api/venues/7/reviews", "42", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp contracts.ReviewResponse
	decode(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "Ramps everywhere", resp.Review.ReviewText)
	require.NotNil(t, resp.Review.VisitDate)
	assert.Equal(t, 2026, resp.Review.VisitDate.Year())

	// A second submission updates, not duplicates.
	rec = f.do(t, "POST", "/api/venues/7/reviews", "42", `{"overall_rating":3}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSubmitReview_RatingOutOfRange(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "POST", "/api/venues/7/reviews", "42", `{"overall_rating":9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeocode(t *testing.T) {
	f := newFixture(t)
	f.geocoder.zipInfo = &geocoding.ZipInfo{
		ZipCode:   "03301",
		Latitude:  43.2081,
		Longitude: -71.5376,
		City:      "Concord",
		State:     "NH",
	}

	rec := f.do(t, "GET", "/api/geocode?zip_code=03301", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp contracts.GeocodeResponse
	decode(t, rec, &resp)
	assert.Equal(t, "03301", resp.ZipCode)
	assert.Equal(t, "Concord, NH", resp.LocationName)
	assert.InDelta(t, 43.2081, resp.Latitude, 1e-9)
}

func TestGeocode_InvalidZip(t *testing.T) {
	f := newFixture(t)
	f.geocoder.err = geocoding.ErrInvalidZip
	rec := f.do(t, "GET", "/api/geocode?zip_code=123", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPopularSearches_ResolvesCategoryNames(t *testing.T) {
	f := newFixture(t)
	f.history.popular = []domain.PopularSearch{
		{SearchZip: "03301", CategoryFilter: ptrInt(2), SearchCount: 12},
		{SearchZip: "03104", SearchCount: 5},
	}

	rec := f.do(t, "GET", "/api/popular-searches", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp contracts.PopularSearchesResponse
	decode(t, rec, &resp)
	require.Len(t, resp.PopularSearches, 2)
	assert.Equal(t, "Botanical Gardens", resp.PopularSearches[0].CategoryName)
	assert.Empty(t, resp.PopularSearches[1].CategoryName)
}

func TestEvents_ByVenue(t *testing.T) {
	f := newFixture(t)
	f.events.events = []domain.Event{{ID: 1, Title: "Garden Tour"}}

	rec := f.do(t, "GET", "/api/events?venue_id=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp contracts.EventsResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "Garden Tour", resp.Events[0].Title)
}

func TestEvents_RequiresLocation(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "GET", "/api/events", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvents_Nearby(t *testing.T) {
	f := newFixture(t)
	f.events.events = []domain.Event{{ID: 2, Title: "Sensory-Friendly Morning"}}

	rec := f.do(t, "GET", "/api/events?lat=43.2081&lon=-71.5376&radius=10", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp contracts.EventsResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Events, 1)
}

func TestClearCache_Pattern(t *testing.T) {
	f := newFixture(t)
	c := f.handlers.cache
	c.Set(context.Background(), "nearby_1", []byte("a"), time.Minute)
	c.Set(context.Background(), "nearby_2", []byte("b"), time.Minute)
	c.Set(context.Background(), "geocode_zip_03301", []byte("c"), time.Minute)

	rec := f.do(t, "POST", "/api/cache/clear?pattern=nearby", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp contracts.CacheClearResponse
	decode(t, rec, &resp)
	assert.Equal(t, 2, resp.ClearedCount)

	_, ok := c.Get(context.Background(), "geocode_zip_03301")
	assert.True(t, ok)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "GET", "/api/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp contracts.HealthResponse
	decode(t, rec, &resp)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "connected", resp.Database)
	assert.Equal(t, "configured", resp.PlacesAPI)
}

func TestHealth_DatabaseDown(t *testing.T) {
	f := newFixture(t)
	f.pinger.err = errors.New("connection refused")

	rec := f.do(t, "GET", "/api/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp contracts.HealthResponse
	decode(t, rec, &resp)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "unreachable", resp.Database)
}
