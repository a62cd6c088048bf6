package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EricBell/accessible-outings/internal/geo"
	"github.com/EricBell/accessible-outings/internal/persistence"
)

var venueRowColumns = []string{
	"id", "place_id", "name", "address", "city", "state", "zip_code", "phone", "website",
	"latitude", "longitude", "category_id", "external_rating", "price_level",
	"wheelchair_accessible", "accessible_parking", "accessible_restroom",
	"elevator_access", "wide_doorways", "ramp_access", "accessible_seating",
	"accessibility_notes", "verified_accessible",
	"hours_monday", "hours_tuesday", "hours_wednesday", "hours_thursday",
	"hours_friday", "hours_saturday", "hours_sunday", "seasonal_hours",
	"photo_urls", "last_updated", "created_at",
}

func venueRow(id int, name string, lat, lon float64, wheelchair bool) []driverValue {
	now := time.Now()
	return []driverValue{
		id, "place-" + name, name, "1 Main St", "Concord", "NH", "03301", "", "",
		lat, lon, nil, nil, nil,
		wheelchair, false, false,
		false, false, false, false,
		"", false,
		"", "", "", "",
		"", "", "", "",
		pq.StringArray{}, now, now,
	}
}

type driverValue = driver.Value

func TestVenueRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVenueRepo(db, time.Second)

	mock.ExpectQuery(`(?s)SELECT .+ FROM venues WHERE id`).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(venueRowColumns))

	_, err := repo.GetByID(context.Background(), 99)
	assert.True(t, errors.Is(err, persistence.ErrNotFound), "expected ErrNotFound, got %v", err)
}

func TestVenueRepo_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVenueRepo(db, time.Second)

	rows := sqlmock.NewRows(venueRowColumns).
		AddRow(venueRow(1, "Currier Museum", 42.9907, -71.4597, true)...)

	mock.ExpectQuery(`(?s)SELECT .+ FROM venues WHERE id`).
		WithArgs(1).
		WillReturnRows(rows)

	v, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Currier Museum", v.Name)
	assert.True(t, v.WheelchairAccessible)

	loc, ok := v.Location()
	require.True(t, ok)
	assert.InDelta(t, 42.9907, loc.Latitude, 1e-9)
}

func TestVenueRepo_SearchWithin(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVenueRepo(db, time.Second)

	rows := sqlmock.NewRows(venueRowColumns).
		AddRow(venueRow(1, "Currier Museum", 42.9907, -71.4597, true)...).
		AddRow(venueRow(2, "SEE Science Center", 42.9849, -71.4644, false)...)

	mock.ExpectQuery(`(?s)SELECT .+ FROM venues\s+WHERE latitude BETWEEN`).
		WithArgs(42.5, 43.5, -72.0, -71.0, 50).
		WillReturnRows(rows)

	box := geo.BoundingBox{MinLat: 42.5, MaxLat: 43.5, MinLon: -72.0, MaxLon: -71.0}
	venues, err := repo.SearchWithin(context.Background(), box, persistence.VenueFilter{Limit: 50})

	require.NoError(t, err)
	require.Len(t, venues, 2)
	assert.Equal(t, "Currier Museum", venues[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVenueRepo_SearchWithin_CategoryAndAccessibleFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVenueRepo(db, time.Second)

	mock.ExpectQuery(`(?s)SELECT .+ FROM venues\s+WHERE latitude BETWEEN .+ AND category_id = .+ AND wheelchair_accessible = TRUE`).
		WithArgs(42.5, 43.5, -72.0, -71.0, 3).
		WillReturnRows(sqlmock.NewRows(venueRowColumns))

	category := 3
	box := geo.BoundingBox{MinLat: 42.5, MaxLat: 43.5, MinLon: -72.0, MaxLon: -71.0}
	_, err := repo.SearchWithin(context.Background(), box, persistence.VenueFilter{
		CategoryID:     &category,
		AccessibleOnly: true,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
