// Package postgres implements the persistence repositories on PostgreSQL
// via sqlx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/EricBell/accessible-outings/internal/domain"
	"github.com/EricBell/accessible-outings/internal/geo"
	"github.com/EricBell/accessible-outings/internal/persistence"
)

const venueColumns = `
	id, place_id, name, address, city, state, zip_code, phone, website,
	latitude, longitude, category_id, external_rating, price_level,
	wheelchair_accessible, accessible_parking, accessible_restroom,
	elevator_access, wide_doorways, ramp_access, accessible_seating,
	accessibility_notes, verified_accessible,
	hours_monday, hours_tuesday, hours_wednesday, hours_thursday,
	hours_friday, hours_saturday, hours_sunday, seasonal_hours,
	photo_urls, last_updated, created_at`

type venueRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewVenueRepo creates a PostgreSQL venue repository.
func NewVenueRepo(db *sqlx.DB, timeout time.Duration) persistence.VenueRepo {
	return &venueRepo{db: db, timeout: timeout}
}

func (r *venueRepo) GetByID(ctx context.Context, id int) (*domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var v domain.Venue
	err := r.db.GetContext(ctx, &v,
		`SELECT `+venueColumns+` FROM venues WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get venue %d: %w", id, err)
	}
	return &v, nil
}

func (r *venueRepo) GetByPlaceID(ctx context.Context, placeID string) (*domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var v domain.Venue
	err := r.db.GetContext(ctx, &v,
		`SELECT `+venueColumns+` FROM venues WHERE place_id = $1`, placeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get venue by place ID: %w", err)
	}
	return &v, nil
}

func (r *venueRepo) Upsert(ctx context.Context, v *domain.Venue) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO venues (
			place_id, name, address, city, state, zip_code, phone, website,
			latitude, longitude, category_id, external_rating, price_level,
			wheelchair_accessible, accessible_parking, accessible_restroom,
			elevator_access, wide_doorways, ramp_access, accessible_seating,
			accessibility_notes, verified_accessible,
			hours_monday, hours_tuesday, hours_wednesday, hours_thursday,
			hours_friday, hours_saturday, hours_sunday, seasonal_hours,
			photo_urls, last_updated
		) VALUES (
			:place_id, :name, :address, :city, :state, :zip_code, :phone, :website,
			:latitude, :longitude, :category_id, :external_rating, :price_level,
			:wheelchair_accessible, :accessible_parking, :accessible_restroom,
			:elevator_access, :wide_doorways, :ramp_access, :accessible_seating,
			:accessibility_notes, :verified_accessible,
			:hours_monday, :hours_tuesday, :hours_wednesday, :hours_thursday,
			:hours_friday, :hours_saturday, :hours_sunday, :seasonal_hours,
			:photo_urls, NOW()
		)
		ON CONFLICT (place_id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip_code = EXCLUDED.zip_code,
			phone = EXCLUDED.phone,
			website = EXCLUDED.website,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			category_id = COALESCE(EXCLUDED.category_id, venues.category_id),
			external_rating = EXCLUDED.external_rating,
			price_level = EXCLUDED.price_level,
			wheelchair_accessible = EXCLUDED.wheelchair_accessible,
			accessible_parking = EXCLUDED.accessible_parking,
			accessible_restroom = EXCLUDED.accessible_restroom,
			elevator_access = EXCLUDED.elevator_access,
			wide_doorways = EXCLUDED.wide_doorways,
			ramp_access = EXCLUDED.ramp_access,
			accessible_seating = EXCLUDED.accessible_seating,
			accessibility_notes = EXCLUDED.accessibility_notes,
			hours_monday = EXCLUDED.hours_monday,
			hours_tuesday = EXCLUDED.hours_tuesday,
			hours_wednesday = EXCLUDED.hours_wednesday,
			hours_thursday = EXCLUDED.hours_thursday,
			hours_friday = EXCLUDED.hours_friday,
			hours_saturday = EXCLUDED.hours_saturday,
			hours_sunday = EXCLUDED.hours_sunday,
			seasonal_hours = EXCLUDED.seasonal_hours,
			photo_urls = EXCLUDED.photo_urls,
			last_updated = NOW()
		RETURNING id, last_updated, created_at`

	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, v)
	if err != nil {
		return fmt.Errorf("failed to upsert venue: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return fmt.Errorf("venue upsert returned no row")
	}
	if err := rows.Scan(&v.ID, &v.LastUpdated, &v.CreatedAt); err != nil {
		return fmt.Errorf("failed to scan upserted venue: %w", err)
	}
	return rows.Err()
}

func (r *venueRepo) SearchWithin(ctx context.Context, box geo.BoundingBox, f persistence.VenueFilter) ([]domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + venueColumns + `
		FROM venues
		WHERE latitude BETWEEN $1 AND $2
		  AND longitude BETWEEN $3 AND $4`
	args := []interface{}{box.MinLat, box.MaxLat, box.MinLon, box.MaxLon}

	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if f.AccessibleOnly {
		query += " AND wheelchair_accessible = TRUE"
	}

	query += " ORDER BY id"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var venues []domain.Venue
	if err := r.db.SelectContext(ctx, &venues, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search venues: %w", err)
	}
	return venues, nil
}

func (r *venueRepo) SimilarAccessible(ctx context.Context, categoryID, excludeVenueID int) ([]domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + venueColumns + `
		FROM venues
		WHERE category_id = $1
		  AND id <> $2
		  AND wheelchair_accessible = TRUE
		ORDER BY id`

	var venues []domain.Venue
	if err := r.db.SelectContext(ctx, &venues, query, categoryID, excludeVenueID); err != nil {
		return nil, fmt.Errorf("failed to query similar venues: %w", err)
	}
	return venues, nil
}
