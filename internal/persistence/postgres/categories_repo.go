package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/EricBell/accessible-outings/internal/domain"
	"github.com/EricBell/accessible-outings/internal/persistence"
)

type categoryRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewCategoryRepo creates a PostgreSQL category repository.
func NewCategoryRepo(db *sqlx.DB, timeout time.Duration) persistence.CategoryRepo {
	return &categoryRepo{db: db, timeout: timeout}
}

func (r *categoryRepo) List(ctx context.Context) ([]domain.VenueCategory, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var categories []domain.VenueCategory
	err := r.db.SelectContext(ctx, &categories,
		`SELECT id, name, description, icon_class, search_keywords
		 FROM venue_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id int) (*domain.VenueCategory, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var c domain.VenueCategory
	err := r.db.GetContext(ctx, &c,
		`SELECT id, name, description, icon_class, search_keywords
		 FROM venue_categories WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category %d: %w", id, err)
	}
	return &c, nil
}

func (r *categoryRepo) Stats(ctx context.Context, categoryID int) (*persistence.CategoryStats, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stats persistence.CategoryStats
	err := r.db.GetContext(ctx, &stats,
		`SELECT COUNT(*) AS venue_count,
		        COUNT(*) FILTER (WHERE wheelchair_accessible) AS accessible_count
		 FROM venues WHERE category_id = $1`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category stats: %w", err)
	}
	return &stats, nil
}

func (r *categoryRepo) VenueFeatures(ctx context.Context, categoryID int) ([]domain.AccessibilityFeatures, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var features []domain.AccessibilityFeatures
	err := r.db.SelectContext(ctx, &features,
		`SELECT wheelchair_accessible, accessible_parking, accessible_restroom,
		        elevator_access, wide_doorways, ramp_access, accessible_seating
		 FROM venues WHERE category_id = $1`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query category features: %w", err)
	}
	return features, nil
}
