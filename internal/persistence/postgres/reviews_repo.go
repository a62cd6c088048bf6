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

const reviewColumns = `
	id, user_id, venue_id, visit_date, overall_rating, accessibility_rating,
	review_text, accessibility_notes, would_return, recommended_for_wheelchair,
	photos, weather_conditions, visit_duration_hours, companion_count, created_at`

type reviewRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewReviewRepo creates a PostgreSQL review repository.
func NewReviewRepo(db *sqlx.DB, timeout time.Duration) persistence.ReviewRepo {
	return &reviewRepo{db: db, timeout: timeout}
}

func (r *reviewRepo) Upsert(ctx context.Context, rev *domain.UserReview) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO user_reviews (
			user_id, venue_id, visit_date, overall_rating, accessibility_rating,
			review_text, accessibility_notes, would_return,
			recommended_for_wheelchair, photos, weather_conditions,
			visit_duration_hours, companion_count
		) VALUES (
			:user_id, :venue_id, :visit_date, :overall_rating, :accessibility_rating,
			:review_text, :accessibility_notes, :would_return,
			:recommended_for_wheelchair, :photos, :weather_conditions,
			:visit_duration_hours, :companion_count
		)
		ON CONFLICT (user_id, venue_id) DO UPDATE SET
			visit_date = EXCLUDED.visit_date,
			overall_rating = EXCLUDED.overall_rating,
			accessibility_rating = EXCLUDED.accessibility_rating,
			review_text = EXCLUDED.review_text,
			accessibility_notes = EXCLUDED.accessibility_notes,
			would_return = EXCLUDED.would_return,
			recommended_for_wheelchair = EXCLUDED.recommended_for_wheelchair,
			photos = EXCLUDED.photos,
			weather_conditions = EXCLUDED.weather_conditions,
			visit_duration_hours = EXCLUDED.visit_duration_hours,
			companion_count = EXCLUDED.companion_count
		RETURNING id, created_at`

	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, rev)
	if err != nil {
		return fmt.Errorf("failed to upsert review: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return fmt.Errorf("review upsert returned no row")
	}
	if err := rows.Scan(&rev.ID, &rev.CreatedAt); err != nil {
		return fmt.Errorf("failed to scan upserted review: %w", err)
	}
	return rows.Err()
}

func (r *reviewRepo) GetByUserVenue(ctx context.Context, userID, venueID int) (*domain.UserReview, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var rev domain.UserReview
	err := r.db.GetContext(ctx, &rev,
		`SELECT `+reviewColumns+` FROM user_reviews
		 WHERE user_id = $1 AND venue_id = $2`, userID, venueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &rev, nil
}

func (r *reviewRepo) ListByVenue(ctx context.Context, venueID, limit int) ([]domain.UserReview, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + reviewColumns + ` FROM user_reviews
		WHERE venue_id = $1 ORDER BY created_at DESC`
	args := []interface{}{venueID}
	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT $2"
	}

	var reviews []domain.UserReview
	if err := r.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list venue reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepo) ListByUser(ctx context.Context, userID, limit int) ([]domain.UserReview, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + reviewColumns + ` FROM user_reviews
		WHERE user_id = $1 ORDER BY created_at DESC`
	args := []interface{}{userID}
	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT $2"
	}

	var reviews []domain.UserReview
	if err := r.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list user reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepo) VenueRatings(ctx context.Context, venueID int) ([]int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var ratings []int
	err := r.db.SelectContext(ctx, &ratings,
		`SELECT accessibility_rating FROM user_reviews
		 WHERE venue_id = $1 AND accessibility_rating IS NOT NULL`, venueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query venue ratings: %w", err)
	}
	return ratings, nil
}
