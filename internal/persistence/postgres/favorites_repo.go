package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/EricBell/accessible-outings/internal/domain"
	"github.com/EricBell/accessible-outings/internal/persistence"
)

type favoriteRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewFavoriteRepo creates a PostgreSQL favorites repository.
func NewFavoriteRepo(db *sqlx.DB, timeout time.Duration) persistence.FavoriteRepo {
	return &favoriteRepo{db: db, timeout: timeout}
}

func (r *favoriteRepo) Upsert(ctx context.Context, f *domain.UserFavorite) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO user_favorites (user_id, venue_id, notes, personal_accessibility_rating)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, venue_id) DO UPDATE SET
			notes = EXCLUDED.notes,
			personal_accessibility_rating = EXCLUDED.personal_accessibility_rating
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		f.UserID, f.VenueID, f.Notes, f.PersonalAccessibilityRating).
		Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert favorite: %w", err)
	}
	return nil
}

func (r *favoriteRepo) Remove(ctx context.Context, userID, venueID int) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_favorites WHERE user_id = $1 AND venue_id = $2`,
		userID, venueID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check removed favorite: %w", err)
	}
	if n == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *favoriteRepo) ListByUser(ctx context.Context, userID int) ([]domain.UserFavorite, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var favorites []domain.UserFavorite
	err := r.db.SelectContext(ctx, &favorites,
		`SELECT id, user_id, venue_id, notes, personal_accessibility_rating, created_at
		 FROM user_favorites WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return favorites, nil
}

func (r *favoriteRepo) IsFavorited(ctx context.Context, userID, venueID int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (
			SELECT 1 FROM user_favorites WHERE user_id = $1 AND venue_id = $2
		)`, userID, venueID)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}
