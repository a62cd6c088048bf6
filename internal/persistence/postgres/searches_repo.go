package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/EricBell/accessible-outings/internal/domain"
	"github.com/EricBell/accessible-outings/internal/persistence"
)

type searchHistoryRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewSearchHistoryRepo creates a PostgreSQL search-history repository.
func NewSearchHistoryRepo(db *sqlx.DB, timeout time.Duration) persistence.SearchHistoryRepo {
	return &searchHistoryRepo{db: db, timeout: timeout}
}

func (r *searchHistoryRepo) Log(ctx context.Context, s *domain.SearchHistory) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO search_history
			(user_id, search_zip, search_radius, category_filter, results_count, accessibility_filter)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		s.UserID, s.SearchZip, s.SearchRadius, s.CategoryFilter,
		s.ResultsCount, s.AccessibilityFilter).
		Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}

func (r *searchHistoryRepo) RecentByUser(ctx context.Context, userID, limit int) ([]domain.SearchHistory, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var searches []domain.SearchHistory
	err := r.db.SelectContext(ctx, &searches,
		`SELECT id, user_id, search_zip, search_radius, category_filter,
		        results_count, accessibility_filter, created_at
		 FROM search_history
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent searches: %w", err)
	}
	return searches, nil
}

func (r *searchHistoryRepo) Popular(ctx context.Context, since time.Time, limit int) ([]domain.PopularSearch, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var popular []domain.PopularSearch
	err := r.db.SelectContext(ctx, &popular,
		`SELECT search_zip, category_filter, COUNT(id) AS search_count
		 FROM search_history
		 WHERE created_at >= $1
		 GROUP BY search_zip, category_filter
		 ORDER BY COUNT(id) DESC
		 LIMIT $2`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular searches: %w", err)
	}
	return popular, nil
}
