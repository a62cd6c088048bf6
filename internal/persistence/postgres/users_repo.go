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

type userRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewUserRepo creates a PostgreSQL user repository.
func NewUserRepo(db *sqlx.DB, timeout time.Duration) persistence.UserRepo {
	return &userRepo{db: db, timeout: timeout}
}

func (r *userRepo) GetByID(ctx context.Context, id int) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var u domain.User
	err := r.db.GetContext(ctx, &u,
		`SELECT id, username, email, password_hash, first_name, last_name,
		        home_zip_code, max_travel_minutes, accessibility_needs,
		        is_admin, created_at, updated_at
		 FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &u, nil
}
