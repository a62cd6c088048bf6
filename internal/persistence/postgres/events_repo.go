package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/EricBell/accessible-outings/internal/domain"
	"github.com/EricBell/accessible-outings/internal/persistence"
)

const eventColumns = `
	id, title, description, venue_id, start_date, start_time, end_date, end_time,
	cost, registration_required, registration_url,
	wheelchair_accessible, hearing_accessible, vision_accessible, accessibility_notes,
	indoor_outdoor, event_url, image_url, source, external_id,
	last_updated, created_at`

type eventRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewEventRepo creates a PostgreSQL event repository.
func NewEventRepo(db *sqlx.DB, timeout time.Duration) persistence.EventRepo {
	return &eventRepo{db: db, timeout: timeout}
}

func (r *eventRepo) UpsertExternal(ctx context.Context, e *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO events (
			title, description, venue_id, start_date, start_time, end_date, end_time,
			cost, registration_required, registration_url,
			wheelchair_accessible, hearing_accessible, vision_accessible,
			accessibility_notes, indoor_outdoor, event_url, image_url,
			source, external_id, last_updated
		) VALUES (
			:title, :description, :venue_id, :start_date, :start_time, :end_date, :end_time,
			:cost, :registration_required, :registration_url,
			:wheelchair_accessible, :hearing_accessible, :vision_accessible,
			:accessibility_notes, :indoor_outdoor, :event_url, :image_url,
			:source, :external_id, NOW()
		)
		ON CONFLICT (source, external_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			start_date = EXCLUDED.start_date,
			start_time = EXCLUDED.start_time,
			end_date = EXCLUDED.end_date,
			end_time = EXCLUDED.end_time,
			cost = EXCLUDED.cost,
			registration_required = EXCLUDED.registration_required,
			registration_url = EXCLUDED.registration_url,
			wheelchair_accessible = EXCLUDED.wheelchair_accessible,
			hearing_accessible = EXCLUDED.hearing_accessible,
			vision_accessible = EXCLUDED.vision_accessible,
			accessibility_notes = EXCLUDED.accessibility_notes,
			indoor_outdoor = EXCLUDED.indoor_outdoor,
			event_url = EXCLUDED.event_url,
			image_url = EXCLUDED.image_url,
			last_updated = NOW()
		RETURNING id, last_updated, created_at`

	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, e)
	if err != nil {
		return fmt.Errorf("failed to upsert event: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return fmt.Errorf("event upsert returned no row")
	}
	if err := rows.Scan(&e.ID, &e.LastUpdated, &e.CreatedAt); err != nil {
		return fmt.Errorf("failed to scan upserted event: %w", err)
	}
	return rows.Err()
}

func (r *eventRepo) ListByVenue(ctx context.Context, venueID int, from time.Time) ([]domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var events []domain.Event
	err := r.db.SelectContext(ctx, &events,
		`SELECT `+eventColumns+` FROM events
		 WHERE venue_id = $1 AND start_date >= $2
		 ORDER BY start_date, start_time`, venueID, from)
	if err != nil {
		return nil, fmt.Errorf("failed to list venue events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) ListUpcomingByVenues(ctx context.Context, venueIDs []int, from time.Time, limit int) ([]domain.Event, error) {
	if len(venueIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var events []domain.Event
	err := r.db.SelectContext(ctx, &events,
		`SELECT `+eventColumns+` FROM events
		 WHERE venue_id = ANY($1) AND start_date >= $2
		 ORDER BY start_date, start_time
		 LIMIT $3`, pq.Array(venueIDs), from, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	return events, nil
}
