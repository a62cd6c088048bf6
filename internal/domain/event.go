package domain

import "time"

// Event is a scheduled happening at a venue, sourced either from local
// submissions or an external events API.
type Event struct {
	ID          int    `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
	VenueID     int    `db:"venue_id" json:"venue_id"`

	StartDate *time.Time `db:"start_date" json:"start_date"`
	StartTime string     `db:"start_time" json:"start_time"`
	EndDate   *time.Time `db:"end_date" json:"end_date"`
	EndTime   string     `db:"end_time" json:"end_time"`

	Cost                 string `db:"cost" json:"cost"`
	RegistrationRequired bool   `db:"registration_required" json:"registration_required"`
	RegistrationURL      string `db:"registration_url" json:"registration_url"`

	WheelchairAccessible bool   `db:"wheelchair_accessible" json:"wheelchair_accessible"`
	HearingAccessible    bool   `db:"hearing_accessible" json:"hearing_accessible"`
	VisionAccessible     bool   `db:"vision_accessible" json:"vision_accessible"`
	AccessibilityNotes   string `db:"accessibility_notes" json:"accessibility_notes"`

	IndoorOutdoor string `db:"indoor_outdoor" json:"indoor_outdoor"`
	EventURL      string `db:"event_url" json:"event_url"`
	ImageURL      string `db:"image_url" json:"image_url"`

	Source     string `db:"source" json:"source"`
	ExternalID string `db:"external_id" json:"external_id"`

	LastUpdated time.Time `db:"last_updated" json:"last_updated"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Upcoming reports whether the event starts on or after the given day.
func (e *Event) Upcoming(now time.Time) bool {
	if e.StartDate == nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !e.StartDate.Before(today)
}
