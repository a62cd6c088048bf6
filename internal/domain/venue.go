// Package domain holds the typed records shared by the persistence,
// scoring, and HTTP layers.
package domain

import (
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/EricBell/accessible-outings/internal/geo"
)

// AccessibilityFeatures is the fixed set of boolean accessibility flags
// tracked for every venue. The set is closed; absent flags are false.
type AccessibilityFeatures struct {
	WheelchairAccessible bool `db:"wheelchair_accessible" json:"wheelchair_accessible"`
	AccessibleParking    bool `db:"accessible_parking" json:"accessible_parking"`
	AccessibleRestroom   bool `db:"accessible_restroom" json:"accessible_restroom"`
	ElevatorAccess       bool `db:"elevator_access" json:"elevator_access"`
	WideDoorways         bool `db:"wide_doorways" json:"wide_doorways"`
	RampAccess           bool `db:"ramp_access" json:"ramp_access"`
	AccessibleSeating    bool `db:"accessible_seating" json:"accessible_seating"`
}

// VenueCategory organizes venues by type and carries the keywords used for
// external API searches.
type VenueCategory struct {
	ID             int            `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Description    string         `db:"description" json:"description"`
	IconClass      string         `db:"icon_class" json:"icon_class"`
	SearchKeywords pq.StringArray `db:"search_keywords" json:"search_keywords"`
}

// Venue is a place a user can visit, with its accessibility details.
type Venue struct {
	ID        int      `db:"id" json:"id"`
	PlaceID   string   `db:"place_id" json:"place_id"`
	Name      string   `db:"name" json:"name"`
	Address   string   `db:"address" json:"address"`
	City      string   `db:"city" json:"city"`
	State     string   `db:"state" json:"state"`
	ZipCode   string   `db:"zip_code" json:"zip_code"`
	Phone     string   `db:"phone" json:"phone"`
	Website   string   `db:"website" json:"website"`
	Latitude  *float64 `db:"latitude" json:"latitude"`
	Longitude *float64 `db:"longitude" json:"longitude"`

	CategoryID     *int     `db:"category_id" json:"category_id"`
	ExternalRating *float64 `db:"external_rating" json:"external_rating"`
	PriceLevel     *int     `db:"price_level" json:"price_level"`

	AccessibilityFeatures
	AccessibilityNotes string `db:"accessibility_notes" json:"accessibility_notes"`
	VerifiedAccessible bool   `db:"verified_accessible" json:"verified_accessible"`

	HoursMonday    string `db:"hours_monday" json:"-"`
	HoursTuesday   string `db:"hours_tuesday" json:"-"`
	HoursWednesday string `db:"hours_wednesday" json:"-"`
	HoursThursday  string `db:"hours_thursday" json:"-"`
	HoursFriday    string `db:"hours_friday" json:"-"`
	HoursSaturday  string `db:"hours_saturday" json:"-"`
	HoursSunday    string `db:"hours_sunday" json:"-"`
	SeasonalHours  string `db:"seasonal_hours" json:"seasonal_hours,omitempty"`

	PhotoURLs pq.StringArray `db:"photo_urls" json:"photo_urls"`

	LastUpdated time.Time `db:"last_updated" json:"last_updated"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// FullAddress joins the address parts that are present.
func (v *Venue) FullAddress() string {
	parts := []string{v.Address}
	for _, p := range []string{v.City, v.State, v.ZipCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Location returns the venue's coordinates, or false when not geocoded.
func (v *Venue) Location() (geo.Point, bool) {
	if v.Latitude == nil || v.Longitude == nil {
		return geo.Point{}, false
	}
	return geo.Point{Latitude: *v.Latitude, Longitude: *v.Longitude}, true
}

// Hours returns operating hours keyed by lowercase weekday name.
func (v *Venue) Hours() map[string]string {
	return map[string]string{
		"monday":    v.HoursMonday,
		"tuesday":   v.HoursTuesday,
		"wednesday": v.HoursWednesday,
		"thursday":  v.HoursThursday,
		"friday":    v.HoursFriday,
		"saturday":  v.HoursSaturday,
		"sunday":    v.HoursSunday,
	}
}

// HoursFor returns the hours string for a weekday.
func (v *Venue) HoursFor(day time.Weekday) string {
	switch day {
	case time.Monday:
		return v.HoursMonday
	case time.Tuesday:
		return v.HoursTuesday
	case time.Wednesday:
		return v.HoursWednesday
	case time.Thursday:
		return v.HoursThursday
	case time.Friday:
		return v.HoursFriday
	case time.Saturday:
		return v.HoursSaturday
	default:
		return v.HoursSunday
	}
}

// OpenOn reports whether the venue looks open on the given day. Hours strings
// come from the places API and are free-form; anything other than an explicit
// "closed" counts as open.
func (v *Venue) OpenOn(day time.Weekday) bool {
	hours := strings.ToLower(strings.TrimSpace(v.HoursFor(day)))
	return hours != "" && hours != "closed" && hours != "close"
}
