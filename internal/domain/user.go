package domain

import "time"

// User is an account that can favorite, review, and search for venues.
// Password verification is handled outside this service; the hash is stored
// but never checked here.
type User struct {
	ID                 int       `db:"id" json:"id"`
	Username           string    `db:"username" json:"username"`
	Email              string    `db:"email" json:"email"`
	PasswordHash       string    `db:"password_hash" json:"-"`
	FirstName          string    `db:"first_name" json:"first_name"`
	LastName           string    `db:"last_name" json:"last_name"`
	HomeZipCode        string    `db:"home_zip_code" json:"home_zip_code"`
	MaxTravelMinutes   int       `db:"max_travel_minutes" json:"max_travel_minutes"`
	AccessibilityNeeds string    `db:"accessibility_needs" json:"accessibility_needs"`
	IsAdmin            bool      `db:"is_admin" json:"is_admin"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// FullName prefers first+last name and falls back to the username.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Username
	}
}
