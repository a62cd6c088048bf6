package places

import (
	"strings"

	"github.com/EricBell/accessible-outings/internal/domain"
)

// reviewKeywords maps phrases found in review text to the accessibility
// flags they imply.
var reviewKeywords = []struct {
	phrase string
	apply  func(*domain.AccessibilityFeatures)
}{
	{"wheelchair", func(f *domain.AccessibilityFeatures) { f.WheelchairAccessible = true; f.RampAccess = true }},
	{"accessible seating", func(f *domain.AccessibilityFeatures) { f.AccessibleSeating = true }},
	{"accessible", func(f *domain.AccessibilityFeatures) { f.WheelchairAccessible = true }},
	{"ramp", func(f *domain.AccessibilityFeatures) { f.RampAccess = true }},
	{"elevator", func(f *domain.AccessibilityFeatures) { f.ElevatorAccess = true }},
	{"parking", func(f *domain.AccessibilityFeatures) { f.AccessibleParking = true }},
	{"restroom", func(f *domain.AccessibilityFeatures) { f.AccessibleRestroom = true }},
	{"bathroom", func(f *domain.AccessibilityFeatures) { f.AccessibleRestroom = true }},
	{"wide door", func(f *domain.AccessibilityFeatures) { f.WideDoorways = true }},
}

// maxReviewsScanned bounds how many reviews the keyword scan reads.
const maxReviewsScanned = 5

// ExtractAccessibility derives accessibility flags from a place's
// wheelchair entrance attribute and the text of its first few reviews.
func ExtractAccessibility(p *Place) (domain.AccessibilityFeatures, string) {
	var features domain.AccessibilityFeatures
	var notes []string

	if p.WheelchairAccessibleEntrance {
		features.WheelchairAccessible = true
		notes = append(notes, "Wheelchair accessible entrance.")
	}

	reviews := p.Reviews
	if len(reviews) > maxReviewsScanned {
		reviews = reviews[:maxReviewsScanned]
	}
	for _, review := range reviews {
		text := strings.ToLower(review.Text)
		for _, kw := range reviewKeywords {
			if strings.Contains(text, kw.phrase) {
				kw.apply(&features)
				notes = append(notes, "Mentioned in reviews: "+kw.phrase)
			}
		}
	}

	return features, strings.Join(notes, " ")
}

// ToVenue maps a place record onto a venue. The formatted address is split
// into street/city/state/ZIP the way the upstream formats US addresses.
func (c *Client) ToVenue(p *Place, categoryID *int) *domain.Venue {
	v := &domain.Venue{
		PlaceID:    p.PlaceID,
		Name:       p.Name,
		Phone:      p.Phone,
		Website:    p.Website,
		CategoryID: categoryID,
	}

	lat, lng := p.Geometry.Location.Lat, p.Geometry.Location.Lng
	if lat != 0 || lng != 0 {
		v.Latitude = &lat
		v.Longitude = &lng
	}
	if p.Rating != nil {
		rating := *p.Rating
		v.ExternalRating = &rating
	}
	if p.PriceLevel != nil {
		level := *p.PriceLevel
		v.PriceLevel = &level
	}

	address := p.FormattedAddress
	if address == "" {
		address = p.Vicinity
	}
	parseAddress(address, v)

	days := []*string{
		&v.HoursMonday, &v.HoursTuesday, &v.HoursWednesday, &v.HoursThursday,
		&v.HoursFriday, &v.HoursSaturday, &v.HoursSunday,
	}
	for i, text := range p.OpeningHours.WeekdayText {
		if i >= len(days) {
			break
		}
		// Strip the leading day name ("Monday: 9 AM–5 PM").
		if idx := strings.Index(text, ": "); idx >= 0 {
			text = text[idx+2:]
		}
		*days[i] = text
	}

	for i, photo := range p.Photos {
		if i >= 5 {
			break
		}
		if photo.PhotoReference != "" {
			v.PhotoURLs = append(v.PhotoURLs, c.PhotoURL(photo.PhotoReference, 400))
		}
	}

	features, notes := ExtractAccessibility(p)
	v.AccessibilityFeatures = features
	v.AccessibilityNotes = notes

	return v
}

// parseAddress splits a comma-formatted US address into the venue's street,
// city, state, and ZIP fields.
func parseAddress(formatted string, v *domain.Venue) {
	parts := strings.Split(formatted, ", ")
	if len(parts) == 0 || parts[0] == "" {
		return
	}
	v.Address = parts[0]

	if len(parts) < 3 {
		return
	}

	// The component before last is usually "State ZIP".
	stateZip := strings.Fields(parts[len(parts)-2])
	if len(stateZip) >= 2 {
		v.State = stateZip[0]
		v.ZipCode = stateZip[1]
	}

	if len(parts) >= 4 {
		v.City = parts[len(parts)-3]
	} else {
		v.City = parts[1]
	}
}
