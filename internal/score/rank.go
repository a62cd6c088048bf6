package score

import (
	"sort"

	"github.com/EricBell/accessible-outings/internal/domain"
	"github.com/EricBell/accessible-outings/internal/geo"
)

// RankedVenue is a venue annotated with its distance from the search origin
// and its accessibility score.
type RankedVenue struct {
	Venue         domain.Venue `json:"venue"`
	DistanceMiles *float64     `json:"distance_miles"`
	Score         int          `json:"accessibility_score"`
	Tier          Tier         `json:"accessibility_tier"`
}

// Rank orders venues by distance from origin, nearest first. Venues without
// coordinates sort last, in their incoming order. The accessibility score is
// attached for display but does not influence the order. A venue with stored
// coordinates outside valid ranges fails the whole ranking with
// geo.ErrInvalidCoordinate rather than producing a nonsensical distance.
func Rank(venues []domain.Venue, origin geo.Point) ([]RankedVenue, error) {
	if err := origin.Validate(); err != nil {
		return nil, err
	}

	ranked := make([]RankedVenue, 0, len(venues))
	for _, v := range venues {
		rv := RankedVenue{
			Venue: v,
			Score: Compute(v.AccessibilityFeatures),
		}
		rv.Tier = Classify(rv.Score)

		if loc, ok := v.Location(); ok {
			d, err := geo.Distance(origin, loc)
			if err != nil {
				return nil, err
			}
			rv.DistanceMiles = &d
		}
		ranked = append(ranked, rv)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		di, dj := ranked[i].DistanceMiles, ranked[j].DistanceMiles
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return *di < *dj
		}
	})

	return ranked, nil
}
