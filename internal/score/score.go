// Package score computes accessibility scores and tiers for venues and ranks
// search results by distance.
package score

import (
	"math"

	"github.com/EricBell/accessible-outings/internal/domain"
)

// FeatureCount is the size of the fixed accessibility feature set.
const FeatureCount = 7

// Tier is the qualitative accessibility band derived from the score.
type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierFair      Tier = "fair"
	TierLimited   Tier = "limited"
)

// Tier thresholds. Each band is inclusive at its lower edge, so a score
// sitting exactly on a threshold takes the higher band.
const (
	thresholdExcellent = 80
	thresholdGood      = 60
	thresholdFair      = 40
)

// featureNames are the display labels, in the order the flags are checked.
var featureNames = []string{
	"Wheelchair Accessible",
	"Accessible Parking",
	"Accessible Restroom",
	"Elevator Access",
	"Wide Doorways",
	"Ramp Access",
	"Accessible Seating",
}

func flags(f domain.AccessibilityFeatures) [FeatureCount]bool {
	return [FeatureCount]bool{
		f.WheelchairAccessible,
		f.AccessibleParking,
		f.AccessibleRestroom,
		f.ElevatorAccess,
		f.WideDoorways,
		f.RampAccess,
		f.AccessibleSeating,
	}
}

// Compute returns the accessibility score as an integer percentage in
// [0,100]: the rounded share of the fixed feature set a venue satisfies.
func Compute(f domain.AccessibilityFeatures) int {
	count := 0
	for _, set := range flags(f) {
		if set {
			count++
		}
	}
	return int(math.Round(100 * float64(count) / FeatureCount))
}

// Classify maps a score to its tier.
func Classify(score int) Tier {
	switch {
	case score >= thresholdExcellent:
		return TierExcellent
	case score >= thresholdGood:
		return TierGood
	case score >= thresholdFair:
		return TierFair
	default:
		return TierLimited
	}
}

// BadgeClass returns the CSS badge class the UI renders for a tier.
func (t Tier) BadgeClass() string {
	switch t {
	case TierExcellent:
		return "success"
	case TierGood:
		return "info"
	case TierFair:
		return "warning"
	default:
		return "danger"
	}
}

// Label returns the capitalized display form of the tier.
func (t Tier) Label() string {
	switch t {
	case TierExcellent:
		return "Excellent"
	case TierGood:
		return "Good"
	case TierFair:
		return "Fair"
	default:
		return "Limited"
	}
}

// FeatureList returns the display names of the features a venue satisfies.
func FeatureList(f domain.AccessibilityFeatures) []string {
	var names []string
	for i, set := range flags(f) {
		if set {
			names = append(names, featureNames[i])
		}
	}
	return names
}

// Summary is the accessibility rollup the venue-detail API returns.
type Summary struct {
	Score        int      `json:"score"`
	Tier         Tier     `json:"tier"`
	Level        string   `json:"level"`
	LevelClass   string   `json:"level_class"`
	Features     []string `json:"features"`
	FeatureCount int      `json:"feature_count"`
	Verified     bool     `json:"verified"`
	Notes        string   `json:"notes,omitempty"`
}

// Summarize builds the accessibility summary for a venue.
func Summarize(v *domain.Venue) Summary {
	s := Compute(v.AccessibilityFeatures)
	tier := Classify(s)
	features := FeatureList(v.AccessibilityFeatures)
	return Summary{
		Score:        s,
		Tier:         tier,
		Level:        tier.Label(),
		LevelClass:   tier.BadgeClass(),
		Features:     features,
		FeatureCount: len(features),
		Verified:     v.VerifiedAccessible,
		Notes:        v.AccessibilityNotes,
	}
}
