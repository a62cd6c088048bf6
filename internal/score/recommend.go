package score

import (
	"strings"

	"github.com/EricBell/accessible-outings/internal/domain"
)

// commonIssues maps issue descriptions to the review phrases that signal
// them.
var commonIssues = []struct {
	label    string
	keywords []string
}{
	{"parking difficulties", []string{"parking", "far", "difficult to find"}},
	{"entrance challenges", []string{"entrance", "door", "heavy", "narrow"}},
	{"restroom concerns", []string{"restroom", "bathroom", "not accessible"}},
	{"navigation issues", []string{"crowded", "narrow aisles", "difficult to navigate"}},
}

// Recommendations returns visitor guidance for a venue: checks worth making
// for features the venue lacks, plus issues surfaced in its reviews.
func Recommendations(v *domain.Venue, reviews []domain.UserReview) []string {
	var recs []string

	if !v.WheelchairAccessible {
		recs = append(recs, "Verify wheelchair accessibility at entrance")
	}
	if !v.AccessibleParking {
		recs = append(recs, "Check for accessible parking spaces nearby")
	}
	if !v.AccessibleRestroom {
		recs = append(recs, "Inquire about accessible restroom facilities")
	}
	if !v.RampAccess && !v.ElevatorAccess {
		recs = append(recs, "Look for ramp or elevator access if there are steps")
	}

	for _, issue := range reviewIssues(reviews) {
		recs = append(recs, "Note: Previous visitors mentioned "+issue)
	}
	return recs
}

// reviewIssues scans review text for recurring accessibility problems.
func reviewIssues(reviews []domain.UserReview) []string {
	seen := make(map[string]bool)
	var issues []string

	for i := range reviews {
		text := strings.ToLower(reviews[i].AccessibilityNotes + " " + reviews[i].ReviewText)
		if strings.TrimSpace(text) == "" {
			continue
		}
		for _, issue := range commonIssues {
			if seen[issue.label] {
				continue
			}
			for _, kw := range issue.keywords {
				if strings.Contains(text, kw) {
					seen[issue.label] = true
					issues = append(issues, issue.label)
					break
				}
			}
		}
	}
	return issues
}
