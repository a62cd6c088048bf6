package score

import (
	"testing"

	"github.com/EricBell/accessible-outings/internal/domain"
)

func allFeatures() domain.AccessibilityFeatures {
	return domain.AccessibilityFeatures{
		WheelchairAccessible: true,
		AccessibleParking:    true,
		AccessibleRestroom:   true,
		ElevatorAccess:       true,
		WideDoorways:         true,
		RampAccess:           true,
		AccessibleSeating:    true,
	}
}

func TestCompute_NoFeatures(t *testing.T) {
	s := Compute(domain.AccessibilityFeatures{})
	if s != 0 {
		t.Errorf("Compute(zero) = %d, want 0", s)
	}
	if tier := Classify(s); tier != TierLimited {
		t.Errorf("Classify(0) = %s, want limited", tier)
	}
}

func TestCompute_AllFeatures(t *testing.T) {
	s := Compute(allFeatures())
	if s != 100 {
		t.Errorf("Compute(all) = %d, want 100", s)
	}
	if tier := Classify(s); tier != TierExcellent {
		t.Errorf("Classify(100) = %s, want excellent", tier)
	}
}

func TestCompute_TwoOfSeven(t *testing.T) {
	// round(100*2/7) = 29, in the limited band.
	f := domain.AccessibilityFeatures{
		WheelchairAccessible: true,
		AccessibleParking:    true,
	}
	s := Compute(f)
	if s != 29 {
		t.Errorf("Compute(2/7) = %d, want 29", s)
	}
	if tier := Classify(s); tier != TierLimited {
		t.Errorf("Classify(29) = %s, want limited", tier)
	}
}

func TestCompute_Rounding(t *testing.T) {
	cases := []struct {
		trueCount int
		want      int
	}{
		{0, 0},
		{1, 14},  // 14.28
		{2, 29},  // 28.57
		{3, 43},  // 42.86
		{4, 57},  // 57.14
		{5, 71},  // 71.43
		{6, 86},  // 85.71
		{7, 100},
	}

	for _, tc := range cases {
		var f domain.AccessibilityFeatures
		setters := []*bool{
			&f.WheelchairAccessible, &f.AccessibleParking, &f.AccessibleRestroom,
			&f.ElevatorAccess, &f.WideDoorways, &f.RampAccess, &f.AccessibleSeating,
		}
		for i := 0; i < tc.trueCount; i++ {
			*setters[i] = true
		}
		if got := Compute(f); got != tc.want {
			t.Errorf("Compute(%d/7) = %d, want %d", tc.trueCount, got, tc.want)
		}
	}
}

func TestCompute_Monotonic(t *testing.T) {
	// Adding a true flag never decreases the score.
	var f domain.AccessibilityFeatures
	prev := Compute(f)

	setters := []*bool{
		&f.WheelchairAccessible, &f.AccessibleParking, &f.AccessibleRestroom,
		&f.ElevatorAccess, &f.WideDoorways, &f.RampAccess, &f.AccessibleSeating,
	}
	for i, set := range setters {
		*set = true
		s := Compute(f)
		if s < prev {
			t.Errorf("score decreased from %d to %d after setting flag %d", prev, s, i)
		}
		prev = s
	}
}

func TestClassify_Boundaries(t *testing.T) {
	cases := []struct {
		score int
		want  Tier
	}{
		{0, TierLimited},
		{39, TierLimited},
		{40, TierFair},
		{59, TierFair},
		{60, TierGood},
		{79, TierGood},
		{80, TierExcellent},
		{100, TierExcellent},
	}

	for _, tc := range cases {
		if got := Classify(tc.score); got != tc.want {
			t.Errorf("Classify(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestTier_BadgeClassAndLabel(t *testing.T) {
	cases := []struct {
		tier  Tier
		badge string
		label string
	}{
		{TierExcellent, "success", "Excellent"},
		{TierGood, "info", "Good"},
		{TierFair, "warning", "Fair"},
		{TierLimited, "danger", "Limited"},
	}

	for _, tc := range cases {
		if got := tc.tier.BadgeClass(); got != tc.badge {
			t.Errorf("%s.BadgeClass() = %s, want %s", tc.tier, got, tc.badge)
		}
		if got := tc.tier.Label(); got != tc.label {
			t.Errorf("%s.Label() = %s, want %s", tc.tier, got, tc.label)
		}
	}
}

func TestFeatureList(t *testing.T) {
	f := domain.AccessibilityFeatures{
		WheelchairAccessible: true,
		RampAccess:           true,
	}

	list := FeatureList(f)
	if len(list) != 2 {
		t.Fatalf("expected 2 features, got %d: %v", len(list), list)
	}
	if list[0] != "Wheelchair Accessible" || list[1] != "Ramp Access" {
		t.Errorf("unexpected feature list: %v", list)
	}

	if list := FeatureList(domain.AccessibilityFeatures{}); len(list) != 0 {
		t.Errorf("expected empty feature list, got %v", list)
	}
}

func TestSummarize(t *testing.T) {
	v := &domain.Venue{
		Name:               "Museum of Fine Arts",
		AccessibilityNotes: "Step-free entrance on Huntington Ave.",
		VerifiedAccessible: true,
		AccessibilityFeatures: domain.AccessibilityFeatures{
			WheelchairAccessible: true,
			AccessibleParking:    true,
			AccessibleRestroom:   true,
			ElevatorAccess:       true,
			WideDoorways:         true,
			RampAccess:           true,
		},
	}

	sum := Summarize(v)
	if sum.Score != 86 {
		t.Errorf("score = %d, want 86", sum.Score)
	}
	if sum.Tier != TierExcellent {
		t.Errorf("tier = %s, want excellent", sum.Tier)
	}
	if sum.Level != "Excellent" || sum.LevelClass != "success" {
		t.Errorf("level = %s/%s, want Excellent/success", sum.Level, sum.LevelClass)
	}
	if sum.FeatureCount != 6 {
		t.Errorf("feature count = %d, want 6", sum.FeatureCount)
	}
	if !sum.Verified {
		t.Error("expected verified summary")
	}
}
