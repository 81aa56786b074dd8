package eligibility

import (
	"strings"
	"testing"

	"github.com/spigell/scheme-navigator/internal/catalog"
	"github.com/spigell/scheme-navigator/internal/profile"
)

func intPtr(v int) *int { return &v }
func int64Ptr(v int64) *int64 { return &v }

func fullProfile() *profile.Profile {
	return &profile.Profile{
		Age:        intPtr(25),
		Region:     "Maharashtra",
		Education:  profile.EducationGraduate,
		Income:     profile.Income1To3Lakh,
		Category:   profile.CategoryGeneral,
		Gender:     profile.GenderMale,
		Occupation: profile.OccupationStudent,
	}
}

func studentScheme() *catalog.Entry {
	return &catalog.Entry{
		ID:   "student-scheme",
		Name: "Student Scholarship",
		Eligibility: catalog.Rules{
			MinAge:          intPtr(18),
			MaxAge:          intPtr(35),
			EducationLevels: []profile.Education{profile.EducationGraduate},
			IncomeMax:       int64Ptr(300000),
			Occupations:     []profile.Occupation{profile.OccupationStudent},
		},
	}
}

func TestEvaluateFullMatch(t *testing.T) {
	result := Evaluate(fullProfile(), studentScheme())

	if !result.Eligible {
		t.Fatalf("expected eligible, got unsatisfied %v", result.Unsatisfied)
	}
	if result.Confidence != 1.0 {
		t.Fatalf("expected confidence 1.0, got %v", result.Confidence)
	}
	if len(result.Satisfied) != 4 {
		t.Fatalf("expected 4 satisfied constraints, got %d: %v", len(result.Satisfied), result.Satisfied)
	}
	if len(result.Unsatisfied) != 0 {
		t.Fatalf("expected no unsatisfied constraints, got %v", result.Unsatisfied)
	}

	want := []string{
		"Age is within range (18-35 years)",
		"Education level matches (graduate)",
		"Income is within limit (Rs. 300,000 per year)",
		"Occupation matches (student)",
	}
	for i, w := range want {
		if result.Satisfied[i] != w {
			t.Fatalf("satisfied[%d]: expected %q, got %q", i, w, result.Satisfied[i])
		}
	}

	if !strings.HasPrefix(result.Explanation, "You are eligible for Student Scholarship!") {
		t.Fatalf("unexpected explanation: %q", result.Explanation)
	}
}

func TestEvaluateUnsetValueIsIneligible(t *testing.T) {
	entry := &catalog.Entry{Name: "Regional", Eligibility: catalog.Rules{Regions: []string{"Kerala"}}}

	result := Evaluate(&profile.Profile{}, entry)
	if result.Eligible {
		t.Fatalf("expected ineligible when region is unset")
	}
	if len(result.Unsatisfied) != 1 || result.Unsatisfied[0] != "State information required" {
		t.Fatalf("unexpected unsatisfied list: %v", result.Unsatisfied)
	}
	if result.Confidence != 0 {
		t.Fatalf("expected confidence 0, got %v", result.Confidence)
	}
	if !strings.Contains(result.Explanation, "Reasons:") {
		t.Fatalf("expected reasons in explanation, got %q", result.Explanation)
	}
}

func TestEvaluateWithoutConstraints(t *testing.T) {
	result := Evaluate(&profile.Profile{}, &catalog.Entry{Name: "Open"})

	if !result.Eligible {
		t.Fatalf("expected eligible for unrestricted entry")
	}
	if result.Confidence != 0.0 {
		t.Fatalf("expected confidence 0.0, got %v", result.Confidence)
	}
	if len(result.Satisfied) != 0 || len(result.Unsatisfied) != 0 {
		t.Fatalf("expected empty lists, got %v / %v", result.Satisfied, result.Unsatisfied)
	}
}

func TestEvaluateAgeBoundsRecordedSeparately(t *testing.T) {
	entry := &catalog.Entry{Eligibility: catalog.Rules{MinAge: intPtr(18), MaxAge: intPtr(35)}}

	young := Evaluate(&profile.Profile{Age: intPtr(10)}, entry)
	if young.Eligible || len(young.Unsatisfied) != 1 || young.Unsatisfied[0] != "Minimum age requirement: 18 years" {
		t.Fatalf("unexpected result for young profile: %+v", young)
	}

	old := Evaluate(&profile.Profile{Age: intPtr(60)}, entry)
	if old.Eligible || len(old.Unsatisfied) != 1 || old.Unsatisfied[0] != "Maximum age requirement: 35 years" {
		t.Fatalf("unexpected result for old profile: %+v", old)
	}

	openEnded := &catalog.Entry{Eligibility: catalog.Rules{MinAge: intPtr(60)}}
	senior := Evaluate(&profile.Profile{Age: intPtr(70)}, openEnded)
	if !senior.Eligible || senior.Satisfied[0] != "Age is within range (60-∞ years)" {
		t.Fatalf("unexpected result for open-ended range: %+v", senior)
	}
}

func TestEvaluateIncomeBrackets(t *testing.T) {
	tests := []struct {
		name   string
		income profile.Income
		limit  int64
		want   bool
	}{
		{name: "ceiling equals limit", income: profile.Income1To3Lakh, limit: 300000, want: true},
		{name: "ceiling below limit", income: profile.IncomeBelow1Lakh, limit: 300000, want: true},
		{name: "ceiling above limit", income: profile.Income3To5Lakh, limit: 300000, want: false},
		{name: "open top bracket never passes", income: profile.IncomeAbove8Lakh, limit: 100000000, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &catalog.Entry{Eligibility: catalog.Rules{IncomeMax: int64Ptr(tt.limit)}}
			got := Evaluate(&profile.Profile{Income: tt.income}, entry)
			if got.Eligible != tt.want {
				t.Fatalf("expected eligible=%v, got %v (%v)", tt.want, got.Eligible, got.Unsatisfied)
			}
		})
	}
}

func TestEvaluateRegionMismatch(t *testing.T) {
	entry := &catalog.Entry{Eligibility: catalog.Rules{Regions: []string{"Karnataka", "Tamil Nadu"}}}

	result := Evaluate(&profile.Profile{Region: "Delhi"}, entry)
	if result.Eligible {
		t.Fatalf("expected ineligible")
	}
	if result.Unsatisfied[0] != "Scheme only available in: Karnataka, Tamil Nadu" {
		t.Fatalf("unexpected reason %q", result.Unsatisfied[0])
	}

	match := Evaluate(&profile.Profile{Region: "tamil nadu"}, entry)
	if !match.Eligible {
		t.Fatalf("expected region comparison to ignore case")
	}
}

func TestConfidenceIsRatio(t *testing.T) {
	entry := &catalog.Entry{Eligibility: catalog.Rules{
		Categories: []profile.Category{profile.CategorySC},
		Gender:     profile.GenderFemale,
	}}

	result := Evaluate(&profile.Profile{Category: profile.CategorySC, Gender: profile.GenderMale}, entry)
	if result.Eligible {
		t.Fatalf("expected ineligible")
	}
	if result.Confidence != 0.5 {
		t.Fatalf("expected confidence 0.5, got %v", result.Confidence)
	}
	if result.Satisfied[0] != "Category matches (SC)" {
		t.Fatalf("unexpected satisfied %v", result.Satisfied)
	}
}

func TestEvaluateAllRanksAndFilters(t *testing.T) {
	p := fullProfile()
	open := &catalog.Entry{ID: "open", Name: "Open"}
	single := &catalog.Entry{ID: "single", Name: "Single", Eligibility: catalog.Rules{Gender: profile.GenderMale}}
	otherSingle := &catalog.Entry{ID: "other-single", Name: "Other", Eligibility: catalog.Rules{Categories: []profile.Category{profile.CategoryGeneral}}}
	excluded := &catalog.Entry{ID: "excluded", Name: "Excluded", Eligibility: catalog.Rules{Gender: profile.GenderFemale}}

	results := EvaluateAll(p, []*catalog.Entry{open, single, excluded, studentScheme(), otherSingle})

	gotIDs := make([]string, len(results))
	for i, r := range results {
		if !r.Eligible {
			t.Fatalf("ineligible result %s returned", r.Entry.ID)
		}
		gotIDs[i] = r.Entry.ID
	}

	want := []string{"student-scheme", "single", "other-single", "open"}
	if strings.Join(gotIDs, ",") != strings.Join(want, ",") {
		t.Fatalf("expected order %v, got %v", want, gotIDs)
	}
}

func TestGroupThousands(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		300000:   "300,000",
		12345678: "12,345,678",
	}
	for in, want := range tests {
		if got := groupThousands(in); got != want {
			t.Fatalf("groupThousands(%d): expected %q, got %q", in, want, got)
		}
	}
}
