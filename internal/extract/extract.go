package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/scheme-navigator/internal/profile"
)

var (
	ageRe     = regexp.MustCompile(`\b(\d{1,3})\b`)
	incomeRe  = regexp.MustCompile(`\d+\s*(?:-|to)\s*\d+\s*lakh|\d+\s*lakh|\b\d+(?:st|nd|rd|th)\b`)
	wordSplit = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

var regions = []string{
	"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh", "Goa", "Gujarat",
	"Haryana", "Himachal Pradesh", "Jharkhand", "Karnataka", "Kerala", "Madhya Pradesh",
	"Maharashtra", "Manipur", "Meghalaya", "Mizoram", "Nagaland", "Odisha", "Punjab",
	"Rajasthan", "Sikkim", "Tamil Nadu", "Telangana", "Tripura", "Uttar Pradesh",
	"Uttarakhand", "West Bengal", "Delhi", "Jammu and Kashmir", "Ladakh", "Puducherry",
	"Chandigarh",
}

type rule[T any] struct {
	value   T
	phrases []string
}

// Earlier rules win, so more specific phrases come first.
var educationRules = []rule[profile.Education]{
	{profile.EducationPostgraduate, []string{"postgraduate", "post graduate", "masters", "master's", "phd"}},
	{profile.EducationGraduate, []string{"graduate", "degree", "bachelor", "bachelors"}},
	{profile.Education12thPass, []string{"12th", "intermediate", "higher secondary"}},
	{profile.EducationBelow10th, []string{"below 10th", "no schooling", "illiterate"}},
	{profile.Education10thPass, []string{"10th", "matriculation", "matric"}},
}

var incomeRules = []rule[profile.Income]{
	{profile.IncomeBelow1Lakh, []string{"below 1 lakh", "less than 1 lakh", "under 1 lakh"}},
	{profile.Income1To3Lakh, []string{"1-3 lakh", "1 to 3 lakh", "1-3lakh"}},
	{profile.Income3To5Lakh, []string{"3-5 lakh", "3 to 5 lakh", "3-5lakh"}},
	{profile.Income5To8Lakh, []string{"5-8 lakh", "5 to 8 lakh", "5-8lakh"}},
	{profile.IncomeAbove8Lakh, []string{"above 8 lakh", "more than 8 lakh", "over 8 lakh"}},
}

var categoryRules = []rule[profile.Category]{
	{profile.CategorySC, []string{"sc", "scheduled caste"}},
	{profile.CategoryST, []string{"st", "scheduled tribe"}},
	{profile.CategoryOBC, []string{"obc", "other backward"}},
	{profile.CategoryGeneral, []string{"general"}},
}

var genderRules = []rule[profile.Gender]{
	{profile.GenderFemale, []string{"female", "woman", "girl"}},
	{profile.GenderMale, []string{"male", "man", "boy"}},
}

var occupationRules = []rule[profile.Occupation]{
	{profile.OccupationStudent, []string{"student"}},
	{profile.OccupationFarmer, []string{"farmer", "farming", "agriculture"}},
	{profile.OccupationUnemployed, []string{"unemployed", "jobless"}},
	{profile.OccupationSelfEmployed, []string{"self employed", "self-employed", "own business"}},
	{profile.OccupationSalaried, []string{"salaried", "employee"}},
}

// Rules extracts attributes from free text with keyword matching. Only
// attributes that are unset in current are returned.
func Rules(message string, current *profile.Profile) []profile.Update {
	if current == nil {
		current = &profile.Profile{}
	}
	text := strings.ToLower(message)
	words := " " + strings.Join(wordSplit.Split(text, -1), " ") + " "

	var updates []profile.Update

	if !current.IsSet(profile.FieldAge) {
		if age, ok := findAge(text); ok {
			updates = append(updates, profile.AgeUpdate{Value: age})
		}
	}

	if !current.IsSet(profile.FieldRegion) {
		for _, r := range regions {
			if hasPhrase(text, words, strings.ToLower(r)) {
				updates = append(updates, profile.RegionUpdate{Value: r})
				break
			}
		}
	}

	if !current.IsSet(profile.FieldEducation) {
		if v, ok := match(text, words, educationRules); ok {
			updates = append(updates, profile.EducationUpdate{Value: v})
		}
	}
	if !current.IsSet(profile.FieldIncome) {
		if v, ok := match(text, words, incomeRules); ok {
			updates = append(updates, profile.IncomeUpdate{Value: v})
		}
	}
	if !current.IsSet(profile.FieldCategory) {
		if v, ok := match(text, words, categoryRules); ok {
			updates = append(updates, profile.CategoryUpdate{Value: v})
		}
	}
	if !current.IsSet(profile.FieldGender) {
		if v, ok := match(text, words, genderRules); ok {
			updates = append(updates, profile.GenderUpdate{Value: v})
		}
	}
	if !current.IsSet(profile.FieldOccupation) {
		if v, ok := match(text, words, occupationRules); ok {
			updates = append(updates, profile.OccupationUpdate{Value: v})
		}
	}

	return updates
}

// findAge returns the first standalone number in range, ignoring income
// amounts and ordinals such as "12th".
func findAge(text string) (int, bool) {
	cleaned := incomeRe.ReplaceAllString(text, " ")
	for _, m := range ageRe.FindAllStringSubmatch(cleaned, -1) {
		age, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if age >= 1 && age <= profile.MaxAge {
			return age, true
		}
	}
	return 0, false
}

func match[T any](text, words string, rules []rule[T]) (T, bool) {
	for _, r := range rules {
		for _, p := range r.phrases {
			if hasPhrase(text, words, p) {
				return r.value, true
			}
		}
	}
	var zero T
	return zero, false
}

// hasPhrase matches whole words. Phrases with punctuation are matched against
// the raw text instead.
func hasPhrase(text, words, phrase string) bool {
	if strings.ContainsAny(phrase, "-'") {
		return strings.Contains(text, phrase)
	}
	return strings.Contains(words, " "+phrase+" ")
}
