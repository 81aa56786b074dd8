package catalog

import "sort"

// Stats summarises a loaded catalog.
type Stats struct {
	Total                 int            `json:"total_schemes"`
	WithTranslations      int            `json:"schemes_with_translations"`
	WithDeadlines         int            `json:"schemes_with_deadlines"`
	WithAgeRestrictions   int            `json:"schemes_with_age_restrictions"`
	WithIncomeRestriction int            `json:"schemes_with_income_restrictions"`
	WithCategoryRestrict  int            `json:"schemes_with_category_restrictions"`
	WithRegionRestriction int            `json:"schemes_with_state_restrictions"`
	Topics                map[string]int `json:"categories"`
	Regions               []string       `json:"states_covered"`
	SocialCategories      []string       `json:"unique_categories"`
	Occupations           []string       `json:"unique_occupations"`
}

// Summarize computes catalog statistics. Lists are sorted for stable output.
func Summarize(entries []*Entry) Stats {
	s := Stats{Total: len(entries), Topics: make(map[string]int)}
	regions := make(map[string]struct{})
	categories := make(map[string]struct{})
	occupations := make(map[string]struct{})

	for _, e := range entries {
		s.Topics[e.Category()]++

		if len(e.NameTranslations) > 0 || len(e.DescriptionTranslations) > 0 {
			s.WithTranslations++
		}
		if e.Deadline != "" {
			s.WithDeadlines++
		}

		r := e.Eligibility
		if r.MinAge != nil || r.MaxAge != nil {
			s.WithAgeRestrictions++
		}
		if r.IncomeMax != nil {
			s.WithIncomeRestriction++
		}
		if len(r.Categories) > 0 {
			s.WithCategoryRestrict++
			for _, c := range r.Categories {
				categories[string(c)] = struct{}{}
			}
		}
		if r.RestrictsRegion() {
			s.WithRegionRestriction++
			for _, region := range r.Regions {
				regions[region] = struct{}{}
			}
		}
		for _, o := range r.Occupations {
			occupations[string(o)] = struct{}{}
		}
	}

	s.Regions = sortedKeys(regions)
	s.SocialCategories = sortedKeys(categories)
	s.Occupations = sortedKeys(occupations)
	return s
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
