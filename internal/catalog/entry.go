package catalog

import (
	"strings"

	"github.com/spigell/scheme-navigator/internal/profile"
)

// DefaultLanguage is used when no translation exists for the requested language.
const DefaultLanguage = "en"

// Rules is the eligibility rule set of an entry. A nil pointer or empty slice
// leaves the attribute unrestricted.
type Rules struct {
	MinAge          *int                 `json:"min_age,omitempty"`
	MaxAge          *int                 `json:"max_age,omitempty"`
	Regions         []string             `json:"states,omitempty"`
	EducationLevels []profile.Education  `json:"education_levels,omitempty"`
	IncomeMax       *int64               `json:"income_max,omitempty"`
	Categories      []profile.Category   `json:"categories,omitempty"`
	Gender          profile.Gender       `json:"gender,omitempty"`
	Occupations     []profile.Occupation `json:"occupations,omitempty"`
}

// RestrictsRegion reports whether the entry is limited to a set of regions.
func (r Rules) RestrictsRegion() bool { return len(r.Regions) > 0 }

// AllowsRegion reports whether region is in the allowed set. An unrestricted
// rule set allows any region.
func (r Rules) AllowsRegion(region string) bool {
	if !r.RestrictsRegion() {
		return true
	}
	for _, allowed := range r.Regions {
		if profile.SameRegion(allowed, region) {
			return true
		}
	}
	return false
}

// Entry is a single welfare scheme. Entries are not modified after loading.
type Entry struct {
	ID                      string            `json:"id"`
	Name                    string            `json:"name"`
	NameTranslations        map[string]string `json:"name_translations,omitempty"`
	Description             string            `json:"description"`
	DescriptionTranslations map[string]string `json:"description_translations,omitempty"`
	Eligibility             Rules             `json:"eligibility"`
	Benefits                string            `json:"benefits"`
	RequiredDocuments       []string          `json:"required_documents,omitempty"`
	ApplicationProcess      string            `json:"application_process"`
	ApplicationURL          string            `json:"application_url,omitempty"`
	OfficeLocation          string            `json:"office_location,omitempty"`
	Deadline                string            `json:"deadline,omitempty"`
	SourceURL               string            `json:"source_url"`
	LastUpdated             string            `json:"last_updated,omitempty"`
}

// LocalizedName returns the name in lang, falling back to the default name.
func (e *Entry) LocalizedName(lang string) string {
	if t := translation(e.NameTranslations, lang); t != "" {
		return t
	}
	return e.Name
}

// LocalizedDescription returns the description in lang, falling back to the default.
func (e *Entry) LocalizedDescription(lang string) string {
	if t := translation(e.DescriptionTranslations, lang); t != "" {
		return t
	}
	return e.Description
}

// SearchText is the text embedded for similarity search.
func (e *Entry) SearchText() string {
	return e.Name + " " + e.Description + " Benefits: " + e.Benefits
}

func translation(m map[string]string, lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" || lang == DefaultLanguage {
		return ""
	}
	return strings.TrimSpace(m[lang])
}
