package eligibility

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spigell/scheme-navigator/internal/catalog"
	"github.com/spigell/scheme-navigator/internal/profile"
)

// Result is the verdict for one profile against one entry.
type Result struct {
	Entry       *catalog.Entry `json:"scheme"`
	Eligible    bool           `json:"is_eligible"`
	Confidence  float64        `json:"confidence"`
	Satisfied   []string       `json:"matching_criteria"`
	Unsatisfied []string       `json:"missing_criteria"`
	Explanation string         `json:"explanation"`
}

// Evaluate checks every constrained attribute family of the entry against the
// profile. An unset profile value for a constrained family makes the profile
// ineligible. Unconstrained families are skipped.
func Evaluate(p *profile.Profile, entry *catalog.Entry) *Result {
	if p == nil {
		p = &profile.Profile{}
	}

	e := evaluator{profile: p, rules: entry.Eligibility, eligible: true}
	e.checkAge()
	e.checkRegion()
	e.checkEducation()
	e.checkIncome()
	e.checkCategory()
	e.checkGender()
	e.checkOccupation()

	confidence := 0.0
	if total := len(e.satisfied) + len(e.unsatisfied); total > 0 {
		confidence = float64(len(e.satisfied)) / float64(total)
	}

	return &Result{
		Entry:       entry,
		Eligible:    e.eligible,
		Confidence:  confidence,
		Satisfied:   nonNil(e.satisfied),
		Unsatisfied: nonNil(e.unsatisfied),
		Explanation: Explain(entry.Name, e.eligible, e.satisfied, e.unsatisfied),
	}
}

// EvaluateAll returns eligible results only, ordered by the number of satisfied
// constraints. Ties keep catalog order.
func EvaluateAll(p *profile.Profile, entries []*catalog.Entry) []*Result {
	results := make([]*Result, 0, len(entries))
	for _, entry := range entries {
		if r := Evaluate(p, entry); r.Eligible {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return len(results[i].Satisfied) > len(results[j].Satisfied)
	})
	return results
}

// Explain renders the template explanation for a verdict.
func Explain(name string, eligible bool, satisfied, unsatisfied []string) string {
	var b strings.Builder
	if eligible {
		fmt.Fprintf(&b, "You are eligible for %s!\n\n", name)
		b.WriteString("You meet the following requirements:\n")
		for _, c := range satisfied {
			fmt.Fprintf(&b, "  • %s\n", c)
		}
	} else {
		fmt.Fprintf(&b, "You are not eligible for %s.\n\n", name)
		if len(unsatisfied) > 0 {
			b.WriteString("Reasons:\n")
			for _, c := range unsatisfied {
				fmt.Fprintf(&b, "  • %s\n", c)
			}
		}
	}
	return strings.TrimSpace(b.String())
}

type evaluator struct {
	profile     *profile.Profile
	rules       catalog.Rules
	eligible    bool
	satisfied   []string
	unsatisfied []string
}

func (e *evaluator) pass(format string, args ...any) {
	e.satisfied = append(e.satisfied, fmt.Sprintf(format, args...))
}

func (e *evaluator) fail(format string, args ...any) {
	e.unsatisfied = append(e.unsatisfied, fmt.Sprintf(format, args...))
	e.eligible = false
}

// Age is one family. Both bounds may fail and each failure is recorded.
func (e *evaluator) checkAge() {
	minAge, maxAge := e.rules.MinAge, e.rules.MaxAge
	if minAge == nil && maxAge == nil {
		return
	}
	if e.profile.Age == nil {
		e.fail("Age information required")
		return
	}

	age := *e.profile.Age
	ok := true
	if minAge != nil && age < *minAge {
		e.fail("Minimum age requirement: %d years", *minAge)
		ok = false
	}
	if maxAge != nil && age > *maxAge {
		e.fail("Maximum age requirement: %d years", *maxAge)
		ok = false
	}
	if !ok {
		return
	}

	lower, upper := "0", "∞"
	if minAge != nil {
		lower = strconv.Itoa(*minAge)
	}
	if maxAge != nil {
		upper = strconv.Itoa(*maxAge)
	}
	e.pass("Age is within range (%s-%s years)", lower, upper)
}

func (e *evaluator) checkRegion() {
	if !e.rules.RestrictsRegion() {
		return
	}
	switch {
	case e.profile.Region == "":
		e.fail("State information required")
	case !e.rules.AllowsRegion(e.profile.Region):
		e.fail("Scheme only available in: %s", strings.Join(e.rules.Regions, ", "))
	default:
		e.pass("State matches (%s)", e.profile.Region)
	}
}

func (e *evaluator) checkEducation() {
	if len(e.rules.EducationLevels) == 0 {
		return
	}
	switch {
	case e.profile.Education == "":
		e.fail("Education level information required")
	case !contains(e.rules.EducationLevels, e.profile.Education):
		e.fail("Required education: %s", join(e.rules.EducationLevels))
	default:
		e.pass("Education level matches (%s)", e.profile.Education)
	}
}

func (e *evaluator) checkIncome() {
	if e.rules.IncomeMax == nil {
		return
	}
	if e.profile.Income == "" {
		e.fail("Income information required")
		return
	}

	limit := *e.rules.IncomeMax
	ceiling, ok := e.profile.Income.Ceiling()
	if !ok {
		ceiling = math.MaxInt64
	}
	if ceiling > limit {
		e.fail("Maximum income requirement: Rs. %s per year", groupThousands(limit))
		return
	}
	e.pass("Income is within limit (Rs. %s per year)", groupThousands(limit))
}

func (e *evaluator) checkCategory() {
	if len(e.rules.Categories) == 0 {
		return
	}
	switch {
	case e.profile.Category == "":
		e.fail("Category information required")
	case !contains(e.rules.Categories, e.profile.Category):
		e.fail("Scheme only for: %s", strings.ToUpper(join(e.rules.Categories)))
	default:
		e.pass("Category matches (%s)", strings.ToUpper(string(e.profile.Category)))
	}
}

func (e *evaluator) checkGender() {
	if e.rules.Gender == "" {
		return
	}
	switch {
	case e.profile.Gender == "":
		e.fail("Gender information required")
	case e.profile.Gender != e.rules.Gender:
		e.fail("Scheme only for: %s", e.rules.Gender)
	default:
		e.pass("Gender matches (%s)", e.profile.Gender)
	}
}

func (e *evaluator) checkOccupation() {
	if len(e.rules.Occupations) == 0 {
		return
	}
	switch {
	case e.profile.Occupation == "":
		e.fail("Occupation information required")
	case !contains(e.rules.Occupations, e.profile.Occupation):
		e.fail("Scheme only for: %s", join(e.rules.Occupations))
	default:
		e.pass("Occupation matches (%s)", e.profile.Occupation)
	}
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func join[T ~string](list []T) string {
	parts := make([]string, len(list))
	for i, v := range list {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// groupThousands formats n with comma separators, e.g. 300000 -> 300,000.
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
