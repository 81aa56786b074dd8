package profile

import (
	"math"
	"strings"
)

type Education string

const (
	EducationBelow10th    Education = "below_10th"
	Education10thPass     Education = "10th_pass"
	Education12thPass     Education = "12th_pass"
	EducationGraduate     Education = "graduate"
	EducationPostgraduate Education = "postgraduate"
)

var educationLevels = []Education{
	EducationBelow10th,
	Education10thPass,
	Education12thPass,
	EducationGraduate,
	EducationPostgraduate,
}

func (e Education) Valid() bool {
	for _, v := range educationLevels {
		if v == e {
			return true
		}
	}
	return false
}

type Income string

const (
	IncomeBelow1Lakh Income = "below_1lakh"
	Income1To3Lakh   Income = "1-3lakh"
	Income3To5Lakh   Income = "3-5lakh"
	Income5To8Lakh   Income = "5-8lakh"
	IncomeAbove8Lakh Income = "above_8lakh"
)

var incomeCeilings = map[Income]int64{
	IncomeBelow1Lakh: 100000,
	Income1To3Lakh:   300000,
	Income3To5Lakh:   500000,
	Income5To8Lakh:   800000,
	IncomeAbove8Lakh: math.MaxInt64,
}

func (i Income) Valid() bool {
	_, ok := incomeCeilings[i]
	return ok
}

// Ceiling returns the upper bound of the bracket in rupees per year.
// The open-ended top bracket reports math.MaxInt64.
func (i Income) Ceiling() (int64, bool) {
	c, ok := incomeCeilings[i]
	return c, ok
}

type Category string

const (
	CategoryGeneral Category = "general"
	CategorySC      Category = "sc"
	CategoryST      Category = "st"
	CategoryOBC     Category = "obc"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategorySC, CategoryST, CategoryOBC:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type Occupation string

const (
	OccupationStudent      Occupation = "student"
	OccupationFarmer       Occupation = "farmer"
	OccupationSelfEmployed Occupation = "self_employed"
	OccupationUnemployed   Occupation = "unemployed"
	OccupationSalaried     Occupation = "salaried"
	OccupationOther        Occupation = "other"
)

func (o Occupation) Valid() bool {
	switch o {
	case OccupationStudent, OccupationFarmer, OccupationSelfEmployed,
		OccupationUnemployed, OccupationSalaried, OccupationOther:
		return true
	}
	return false
}

// NormalizeRegion lowercases and collapses whitespace so region names compare reliably.
func NormalizeRegion(region string) string {
	return strings.Join(strings.Fields(strings.ToLower(region)), " ")
}

// SameRegion compares region names ignoring case and spacing.
func SameRegion(a, b string) bool {
	return NormalizeRegion(a) == NormalizeRegion(b)
}
