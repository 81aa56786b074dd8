package profile

import (
	"fmt"
	"strconv"
	"strings"
)

// Update is a single attribute write. The set of implementations is closed.
type Update interface {
	Field() Field
	apply(p *Profile)
}

type AgeUpdate struct{ Value int }

type RegionUpdate struct{ Value string }

type EducationUpdate struct{ Value Education }

type IncomeUpdate struct{ Value Income }

type CategoryUpdate struct{ Value Category }

type GenderUpdate struct{ Value Gender }

type OccupationUpdate struct{ Value Occupation }

func (AgeUpdate) Field() Field { return FieldAge }
func (RegionUpdate) Field() Field { return FieldRegion }
func (EducationUpdate) Field() Field { return FieldEducation }
func (IncomeUpdate) Field() Field { return FieldIncome }
func (CategoryUpdate) Field() Field { return FieldCategory }
func (GenderUpdate) Field() Field { return FieldGender }
func (OccupationUpdate) Field() Field { return FieldOccupation }

func (u AgeUpdate) apply(p *Profile) {
	age := u.Value
	p.Age = &age
}

func (u RegionUpdate) apply(p *Profile) { p.Region = u.Value }
func (u EducationUpdate) apply(p *Profile) { p.Education = u.Value }
func (u IncomeUpdate) apply(p *Profile) { p.Income = u.Value }
func (u CategoryUpdate) apply(p *Profile) { p.Category = u.Value }
func (u GenderUpdate) apply(p *Profile) { p.Gender = u.Value }
func (u OccupationUpdate) apply(p *Profile) { p.Occupation = u.Value }

// ParseUpdate builds an Update from a loosely typed attribute name and value.
// An unknown name yields ok=false and no error. A known name with an out of
// range or out of vocabulary value yields ErrInvalidValue.
func ParseUpdate(name string, value any) (u Update, ok bool, err error) {
	field, known := ParseField(name)
	if !known {
		return nil, false, nil
	}

	if field == FieldAge {
		age, err := toInt(value)
		if err != nil {
			return nil, true, fmt.Errorf("age %v: %w", value, ErrInvalidValue)
		}
		if age < MinAge || age > MaxAge {
			return nil, true, fmt.Errorf("age %d: %w", age, ErrInvalidValue)
		}
		return AgeUpdate{Value: age}, true, nil
	}

	s := strings.TrimSpace(fmt.Sprint(value))
	if value == nil || s == "" {
		return nil, true, fmt.Errorf("%s is empty: %w", field, ErrInvalidValue)
	}
	lower := strings.ToLower(s)

	switch field {
	case FieldRegion:
		return RegionUpdate{Value: s}, true, nil
	case FieldEducation:
		if v := Education(lower); v.Valid() {
			return EducationUpdate{Value: v}, true, nil
		}
	case FieldIncome:
		if v := Income(lower); v.Valid() {
			return IncomeUpdate{Value: v}, true, nil
		}
	case FieldCategory:
		if v := Category(lower); v.Valid() {
			return CategoryUpdate{Value: v}, true, nil
		}
	case FieldGender:
		if v := Gender(lower); v.Valid() {
			return GenderUpdate{Value: v}, true, nil
		}
	case FieldOccupation:
		if v := Occupation(lower); v.Valid() {
			return OccupationUpdate{Value: v}, true, nil
		}
	}

	return nil, true, fmt.Errorf("%s %q: %w", field, s, ErrInvalidValue)
}

func toInt(v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		if val != float64(int(val)) {
			return 0, fmt.Errorf("not a whole number: %v", val)
		}
		return int(val), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(val))
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
