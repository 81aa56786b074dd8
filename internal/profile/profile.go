package profile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidValue is returned when an attribute value is outside its vocabulary or range.
var ErrInvalidValue = errors.New("invalid attribute value")

const (
	MinAge = 0
	MaxAge = 120
)

// Field names a profile attribute. The declaration order is the order in which
// attributes are asked for during a dialog.
type Field int

const (
	FieldAge Field = iota
	FieldRegion
	FieldEducation
	FieldIncome
	FieldCategory
	FieldGender
	FieldOccupation
)

// Fields lists every attribute in asking order.
var Fields = []Field{
	FieldAge,
	FieldRegion,
	FieldEducation,
	FieldIncome,
	FieldCategory,
	FieldGender,
	FieldOccupation,
}

var fieldNames = map[Field]string{
	FieldAge:        "age",
	FieldRegion:     "region",
	FieldEducation:  "education",
	FieldIncome:     "income",
	FieldCategory:   "category",
	FieldGender:     "gender",
	FieldOccupation: "occupation",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "field(" + strconv.Itoa(int(f)) + ")"
}

var fieldAliases = map[string]Field{
	"state":           FieldRegion,
	"education_level": FieldEducation,
	"income_range":    FieldIncome,
}

// ParseField resolves an attribute name or one of its aliases.
func ParseField(name string) (Field, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if f, ok := fieldAliases[name]; ok {
		return f, true
	}
	for f, n := range fieldNames {
		if n == name {
			return f, true
		}
	}
	return 0, false
}

// Profile holds the attributes known about a user. Empty strings and a nil Age mean unset.
type Profile struct {
	Age        *int       `json:"age,omitempty" mapstructure:"age"`
	Region     string     `json:"region,omitempty" mapstructure:"region"`
	Education  Education  `json:"education,omitempty" mapstructure:"education"`
	Income     Income     `json:"income,omitempty" mapstructure:"income"`
	Category   Category   `json:"category,omitempty" mapstructure:"category"`
	Gender     Gender     `json:"gender,omitempty" mapstructure:"gender"`
	Occupation Occupation `json:"occupation,omitempty" mapstructure:"occupation"`
}

// IsSet reports whether the attribute has a value.
func (p *Profile) IsSet(f Field) bool {
	if p == nil {
		return false
	}
	switch f {
	case FieldAge:
		return p.Age != nil
	case FieldRegion:
		return p.Region != ""
	case FieldEducation:
		return p.Education != ""
	case FieldIncome:
		return p.Income != ""
	case FieldCategory:
		return p.Category != ""
	case FieldGender:
		return p.Gender != ""
	case FieldOccupation:
		return p.Occupation != ""
	}
	return false
}

// Missing returns unset attributes in asking order.
func (p *Profile) Missing() []Field {
	missing := make([]Field, 0, len(Fields))
	for _, f := range Fields {
		if !p.IsSet(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Clone returns a deep copy.
func (p *Profile) Clone() Profile {
	if p == nil {
		return Profile{}
	}
	c := *p
	if p.Age != nil {
		age := *p.Age
		c.Age = &age
	}
	return c
}

// Validate checks every set attribute against its range or vocabulary.
func (p *Profile) Validate() error {
	if p == nil {
		return nil
	}
	if p.Age != nil && (*p.Age < MinAge || *p.Age > MaxAge) {
		return fmt.Errorf("age %d: %w", *p.Age, ErrInvalidValue)
	}
	if p.Education != "" && !p.Education.Valid() {
		return fmt.Errorf("education %q: %w", p.Education, ErrInvalidValue)
	}
	if p.Income != "" && !p.Income.Valid() {
		return fmt.Errorf("income %q: %w", p.Income, ErrInvalidValue)
	}
	if p.Category != "" && !p.Category.Valid() {
		return fmt.Errorf("category %q: %w", p.Category, ErrInvalidValue)
	}
	if p.Gender != "" && !p.Gender.Valid() {
		return fmt.Errorf("gender %q: %w", p.Gender, ErrInvalidValue)
	}
	if p.Occupation != "" && !p.Occupation.Valid() {
		return fmt.Errorf("occupation %q: %w", p.Occupation, ErrInvalidValue)
	}
	return nil
}

// Apply writes the update into the profile, overwriting any previous value.
func (p *Profile) Apply(u Update) {
	if p == nil || u == nil {
		return
	}
	u.apply(p)
}
