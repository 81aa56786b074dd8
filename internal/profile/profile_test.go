package profile

import (
	"errors"
	"testing"
)

func TestParseUpdate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		field   string
		value   any
		wantOK  bool
		wantErr bool
		check   func(t *testing.T, p Profile)
	}{
		{
			name:   "age from float",
			field:  "age",
			value:  float64(25),
			wantOK: true,
			check: func(t *testing.T, p Profile) {
				if p.Age == nil || *p.Age != 25 {
					t.Fatalf("expected age 25, got %v", p.Age)
				}
			},
		},
		{
			name:   "age from string",
			field:  "age",
			value:  " 40 ",
			wantOK: true,
			check: func(t *testing.T, p Profile) {
				if p.Age == nil || *p.Age != 40 {
					t.Fatalf("expected age 40, got %v", p.Age)
				}
			},
		},
		{name: "age above range", field: "age", value: 121, wantOK: true, wantErr: true},
		{name: "negative age", field: "age", value: -1, wantOK: true, wantErr: true},
		{
			name:   "state alias sets region",
			field:  "state",
			value:  "Maharashtra",
			wantOK: true,
			check: func(t *testing.T, p Profile) {
				if p.Region != "Maharashtra" {
					t.Fatalf("unexpected region %q", p.Region)
				}
			},
		},
		{
			name:   "category is case insensitive",
			field:  "category",
			value:  "OBC",
			wantOK: true,
			check: func(t *testing.T, p Profile) {
				if p.Category != CategoryOBC {
					t.Fatalf("unexpected category %q", p.Category)
				}
			},
		},
		{name: "income outside vocabulary", field: "income", value: "10lakh", wantOK: true, wantErr: true},
		{name: "empty gender", field: "gender", value: "", wantOK: true, wantErr: true},
		{name: "unknown attribute is ignored", field: "favourite_colour", value: "blue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u, ok, err := ParseUpdate(tt.field, tt.value)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidValue) {
					t.Fatalf("expected ErrInvalidValue, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ok {
				if u != nil {
					t.Fatalf("expected no update for unknown attribute")
				}
				return
			}

			var p Profile
			p.Apply(u)
			tt.check(t, p)
		})
	}
}

func TestApplyOverwrites(t *testing.T) {
	var p Profile
	p.Apply(GenderUpdate{Value: GenderMale})
	p.Apply(GenderUpdate{Value: GenderFemale})

	if p.Gender != GenderFemale {
		t.Fatalf("expected latest value to win, got %q", p.Gender)
	}
}

func TestMissingFollowsAskingOrder(t *testing.T) {
	age := 30
	p := Profile{Age: &age, Income: Income1To3Lakh}

	missing := p.Missing()
	want := []Field{FieldRegion, FieldEducation, FieldCategory, FieldGender, FieldOccupation}
	if len(missing) != len(want) {
		t.Fatalf("expected %d missing fields, got %v", len(want), missing)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], missing[i])
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	age := 30
	p := Profile{Age: &age}
	c := p.Clone()
	*c.Age = 31

	if *p.Age != 30 {
		t.Fatalf("clone shares age pointer")
	}
}

func TestIncomeCeiling(t *testing.T) {
	tests := map[Income]int64{
		IncomeBelow1Lakh: 100000,
		Income1To3Lakh:   300000,
		Income3To5Lakh:   500000,
		Income5To8Lakh:   800000,
	}
	for income, want := range tests {
		got, ok := income.Ceiling()
		if !ok || got != want {
			t.Fatalf("%s: expected %d, got %d (ok=%v)", income, want, got, ok)
		}
	}

	if _, ok := Income("unknown").Ceiling(); ok {
		t.Fatalf("expected unknown bracket to have no ceiling")
	}
}

func TestValidate(t *testing.T) {
	age := 130
	p := Profile{Age: &age}
	if err := p.Validate(); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}

	ok := Profile{Region: "Anywhere", Gender: GenderOther}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
