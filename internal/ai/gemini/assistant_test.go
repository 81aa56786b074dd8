package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/scheme-navigator/internal/ai"
	"github.com/spigell/scheme-navigator/internal/catalog"
	"github.com/spigell/scheme-navigator/internal/profile"
)

func applyAll(updates []profile.Update) profile.Profile {
	var p profile.Profile
	for _, u := range updates {
		p.Apply(u)
	}
	return p
}

func TestAssistantExtract(t *testing.T) {
	gen := &stubGenerator{response: "```json\n{\"age\": \"25\", \"state\": \"Maharashtra\", \"education_level\": \"graduate\", \"income_range\": null, \"category\": \"obc\", \"gender\": \"null\", \"occupation\": \"student\", \"confidence\": \"0.8\"}\n```"}
	assistant := NewAssistant(gen, nil, 0)

	got, err := assistant.Extract(context.Background(), "I am 25 from Maharashtra", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Confidence != 0.8 {
		t.Fatalf("expected confidence 0.8, got %v", got.Confidence)
	}

	p := applyAll(got.Updates)
	if p.Age == nil || *p.Age != 25 {
		t.Fatalf("expected age 25, got %v", p.Age)
	}
	if p.Region != "Maharashtra" || p.Education != profile.EducationGraduate || p.Category != profile.CategoryOBC || p.Occupation != profile.OccupationStudent {
		t.Fatalf("unexpected profile %+v", p)
	}
	if p.Income != "" || p.Gender != "" {
		t.Fatalf("expected null fields to stay unset, got %+v", p)
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("expected one prompt, got %d", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	if !strings.Contains(prompt, "I am 25 from Maharashtra") || !strings.Contains(prompt, "(language: en)") {
		t.Fatalf("prompt missing placeholders: %s", prompt)
	}
	if strings.Contains(prompt, "{{") {
		t.Fatalf("prompt has unreplaced placeholders: %s", prompt)
	}
}

func TestAssistantExtractDropsInvalidValues(t *testing.T) {
	gen := &stubGenerator{response: `{"age": 300, "education_level": "phd", "gender": "female", "confidence": 7}`}

	got, err := NewAssistant(gen, nil, 10).Extract(context.Background(), "msg", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Updates) != 1 {
		t.Fatalf("expected only gender to survive, got %d updates", len(got.Updates))
	}
	if got.Updates[0].Field() != profile.FieldGender {
		t.Fatalf("unexpected field %v", got.Updates[0].Field())
	}
	if got.Confidence != 1 {
		t.Fatalf("expected confidence clamped to 1, got %v", got.Confidence)
	}
}

func TestAssistantExtractDefaultConfidence(t *testing.T) {
	gen := &stubGenerator{response: `{"age": 40}`}

	got, err := NewAssistant(gen, nil, 0).Extract(context.Background(), "forty", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Confidence != defaultConfidence {
		t.Fatalf("expected default confidence, got %v", got.Confidence)
	}
}

func TestAssistantExtractErrors(t *testing.T) {
	tests := []struct {
		name    string
		gen     *stubGenerator
		message string
	}{
		{name: "empty message", gen: &stubGenerator{}, message: " "},
		{name: "generator failure", gen: &stubGenerator{err: errors.New("timeout")}, message: "hi"},
		{name: "not json", gen: &stubGenerator{response: "I could not find anything"}, message: "hi"},
		{name: "wrong type", gen: &stubGenerator{response: `{"age": {"years": 3}}`}, message: "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAssistant(tt.gen, nil, 0).Extract(context.Background(), tt.message, "en"); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestAssistantExplain(t *testing.T) {
	gen := &stubGenerator{response: "You qualify because you live in Maharashtra."}
	entry := &catalog.Entry{
		ID:               "mh-scholarship",
		Name:             "Post Matric Scholarship",
		NameTranslations: map[string]string{"hi": "पोस्ट मैट्रिक छात्रवृत्ति"},
		Description:      "Support for students",
		Benefits:         "Tuition fees",
	}

	got, err := NewAssistant(gen, nil, 0).Explain(context.Background(), ai.ExplainRequest{
		Entry:       entry,
		Eligible:    true,
		Satisfied:   []string{"State: Maharashtra"},
		Unsatisfied: []string{},
		Language:    "hi",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != gen.response {
		t.Fatalf("unexpected explanation %q", got)
	}

	prompt := gen.prompts[0]
	for _, want := range []string{"is eligible for", "पोस्ट मैट्रिक छात्रवृत्ति", "State: Maharashtra", `code "hi"`, "Tuition fees"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q: %s", want, prompt)
		}
	}
	if strings.Contains(prompt, "{{") {
		t.Fatalf("prompt has unreplaced placeholders: %s", prompt)
	}

	if _, err := NewAssistant(gen, nil, 0).Explain(context.Background(), ai.ExplainRequest{}); err == nil {
		t.Fatalf("expected error without a scheme")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}```":       `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
	}
	for in, want := range tests {
		if got := extractJSON(in); got != want {
			t.Fatalf("extractJSON(%q) = %q, want %q", in, got, want)
		}
	}
}
