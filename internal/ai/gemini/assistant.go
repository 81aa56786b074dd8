package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/scheme-navigator/internal/ai"
	"github.com/spigell/scheme-navigator/internal/catalog"
	"github.com/spigell/scheme-navigator/internal/profile"
	"github.com/spigell/scheme-navigator/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Assistant implements ai.Assistant on top of a Gemini generator.
type Assistant struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.Assistant = (*Assistant)(nil)

//go:embed extract.md
var extractTemplate string

//go:embed explain.md
var explainTemplate string

const (
	defaultMaxLogLength = 200
	// defaultConfidence applies when the model omits a confidence value.
	defaultConfidence = 0.5
)

func NewAssistant(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Assistant {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Assistant{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// extractionPayload mirrors the JSON the extraction prompt asks for. Values
// are decoded leniently since models often quote numbers.
type extractionPayload struct {
	Age        *int     `mapstructure:"age"`
	State      *string  `mapstructure:"state"`
	Education  *string  `mapstructure:"education_level"`
	Income     *string  `mapstructure:"income_range"`
	Category   *string  `mapstructure:"category"`
	Gender     *string  `mapstructure:"gender"`
	Occupation *string  `mapstructure:"occupation"`
	Confidence *float64 `mapstructure:"confidence"`
}

func (a *Assistant) Extract(ctx context.Context, message, language string) (*ai.Extraction, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errors.New("message must not be empty")
	}

	prompt := buildPrompt(extractTemplate, map[string]string{
		"{{MESSAGE}}":  message,
		"{{LANGUAGE}}": language,
	})

	raw, err := a.generate(ctx, "extract", prompt)
	if err != nil {
		return nil, err
	}

	payload, err := parseExtraction(raw)
	if err != nil {
		return nil, err
	}

	extraction := &ai.Extraction{Confidence: defaultConfidence, Raw: raw}
	if payload.Confidence != nil {
		extraction.Confidence = clamp(*payload.Confidence)
	}

	fields := []struct {
		name  string
		value any
	}{
		{"age", derefInt(payload.Age)},
		{"state", derefString(payload.State)},
		{"education_level", derefString(payload.Education)},
		{"income_range", derefString(payload.Income)},
		{"category", derefString(payload.Category)},
		{"gender", derefString(payload.Gender)},
		{"occupation", derefString(payload.Occupation)},
	}

	for _, f := range fields {
		if f.value == nil {
			continue
		}
		u, ok, err := profile.ParseUpdate(f.name, f.value)
		if err != nil || !ok {
			a.logger.Debug("dropping extracted value", zap.String("field", f.name), zap.Any("value", f.value), zap.Error(err))
			continue
		}
		extraction.Updates = append(extraction.Updates, u)
	}

	return extraction, nil
}

func (a *Assistant) Explain(ctx context.Context, req ai.ExplainRequest) (string, error) {
	if req.Entry == nil {
		return "", errors.New("scheme is required")
	}

	status := "not eligible"
	if req.Eligible {
		status = "eligible"
	}

	prompt := buildPrompt(explainTemplate, map[string]string{
		"{{STATUS}}":           status,
		"{{SCHEME_NAME}}":      req.Entry.LocalizedName(req.Language),
		"{{SCHEME_JSON}}":      mustJSON(schemeSummary(req.Entry, req.Language)),
		"{{PROFILE_JSON}}":     mustJSON(req.Profile),
		"{{SATISFIED_JSON}}":   mustJSON(req.Satisfied),
		"{{UNSATISFIED_JSON}}": mustJSON(req.Unsatisfied),
		"{{LANGUAGE}}":         req.Language,
	})

	return a.generate(ctx, "explain", prompt)
}

func (a *Assistant) generate(ctx context.Context, operation, prompt string) (string, error) {
	a.logger.Debug("gemini generate content request",
		zap.String("operation", operation),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	a.logger.Debug("gemini generate content response",
		zap.String("operation", operation),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)
	return raw, nil
}

func buildPrompt(template string, values map[string]string) string {
	prompt := template
	for placeholder, value := range values {
		prompt = strings.ReplaceAll(prompt, placeholder, value)
	}
	return prompt
}

func parseExtraction(raw string) (*extractionPayload, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	var payload extractionPayload
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &payload,
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	return &payload, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func schemeSummary(e *catalog.Entry, lang string) map[string]any {
	return map[string]any{
		"name":        e.LocalizedName(lang),
		"description": e.LocalizedDescription(lang),
		"benefits":    e.Benefits,
		"eligibility": e.Eligibility,
	}
}

func mustJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func derefInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func derefString(v *string) any {
	if v == nil || strings.TrimSpace(*v) == "" || strings.EqualFold(strings.TrimSpace(*v), "null") {
		return nil
	}
	return *v
}
