package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/scheme-navigator/internal/ai"
	"github.com/spigell/scheme-navigator/internal/dialog"
	"github.com/spigell/scheme-navigator/internal/eligibility"
	"github.com/spigell/scheme-navigator/internal/extract"
	"github.com/spigell/scheme-navigator/internal/logger"
	"github.com/spigell/scheme-navigator/internal/metrics"
)

const (
	MethodAI    = "ai"
	MethodRules = "rules"
)

const (
	noMatchesText   = "I couldn't find any schemes matching your profile at the moment. Let me ask a few more questions to help you better."
	followUpText    = "Is there anything else you'd like to know about these schemes?"
	acknowledgeText = "Thank you for providing that information."
)

// Recommendation is a matched entry as shown to the user.
type Recommendation struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	LocalizedName string  `json:"name_localized"`
	Category      string  `json:"category"`
	Confidence    float64 `json:"confidence"`
	Explanation   string  `json:"explanation"`
}

// TurnResult is the outcome of one user message.
type TurnResult struct {
	SessionID        string           `json:"session_id"`
	Response         string           `json:"response"`
	NextPrompt       string           `json:"next_question,omitempty"`
	Stage            dialog.Stage     `json:"stage"`
	Complete         bool             `json:"information_complete"`
	Matches          []Recommendation `json:"eligible_schemes,omitempty"`
	ExtractionMethod string           `json:"extraction_method"`
}

// SendTurn records a user message, updates the profile from it and produces
// the assistant reply. Turns on one session are serialized.
func (s *Service) SendTurn(ctx context.Context, id, message string) (*TurnResult, error) {
	message, err := nonEmpty(message)
	if err != nil {
		return nil, err
	}

	var result *TurnResult
	err = s.store.Update(id, func(session *dialog.Session) error {
		result = s.turn(ctx, session, message)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) turn(ctx context.Context, session *dialog.Session, message string) *TurnResult {
	s.machine.AddMessage(session, dialog.RoleUser, message)

	method := s.updateProfile(ctx, session, message)
	metrics.TurnsProcessed.WithLabelValues(method).Inc()

	result := &TurnResult{SessionID: session.ID, ExtractionMethod: method}

	var response string
	switch {
	case !dialog.IsComplete(session):
		if prompt, ok := s.machine.NextPrompt(session); ok {
			response = prompt
			result.NextPrompt = prompt
		} else {
			response = acknowledgeText
		}

	case session.Stage == dialog.StageGreeting || session.Stage == dialog.StageInfoCollection:
		response = s.recommend(ctx, session, result)

	default:
		response = followUpText
	}

	s.machine.AddMessage(session, dialog.RoleAssistant, response)

	result.Response = response
	result.Stage = session.Stage
	result.Complete = dialog.IsComplete(session)
	if session.Stage != dialog.StageInfoCollection {
		result.NextPrompt = ""
	}

	logger.WithSession(s.logger, session.ID, string(session.Stage)).Info("turn processed",
		zap.String("method", method),
		zap.Int("matches", len(result.Matches)),
	)
	return result
}

// updateProfile applies AI extraction when it is available and confident
// enough, and rule based extraction otherwise.
func (s *Service) updateProfile(ctx context.Context, session *dialog.Session, message string) string {
	extraction, err := s.assistant.Extract(ctx, message, session.Language)
	switch {
	case errors.Is(err, ai.ErrDisabled):
	case err != nil:
		s.logger.Warn("ai extraction failed, using rules", zap.String(logger.FieldSession, session.ID), zap.Error(err))
		metrics.AIFallbacks.WithLabelValues("extract").Inc()
	case extraction == nil:
	case extraction.Confidence >= s.minConfidence && len(extraction.Updates) > 0:
		for _, u := range extraction.Updates {
			s.machine.Record(session, u)
		}
		return MethodAI
	default:
		s.logger.Debug("ai extraction below confidence threshold, using rules",
			zap.String(logger.FieldSession, session.ID),
			zap.Float64("confidence", extraction.Confidence),
			zap.Int("updates", len(extraction.Updates)),
		)
		metrics.AIFallbacks.WithLabelValues("extract").Inc()
	}

	for _, u := range extract.Rules(message, &session.Profile) {
		s.machine.Record(session, u)
	}
	return MethodRules
}

func (s *Service) recommend(ctx context.Context, session *dialog.Session, result *TurnResult) string {
	// Completeness was checked by the caller.
	_ = s.machine.AdvanceToEligibility(session)

	results := s.evaluate(&session.Profile)
	if len(results) == 0 {
		s.machine.ReturnToCollection(session)
		if prompt, ok := s.machine.NextPrompt(session); ok {
			result.NextPrompt = prompt
			return noMatchesText + "\n\n" + prompt
		}
		return noMatchesText
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Great! I found %d scheme(s) you're eligible for:\n\n", len(results))

	for _, r := range results[:min(s.maxResults, len(results))] {
		explanation := s.explain(ctx, session, r)
		fmt.Fprintf(&b, "✅ %s\n%s\n\n", r.Entry.LocalizedName(session.Language), explanation)

		result.Matches = append(result.Matches, Recommendation{
			ID:            r.Entry.ID,
			Name:          r.Entry.Name,
			LocalizedName: r.Entry.LocalizedName(session.Language),
			Category:      r.Entry.Category(),
			Confidence:    r.Confidence,
			Explanation:   explanation,
		})
	}

	s.machine.AdvanceToGuidance(session)
	return strings.TrimRight(b.String(), "\n")
}

func (s *Service) explain(ctx context.Context, session *dialog.Session, r *eligibility.Result) string {
	text, err := s.assistant.Explain(ctx, ai.ExplainRequest{
		Entry:       r.Entry,
		Profile:     session.Profile.Clone(),
		Eligible:    r.Eligible,
		Satisfied:   r.Satisfied,
		Unsatisfied: r.Unsatisfied,
		Language:    session.Language,
	})
	if err == nil && strings.TrimSpace(text) != "" {
		return strings.TrimSpace(text)
	}

	if !errors.Is(err, ai.ErrDisabled) {
		s.logger.Warn("ai explanation unavailable, using template",
			zap.String(logger.FieldScheme, r.Entry.ID),
			zap.Error(err),
		)
		metrics.AIFallbacks.WithLabelValues("explain").Inc()
	}
	return r.Explanation
}
