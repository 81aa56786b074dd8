package conversation

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/scheme-navigator/internal/ai"
	"github.com/spigell/scheme-navigator/internal/catalog"
	"github.com/spigell/scheme-navigator/internal/dialog"
	"github.com/spigell/scheme-navigator/internal/eligibility"
	"github.com/spigell/scheme-navigator/internal/filtering"
	"github.com/spigell/scheme-navigator/internal/metrics"
	"github.com/spigell/scheme-navigator/internal/profile"
	"github.com/spigell/scheme-navigator/internal/retrieval"
)

// ErrInvalidRequest is returned for malformed caller input such as an empty message.
var ErrInvalidRequest = errors.New("invalid request")

const (
	DefaultMinimumConfidence = 0.6
	DefaultMaxResults        = 3
	DefaultTopK              = 10
	DefaultListLimit         = 10
	MaxListLimit             = 100
)

// Params wires a Service. Only Entries is required.
type Params struct {
	Entries   []*catalog.Entry
	Index     *retrieval.Index
	Store     *dialog.Store
	Machine   *dialog.Machine
	Assistant ai.Assistant
	Logger    *zap.Logger

	// MinimumConfidence is the extraction confidence at which AI output is trusted.
	MinimumConfidence float64
	// MaxResults caps the matches shown in a single turn.
	MaxResults int
}

// Service runs dialogs against a loaded catalog and answers catalog queries.
type Service struct {
	entries   []*catalog.Entry
	stats     catalog.Stats
	index     *retrieval.Index
	store     *dialog.Store
	machine   *dialog.Machine
	assistant ai.Assistant
	logger    *zap.Logger

	minConfidence float64
	maxResults    int
}

func New(p Params) *Service {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Machine == nil {
		p.Machine = dialog.NewMachine(nil)
	}
	if p.Store == nil {
		p.Store = dialog.NewStore(dialog.DefaultTimeout, nil, p.Logger)
	}
	if p.Assistant == nil {
		p.Assistant = ai.Nop{}
	}
	if p.MinimumConfidence <= 0 {
		p.MinimumConfidence = DefaultMinimumConfidence
	}
	if p.MaxResults <= 0 {
		p.MaxResults = DefaultMaxResults
	}

	return &Service{
		entries:       p.Entries,
		stats:         catalog.Summarize(p.Entries),
		index:         p.Index,
		store:         p.Store,
		machine:       p.Machine,
		assistant:     p.Assistant,
		logger:        p.Logger,
		minConfidence: p.MinimumConfidence,
		maxResults:    p.MaxResults,
	}
}

// Started is returned when a dialog begins.
type Started struct {
	SessionID string `json:"session_id"`
	Language  string `json:"language"`
	Greeting  string `json:"greeting"`
}

func (s *Service) StartSession(language string) Started {
	session := s.machine.Start(language)
	s.store.Put(session)
	metrics.SessionsStarted.Inc()

	s.logger.Info("session started",
		zap.String("session_id", session.ID),
		zap.String("language", session.Language),
	)

	return Started{
		SessionID: session.ID,
		Language:  session.Language,
		Greeting:  dialog.Greeting(session.Language),
	}
}

func (s *Service) GetSession(id string) (dialog.Snapshot, error) {
	return s.store.View(id)
}

func (s *Service) EndSession(id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.logger.Info("session ended", zap.String("session_id", id))
	return nil
}

// Sweep removes expired sessions.
func (s *Service) Sweep() int {
	return s.store.Sweep()
}

// EligibilityReport lists the eligible entries for a profile, best match first.
type EligibilityReport struct {
	TotalEligible int                   `json:"total_eligible"`
	Results       []*eligibility.Result `json:"results"`
}

// CheckEligibility evaluates a profile against the whole catalog without a dialog.
func (s *Service) CheckEligibility(p profile.Profile) (*EligibilityReport, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	results := s.evaluate(&p)
	return &EligibilityReport{TotalEligible: len(results), Results: results}, nil
}

func (s *Service) evaluate(p *profile.Profile) []*eligibility.Result {
	results := eligibility.EvaluateAll(p, s.entries)
	metrics.EligibilityChecks.WithLabelValues(metrics.OutcomeEligible).Add(float64(len(results)))
	metrics.EligibilityChecks.WithLabelValues(metrics.OutcomeIneligible).Add(float64(len(s.entries) - len(results)))
	return results
}

func (s *Service) Entry(id string) (*catalog.Entry, error) {
	return catalog.FindByID(s.entries, id)
}

func (s *Service) Stats() catalog.Stats {
	return s.stats
}

// ListRequest narrows the catalog listing.
type ListRequest struct {
	Region string
	Topic  string
	Limit  int
}

// List returns catalog entries in catalog order. A zero limit uses the default.
func (s *Service) List(req ListRequest) ([]*catalog.Entry, error) {
	limit := req.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit < 0 || limit > MaxListLimit {
		return nil, fmt.Errorf("limit must be between 1 and %d: %w", MaxListLimit, ErrInvalidRequest)
	}

	var steps []filtering.Filter
	if req.Topic != "" {
		steps = append(steps, filtering.NewTopic(req.Topic))
	}
	if req.Region != "" {
		steps = append(steps, filtering.NewRegion(req.Region))
	}

	entries, _ := filtering.Run(s.logger, steps, s.entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func nonEmpty(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("message must not be empty: %w", ErrInvalidRequest)
	}
	return text, nil
}

// Health reports what the service is serving.
type Health struct {
	Schemes  int `json:"schemes_loaded"`
	Indexed  int `json:"schemes_indexed"`
	Sessions int `json:"active_sessions"`
}

func (s *Service) Health() Health {
	h := Health{Schemes: len(s.entries), Sessions: s.store.Len()}
	if s.index != nil {
		h.Indexed = s.index.Len()
	}
	return h
}
