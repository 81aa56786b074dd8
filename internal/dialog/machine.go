package dialog

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/scheme-navigator/internal/profile"
)

// ErrIncomplete is returned when eligibility is requested before age and region are known.
var ErrIncomplete = errors.New("profile is incomplete: age and region are required")

// Machine drives session stage transitions. It holds no session state itself.
type Machine struct {
	now   func() time.Time
	newID func() string
}

// NewMachine returns a machine using now as its clock. A nil clock uses time.Now.
func NewMachine(now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{now: now, newID: uuid.NewString}
}

// Start creates a session in the greeting stage with the localized greeting in its history.
func (m *Machine) Start(language string) *Session {
	now := m.now()
	s := &Session{
		ID:        m.newID(),
		Language:  NormalizeLanguage(language),
		Stage:     StageGreeting,
		CreatedAt: now,
	}
	m.AddMessage(s, RoleAssistant, Greeting(s.Language))
	return s
}

// NextPrompt returns the question for the first attribute that is neither set
// nor already asked, and marks it asked. A session in the greeting stage moves
// to info collection first. Outside info collection there is nothing to ask.
func (m *Machine) NextPrompt(s *Session) (string, bool) {
	if s.Stage == StageGreeting {
		s.Stage = StageInfoCollection
		s.touch(m.now())
	}
	if s.Stage != StageInfoCollection {
		return "", false
	}

	for _, f := range profile.Fields {
		if s.Profile.IsSet(f) || s.HasAsked(f) {
			continue
		}
		s.Asked = append(s.Asked, f)
		s.touch(m.now())
		return Question(f, s.Language), true
	}
	return "", false
}

// IsComplete reports whether the minimum attributes for eligibility are known.
func IsComplete(s *Session) bool {
	return s.Profile.IsSet(profile.FieldAge) && s.Profile.IsSet(profile.FieldRegion)
}

func (m *Machine) AdvanceToEligibility(s *Session) error {
	if !IsComplete(s) {
		return ErrIncomplete
	}
	s.Stage = StageEligibility
	s.touch(m.now())
	return nil
}

func (m *Machine) AdvanceToGuidance(s *Session) {
	s.Stage = StageGuidance
	s.touch(m.now())
}

// ReturnToCollection sends the session back to asking questions.
func (m *Machine) ReturnToCollection(s *Session) {
	s.Stage = StageInfoCollection
	s.touch(m.now())
}

// Record writes an attribute into the session profile.
func (m *Machine) Record(s *Session, u profile.Update) {
	s.Profile.Apply(u)
	s.touch(m.now())
}

func (m *Machine) AddMessage(s *Session, role Role, text string) {
	now := m.now()
	s.History = append(s.History, Message{Role: role, Text: text, Timestamp: now})
	s.touch(now)
}
