package dialog

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/spigell/scheme-navigator/internal/profile"
)

type Stage string

const (
	StageGreeting       Stage = "greeting"
	StageInfoCollection Stage = "info_collection"
	StageEligibility    Stage = "eligibility"
	StageGuidance       Stage = "guidance"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role      Role      `json:"role"`
	Text      string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the state of one conversation. Fields are guarded by the store's
// per-session lock; use Store.Update to mutate a stored session.
type Session struct {
	ID        string
	Language  string
	Profile   profile.Profile
	Asked     []profile.Field
	Stage     Stage
	History   []Message
	CreatedAt time.Time

	mu       sync.Mutex
	activity atomic.Int64
}

// LastActivity is readable without holding the session lock.
func (s *Session) LastActivity() time.Time {
	return time.Unix(0, s.activity.Load())
}

func (s *Session) touch(now time.Time) {
	s.activity.Store(now.UnixNano())
}

// HasAsked reports whether the attribute was already asked for.
func (s *Session) HasAsked(f profile.Field) bool {
	for _, asked := range s.Asked {
		if asked == f {
			return true
		}
	}
	return false
}

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	ID           string          `json:"session_id"`
	Language     string          `json:"language"`
	Stage        Stage           `json:"current_stage"`
	Profile      profile.Profile `json:"user_profile"`
	Asked        []string        `json:"asked_questions"`
	Missing      []string        `json:"missing_information"`
	Complete     bool            `json:"is_complete"`
	MessageCount int             `json:"message_count"`
	History      []Message       `json:"conversation_history,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	LastActivity time.Time       `json:"last_activity"`
}

// Snapshot copies the session. The caller must hold the session lock.
func (s *Session) Snapshot() Snapshot {
	asked := make([]string, len(s.Asked))
	for i, f := range s.Asked {
		asked[i] = f.String()
	}
	missingFields := s.Profile.Missing()
	missing := make([]string, len(missingFields))
	for i, f := range missingFields {
		missing[i] = f.String()
	}
	history := make([]Message, len(s.History))
	copy(history, s.History)

	return Snapshot{
		ID:           s.ID,
		Language:     s.Language,
		Stage:        s.Stage,
		Profile:      s.Profile.Clone(),
		Asked:        asked,
		Missing:      missing,
		Complete:     IsComplete(s),
		MessageCount: len(s.History),
		History:      history,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity(),
	}
}
