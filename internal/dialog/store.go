package dialog

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/scheme-navigator/internal/metrics"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

const DefaultTimeout = 30 * time.Minute

// Store keeps sessions in memory and expires them after a period of inactivity.
type Store struct {
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore(timeout time.Duration, now func() time.Time, logger *zap.Logger) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		timeout:  timeout,
		now:      now,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

func (st *Store) Put(s *Session) {
	st.mu.Lock()
	st.sessions[s.ID] = s
	n := len(st.sessions)
	st.mu.Unlock()

	metrics.SessionsActive.Set(float64(n))
}

// Get returns a live session. An expired session is removed and reported as not found.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrSessionNotFound)
	}

	if st.expired(s) {
		st.mu.Lock()
		if current, ok := st.sessions[id]; ok && current == s && st.expired(s) {
			delete(st.sessions, id)
			metrics.SessionsExpired.Inc()
			metrics.SessionsActive.Set(float64(len(st.sessions)))
		}
		st.mu.Unlock()
		st.logger.Debug("session expired", zap.String("session_id", id))
		return nil, fmt.Errorf("%q: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Update runs fn while holding the session's lock so turns on one session are serialized.
func (st *Store) Update(id string, fn func(*Session) error) error {
	s, err := st.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// View returns a snapshot taken under the session's lock.
func (st *Store) View(id string) (Snapshot, error) {
	var snap Snapshot
	err := st.Update(id, func(s *Session) error {
		snap = s.Snapshot()
		return nil
	})
	return snap, err
}

func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return fmt.Errorf("%q: %w", id, ErrSessionNotFound)
	}
	delete(st.sessions, id)
	metrics.SessionsActive.Set(float64(len(st.sessions)))
	return nil
}

// Sweep removes every expired session and returns how many were removed.
func (st *Store) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if st.expired(s) {
			delete(st.sessions, id)
			removed++
		}
	}

	metrics.SessionsExpired.Add(float64(removed))
	metrics.SessionsActive.Set(float64(len(st.sessions)))
	if removed > 0 {
		st.logger.Info("expired sessions removed", zap.Int("count", removed), zap.Int("left", len(st.sessions)))
	}
	return removed
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *Store) expired(s *Session) bool {
	return st.now().Sub(s.LastActivity()) > st.timeout
}
