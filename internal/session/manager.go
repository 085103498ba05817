package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrEnded    = errors.New("session already ended")
)

type Session struct {
	ID             string    `json:"session_id"`
	GolferID       string    `json:"golfer_id"`
	Status         Status    `json:"status"`
	PersonaID      string    `json:"persona_id"`
	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	Turns          []Turn    `json:"turns"`
}

type Manager struct {
	mu                sync.RWMutex
	sessions          map[string]*Session
	sessionByGolfer   map[string]string
	inactivityTimeout time.Duration
	onExpire          func(*Session)
}

func NewManager(inactivityTimeout time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 30 * time.Minute
	}
	return &Manager{
		sessions:          make(map[string]*Session),
		sessionByGolfer:   make(map[string]string),
		inactivityTimeout: inactivityTimeout,
	}
}

// SetExpireHook registers a callback invoked for each session the janitor
// ends, outside the manager lock. The engine uses it to persist the
// transcript before the session is forgotten.
func (m *Manager) SetExpireHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

func (m *Manager) Create(golferID, personaID string) *Session {
	now := time.Now().UTC()
	s := &Session{
		ID:             uuid.NewString(),
		GolferID:       golferID,
		PersonaID:      personaID,
		Status:         StatusActive,
		StartedAt:      now,
		LastActivityAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	if golferID != "" {
		m.sessionByGolfer[golferID] = s.ID
	}
	return clone(s)
}

// Ensure returns the session, lazily creating an active one under the
// given id when it does not exist yet. A missing session id is never an
// error on the coaching path.
func (m *Manager) Ensure(sessionID, golferID, personaID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if s, ok := m.sessions[sessionID]; ok {
		return clone(s)
	}

	now := time.Now().UTC()
	s := &Session{
		ID:             sessionID,
		GolferID:       golferID,
		PersonaID:      personaID,
		Status:         StatusActive,
		StartedAt:      now,
		LastActivityAt: now,
	}
	m.sessions[s.ID] = s
	if golferID != "" {
		m.sessionByGolfer[golferID] = s.ID
	}
	return clone(s)
}

func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

// ForGolfer returns the golfer's most recent session, if any.
func (m *Manager) ForGolfer(golferID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.sessionByGolfer[golferID]
	if !ok {
		return nil, ErrNotFound
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

// Append adds turns to the session transcript and refreshes activity.
func (m *Manager) Append(sessionID string, turns ...Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	if s.Status != StatusActive {
		return ErrEnded
	}

	now := time.Now().UTC()
	for _, t := range turns {
		if t.At.IsZero() {
			t.At = now
		}
		s.Turns = append(s.Turns, t)
	}
	s.LastActivityAt = now
	return nil
}

// Turns returns a copy of the session transcript.
func (m *Manager) Turns(sessionID string) ([]Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]Turn(nil), s.Turns...), nil
}

func (m *Manager) Touch(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	s.LastActivityAt = time.Now().UTC()
	return nil
}

func (m *Manager) End(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	s.Status = StatusEnded
	s.LastActivityAt = time.Now().UTC()
	if s.GolferID != "" {
		delete(m.sessionByGolfer, s.GolferID)
	}
	return clone(s), nil
}

func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, s := range m.sessions {
		if s.Status == StatusActive {
			count++
		}
	}
	return count
}

func (m *Manager) expireInactive() {
	now := time.Now().UTC()
	var expired []*Session

	m.mu.Lock()
	for _, s := range m.sessions {
		if s.Status != StatusActive {
			continue
		}
		if now.Sub(s.LastActivityAt) < m.inactivityTimeout {
			continue
		}
		s.Status = StatusEnded
		s.LastActivityAt = now
		expired = append(expired, clone(s))
		if s.GolferID != "" {
			delete(m.sessionByGolfer, s.GolferID)
		}
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, s := range expired {
			hook(s)
		}
	}
}

func clone(s *Session) *Session {
	c := *s
	c.Turns = append([]Turn(nil), s.Turns...)
	return &c
}
