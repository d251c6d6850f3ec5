// Package session holds per-user conversation state for the lifetime of the
// process. Nothing here is persisted; the external services own all durable
// data.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/studymate/internal/models"
)

// Session is one user's isolated conversation. The log is append-only and
// ordered by creation time.
type Session struct {
	ID       string
	UserID   string
	Location *time.Location

	// turn admits one in-flight turn at a time; mu guards the fields below.
	turn sync.Mutex
	mu   sync.Mutex
	log  []models.Message
	now  func() time.Time
}

// Statistics summarises a session's interactions.
type Statistics struct {
	TotalMessages       int        `json:"total_messages"`
	ConversationStarted *time.Time `json:"conversation_started,omitempty"`
	LastInteraction     *time.Time `json:"last_interaction,omitempty"`
}

// New creates a session for a user in the given timezone.
func New(userID string, loc *time.Location) *Session {
	if loc == nil {
		loc = time.Local
	}
	return &Session{
		ID:       uuid.NewString(),
		UserID:   userID,
		Location: loc,
		now:      time.Now,
	}
}

// BeginTurn blocks until the session has no turn in flight. Concurrent
// callers on the same session are processed one full turn at a time, so a
// turn's history never misses a message from a turn that started earlier.
func (s *Session) BeginTurn() {
	s.turn.Lock()
}

// EndTurn releases the in-flight turn.
func (s *Session) EndTurn() {
	s.turn.Unlock()
}

// SetClock overrides the session clock. Used by tests to pin timestamps.
func (s *Session) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Now returns the current time in the session's timezone.
func (s *Session) Now() time.Time {
	s.mu.Lock()
	clock := s.now
	s.mu.Unlock()
	return clock().In(s.Location)
}

// Append adds a message to the conversation log and returns it.
func (s *Session) Append(role models.Role, text string) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := models.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: s.now().In(s.Location),
	}
	s.log = append(s.log, msg)
	return msg
}

// Log returns a copy of the conversation log in append order.
func (s *Session) Log() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Message, len(s.log))
	copy(out, s.log)
	return out
}

// Recent returns up to n most recent messages in chronological order.
func (s *Session) Recent(n int) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 || len(s.log) == 0 {
		return nil
	}
	start := len(s.log) - n
	if start < 0 {
		start = 0
	}
	out := make([]models.Message, len(s.log)-start)
	copy(out, s.log[start:])
	return out
}

// Reset clears the conversation log. Stored memories and calendar data are
// untouched; they live in the external services.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = nil
}

// Stats reports message counts and interaction times.
func (s *Session) Stats() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Statistics{TotalMessages: len(s.log)}
	if len(s.log) > 0 {
		first := s.log[0].CreatedAt
		last := s.log[len(s.log)-1].CreatedAt
		stats.ConversationStarted = &first
		stats.LastInteraction = &last
	}
	return stats
}

// Store keeps sessions in process memory, keyed by session ID.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Get returns the session with the given ID, or nil.
func (st *Store) Get(id string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[id]
}

// GetOrCreate returns the session with the given ID, creating it if needed.
// An empty ID always creates a fresh session.
func (st *Store) GetOrCreate(id, userID string, loc *time.Location) *Session {
	if id != "" {
		if s := st.Get(id); s != nil {
			return s
		}
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if id != "" {
		if s, ok := st.sessions[id]; ok {
			return s
		}
	}
	s := New(userID, loc)
	if id != "" {
		s.ID = id
	}
	st.sessions[s.ID] = s
	return s
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
