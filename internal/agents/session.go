package agents

import (
	"fmt"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/chigozzdevv/hyperliquid-trading-agent/internal/errors"
)

// Session holds one conversation's message history.
type Session struct {
	ID        string
	Messages  []openai.ChatCompletionMessage
	CreatedAt time.Time
	LastUsed  time.Time
}

// SessionStore keeps conversations in memory with a fixed lifetime.
// Expiry is checked on read, so an expired session surfaces as
// ErrSessionExpired the next time it is used rather than vanishing
// silently.
type SessionStore struct {
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id, creating it when absent. A session
// past its lifetime is removed and reported as expired.
func (s *SessionStore) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	sess, ok := s.sessions[id]
	if ok && now.Sub(sess.LastUsed) > s.ttl {
		delete(s.sessions, id)
		s.sweep(now)
		return nil, fmt.Errorf("session %s: %w", id, apperrors.ErrSessionExpired)
	}

	s.sweep(now)

	if !ok {
		sess = &Session{ID: id, CreatedAt: now, LastUsed: now}
		s.sessions[id] = sess
		return sess, nil
	}

	sess.LastUsed = now
	return sess, nil
}

// Update replaces the session's message history.
func (s *SessionStore) Update(id string, messages []openai.ChatCompletionMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		sess.Messages = messages
		sess.LastUsed = time.Now()
	}
}

// Delete removes a session.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// sweep drops every expired session. Caller holds the lock.
func (s *SessionStore) sweep(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.LastUsed) > s.ttl {
			delete(s.sessions, id)
		}
	}
}
