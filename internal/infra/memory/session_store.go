package memory

import (
	"sync"
	"time"

	"quiz-tournament-service/internal/app"
	"quiz-tournament-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore keyed by
// the composite (participant, tournament) key.
//
// An optional max idle age bounds abandoned sessions: a session whose last
// submission is older than maxIdle is lazily evicted on access. Zero means
// sessions live until completion or explicit deletion.
type SessionStore struct {
	maxIdle time.Duration
	clock   func() time.Time

	mu       sync.RWMutex
	sessions map[domain.SessionKey]*app.Session
}

func NewSessionStore() *SessionStore {
	return NewSessionStoreWithIdleTTL(0)
}

func NewSessionStoreWithIdleTTL(maxIdle time.Duration) *SessionStore {
	return &SessionStore{
		maxIdle:  maxIdle,
		clock:    time.Now,
		sessions: make(map[domain.SessionKey]*app.Session),
	}
}

func (s *SessionStore) Put(key domain.SessionKey, session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = session
}

func (s *SessionStore) Get(key domain.SessionKey) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.stale(session) {
		s.Delete(key)
		return nil, false
	}
	return session, true
}

func (s *SessionStore) Delete(key domain.SessionKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, session := range s.sessions {
		if s.stale(session) {
			delete(s.sessions, key)
		}
	}
	return len(s.sessions)
}

func (s *SessionStore) stale(session *app.Session) bool {
	if s.maxIdle <= 0 {
		return false
	}
	return s.clock().Sub(session.LastActive()) > s.maxIdle
}
