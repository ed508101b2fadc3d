package redis

import (
	"context"
	"strconv"
	"sync"
	"time"

	"quiz-tournament-service/internal/app"
	"quiz-tournament-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionStore.
// Notes:
//   - Session state (answers, subscribers) stays in a local map; the
//     in-process broadcast machinery needs live pointers.
//   - Redis holds a liveness marker per session with a TTL, which doubles as
//     a natural bound on abandoned sessions and gives operators visibility
//     across instances.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration

	mu       sync.RWMutex
	sessions map[domain.SessionKey]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[domain.SessionKey]*app.Session),
	}
}

func (s *SessionStore) Put(key domain.SessionKey, session *app.Session) {
	s.mu.Lock()
	s.sessions[key] = session
	s.mu.Unlock()
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), redisKey(key), "1", s.ttl).Err()
}

func (s *SessionStore) Get(key domain.SessionKey) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[key]
	return session, ok
}

func (s *SessionStore) Delete(key domain.SessionKey) {
	s.mu.Lock()
	delete(s.sessions, key)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), redisKey(key)).Err()
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func redisKey(key domain.SessionKey) string {
	return "quiz:session:" + strconv.FormatInt(key.UserID, 10) + ":" + strconv.FormatInt(key.TournamentID, 10)
}
