package memory

import (
	"context"
	"sync"

	"quiz-tournament-service/internal/domain"
)

// ResultStore keeps quiz results and legacy scores in process memory.
// Useful for tests and for running the service without Postgres.
type ResultStore struct {
	mu      sync.RWMutex
	results map[domain.SessionKey]domain.QuizResult
	legacy  map[domain.SessionKey]domain.LegacyScore
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		results: make(map[domain.SessionKey]domain.QuizResult),
		legacy:  make(map[domain.SessionKey]domain.LegacyScore),
	}
}

func (s *ResultStore) SaveResult(_ context.Context, result domain.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[domain.SessionKey{UserID: result.UserID, TournamentID: result.TournamentID}] = result
	return nil
}

func (s *ResultStore) Result(_ context.Context, key domain.SessionKey) (domain.QuizResult, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[key]
	return result, ok, nil
}

func (s *ResultStore) SaveLegacyScore(_ context.Context, score domain.LegacyScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.legacy[domain.SessionKey{UserID: score.UserID, TournamentID: score.TournamentID}] = score
	return nil
}

// LegacyScore exposes the mirrored score for assertions and leaderboard reads.
func (s *ResultStore) LegacyScore(key domain.SessionKey) (domain.LegacyScore, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.legacy[key]
	return score, ok
}
