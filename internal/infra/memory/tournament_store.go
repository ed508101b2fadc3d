package memory

import (
	"context"
	"fmt"

	"quiz-tournament-service/internal/domain"
)

// StaticTournamentStore serves tournament metadata from a fixed map
// (useful for tests and demos without Postgres).
type StaticTournamentStore struct {
	tournaments map[int64]domain.Tournament
}

func NewStaticTournamentStore(tournaments map[int64]domain.Tournament) *StaticTournamentStore {
	return &StaticTournamentStore{tournaments: tournaments}
}

func (s *StaticTournamentStore) Tournament(_ context.Context, id int64) (domain.Tournament, error) {
	if tournament, ok := s.tournaments[id]; ok {
		return tournament, nil
	}
	return domain.Tournament{}, fmt.Errorf("%w: id %d", domain.ErrTournamentNotFound, id)
}
