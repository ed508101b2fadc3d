package postgres

import (
	"context"
	"errors"
	"fmt"

	"quiz-tournament-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// TournamentStore reads tournament metadata from Postgres.
type TournamentStore struct {
	pool *pgxpool.Pool
}

func NewTournamentStore(pool *pgxpool.Pool) *TournamentStore {
	return &TournamentStore{pool: pool}
}

func (s *TournamentStore) Tournament(ctx context.Context, id int64) (domain.Tournament, error) {
	var t domain.Tournament
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, category, difficulty, min_passing_score, start_date, end_date
		 FROM tournaments WHERE id=$1`, id).
		Scan(&t.ID, &t.Name, &t.Category, &t.Difficulty, &t.MinPassingScore, &t.StartDate, &t.EndDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Tournament{}, fmt.Errorf("%w: id %d", domain.ErrTournamentNotFound, id)
	}
	if err != nil {
		return domain.Tournament{}, fmt.Errorf("load tournament: %w", err)
	}
	return t, nil
}
