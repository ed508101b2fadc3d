package postgres

import (
	"context"
	"errors"
	"fmt"

	"quiz-tournament-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultStore persists quiz results and the legacy score-out-of-10 mirror.
// One row per (user, tournament): a retake overwrites the previous result.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) SaveResult(ctx context.Context, result domain.QuizResult) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quiz_results
		   (user_id, tournament_id, score, total_questions, percentage, passed, completed_at, time_taken_seconds)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id, tournament_id) DO UPDATE SET
		   score = EXCLUDED.score,
		   total_questions = EXCLUDED.total_questions,
		   percentage = EXCLUDED.percentage,
		   passed = EXCLUDED.passed,
		   completed_at = EXCLUDED.completed_at,
		   time_taken_seconds = EXCLUDED.time_taken_seconds`,
		result.UserID, result.TournamentID, result.Score, result.TotalQuestions,
		result.Percentage, result.Passed, result.CompletedAt, result.TimeTakenSeconds)
	if err != nil {
		return fmt.Errorf("save quiz result: %w", err)
	}
	return nil
}

func (s *ResultStore) Result(ctx context.Context, key domain.SessionKey) (domain.QuizResult, bool, error) {
	var result domain.QuizResult
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, tournament_id, score, total_questions, percentage, passed, completed_at, time_taken_seconds
		 FROM quiz_results WHERE user_id=$1 AND tournament_id=$2`, key.UserID, key.TournamentID).
		Scan(&result.UserID, &result.TournamentID, &result.Score, &result.TotalQuestions,
			&result.Percentage, &result.Passed, &result.CompletedAt, &result.TimeTakenSeconds)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizResult{}, false, nil
	}
	if err != nil {
		return domain.QuizResult{}, false, fmt.Errorf("load quiz result: %w", err)
	}
	return result, true, nil
}

func (s *ResultStore) SaveLegacyScore(ctx context.Context, score domain.LegacyScore) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tournament_scores (user_id, tournament_id, score, passed, completed_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, tournament_id) DO UPDATE SET
		   score = EXCLUDED.score,
		   passed = EXCLUDED.passed,
		   completed_at = EXCLUDED.completed_at`,
		score.UserID, score.TournamentID, score.Score, score.Passed, score.CompletedAt)
	if err != nil {
		return fmt.Errorf("save legacy score: %w", err)
	}
	return nil
}
