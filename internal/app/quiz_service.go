package app

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"quiz-tournament-service/internal/domain"
)

// SessionStore abstracts how quiz sessions are kept (in-memory, Redis-marked).
type SessionStore interface {
	Put(key domain.SessionKey, session *Session)
	Get(key domain.SessionKey) (*Session, bool)
	Delete(key domain.SessionKey)
	Len() int
}

// QuestionCache memoizes one question batch per tournament so every
// participant answers an identical set.
type QuestionCache interface {
	Batch(ctx context.Context, tournament domain.Tournament, count int) (domain.QuestionBatch, error)
	Invalidate(ctx context.Context, tournamentID int64) error
	InvalidateAll(ctx context.Context) error
	Size(ctx context.Context) (int, error)
}

// TournamentStore supplies read-only tournament metadata.
type TournamentStore interface {
	Tournament(ctx context.Context, id int64) (domain.Tournament, error)
}

// ResultStore is the persistence collaborator for completed quizzes.
type ResultStore interface {
	SaveResult(ctx context.Context, result domain.QuizResult) error
	Result(ctx context.Context, key domain.SessionKey) (domain.QuizResult, bool, error)
	SaveLegacyScore(ctx context.Context, score domain.LegacyScore) error
}

// DefaultQuestionCount is the batch size fetched per tournament.
const DefaultQuestionCount = 10

// QuizService contains the tournament quiz use cases: starting a quiz,
// question retrieval, answer submission, and completion/scoring.
type QuizService struct {
	sessions      SessionStore
	cache         QuestionCache
	tournaments   TournamentStore
	results       ResultStore
	questionCount int
	now           func() time.Time
}

func NewQuizService(sessions SessionStore, cache QuestionCache, tournaments TournamentStore, results ResultStore, questionCount int) *QuizService {
	if questionCount <= 0 {
		questionCount = DefaultQuestionCount
	}
	return &QuizService{
		sessions:      sessions,
		cache:         cache,
		tournaments:   tournaments,
		results:       results,
		questionCount: questionCount,
		now:           time.Now,
	}
}

// StartQuiz begins (or restarts) a participant's attempt: it checks the
// tournament's temporal window, binds the tournament's cached batch to a
// fresh session, and returns all questions with shuffled answer options.
func (s *QuizService) StartQuiz(ctx context.Context, userID, tournamentID int64) ([]domain.QuestionView, error) {
	tournament, err := s.tournaments.Tournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	switch tournament.StatusAt(s.now()) {
	case domain.StatusUpcoming:
		return nil, fmt.Errorf("%w: starts %s", domain.ErrTournamentNotStarted, tournament.StartDate.Format("2006-01-02"))
	case domain.StatusPast:
		return nil, fmt.Errorf("%w: ended %s", domain.ErrTournamentEnded, tournament.EndDate.Format("2006-01-02"))
	case domain.StatusOngoing:
		// Playable.
	}

	batch, err := s.cache.Batch(ctx, tournament, s.questionCount)
	if err != nil {
		return nil, fmt.Errorf("load question batch: %w", err)
	}

	views := make([]domain.QuestionView, 0, batch.Size())
	for i, question := range batch.Questions {
		views = append(views, questionView(question, i+1, batch.Size(), question.OptionsShuffled()))
	}

	key := domain.SessionKey{UserID: userID, TournamentID: tournamentID}
	s.sessions.Put(key, NewSessionWithClock(key, batch, s.now))
	return views, nil
}

// QuestionByNumber returns one question from the participant's active
// session, with options in stable sorted order.
func (s *QuizService) QuestionByNumber(ctx context.Context, userID, tournamentID int64, number int) (domain.QuestionView, error) {
	session, ok := s.sessions.Get(domain.SessionKey{UserID: userID, TournamentID: tournamentID})
	if !ok {
		return domain.QuestionView{}, domain.ErrSessionNotFound
	}
	question, err := session.Question(number)
	if err != nil {
		return domain.QuestionView{}, fmt.Errorf("%w: %d", err, number)
	}
	return questionView(question, number, session.batch.Size(), question.OptionsSorted()), nil
}

// SubmitAnswer records an answer (last write wins per question number) and
// returns correctness plus the running totals.
func (s *QuizService) SubmitAnswer(ctx context.Context, userID, tournamentID int64, number int, answer string) (domain.AnswerFeedback, error) {
	session, ok := s.sessions.Get(domain.SessionKey{UserID: userID, TournamentID: tournamentID})
	if !ok {
		return domain.AnswerFeedback{}, domain.ErrSessionNotFound
	}
	feedback, err := session.RecordAnswer(number, answer)
	if err != nil {
		return domain.AnswerFeedback{}, fmt.Errorf("%w: %d", err, number)
	}
	return feedback, nil
}

// SessionStatus reports the participant's progress. An absent session is not
// an error: it reports inactive.
func (s *QuizService) SessionStatus(ctx context.Context, userID, tournamentID int64) domain.SessionProgress {
	session, ok := s.sessions.Get(domain.SessionKey{UserID: userID, TournamentID: tournamentID})
	if !ok {
		return domain.SessionProgress{}
	}
	return session.Progress()
}

// Subscribe streams progress snapshots for an active session.
func (s *QuizService) Subscribe(ctx context.Context, userID, tournamentID int64) (<-chan domain.SessionProgress, func(), error) {
	session, ok := s.sessions.Get(domain.SessionKey{UserID: userID, TournamentID: tournamentID})
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// CompleteQuiz validates full coverage, computes the result, writes it
// through to the result store, and discards the session. Store failures are
// logged and swallowed: the in-memory computation is authoritative and the
// participant still gets their result.
func (s *QuizService) CompleteQuiz(ctx context.Context, userID, tournamentID int64) (domain.QuizCompletion, error) {
	key := domain.SessionKey{UserID: userID, TournamentID: tournamentID}
	session, ok := s.sessions.Get(key)
	if !ok {
		return domain.QuizCompletion{}, domain.ErrSessionNotFound
	}
	if !session.Completed() {
		return domain.QuizCompletion{}, fmt.Errorf("%w: answer all questions first", domain.ErrQuizNotFinished)
	}

	tournament, err := s.tournaments.Tournament(ctx, tournamentID)
	if err != nil {
		return domain.QuizCompletion{}, err
	}

	correct := session.CorrectCount()
	total := session.batch.Size()
	percentage := float64(correct) * 100 / float64(total)
	passed := percentage >= tournament.MinPassingScore

	completedAt := s.now()
	timeTaken := int(completedAt.Sub(session.StartedAt()) / time.Second)

	result := domain.QuizResult{
		UserID:           userID,
		TournamentID:     tournamentID,
		Score:            correct,
		TotalQuestions:   total,
		Percentage:       percentage,
		Passed:           passed,
		CompletedAt:      completedAt,
		TimeTakenSeconds: timeTaken,
	}
	if err := s.results.SaveResult(ctx, result); err != nil {
		log.Printf("quiz: failed to save result for user=%d tournament=%d: %v", userID, tournamentID, err)
	}

	legacy := domain.LegacyScore{
		UserID:       userID,
		TournamentID: tournamentID,
		Score:        int(math.Round(float64(correct) * 10 / float64(total))),
		Passed:       passed,
		CompletedAt:  completedAt,
	}
	if err := s.results.SaveLegacyScore(ctx, legacy); err != nil {
		log.Printf("quiz: failed to save legacy score for user=%d tournament=%d: %v", userID, tournamentID, err)
	}

	history := session.AnswerHistory()
	s.sessions.Delete(key)

	return domain.QuizCompletion{
		CorrectAnswers:  correct,
		TotalQuestions:  total,
		Percentage:      percentage,
		Passed:          passed,
		MinPassingScore: tournament.MinPassingScore,
		AnswerHistory:   fullHistory(history, total),
	}, nil
}

// ExistingResult looks up a previously persisted result.
func (s *QuizService) ExistingResult(ctx context.Context, userID, tournamentID int64) (domain.QuizResult, bool, error) {
	return s.results.Result(ctx, domain.SessionKey{UserID: userID, TournamentID: tournamentID})
}

// InvalidateTournament drops a tournament's cached batch so the next start
// re-fetches fresh questions.
func (s *QuizService) InvalidateTournament(ctx context.Context, tournamentID int64) error {
	return s.cache.Invalidate(ctx, tournamentID)
}

// InvalidateAllCaches clears every cached batch.
func (s *QuizService) InvalidateAllCaches(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

// Stats reports cache and session table sizes.
func (s *QuizService) Stats(ctx context.Context) (domain.CacheStats, error) {
	cached, err := s.cache.Size(ctx)
	if err != nil {
		return domain.CacheStats{}, err
	}
	return domain.CacheStats{
		CachedTournaments:  cached,
		ActiveQuizSessions: s.sessions.Len(),
	}, nil
}

// WithClock is test-only: it overrides the service clock.
func (s *QuizService) WithClock(now func() time.Time) *QuizService {
	s.now = now
	return s
}

func questionView(q domain.Question, number, total int, options []string) domain.QuestionView {
	return domain.QuestionView{
		Prompt:         q.Prompt,
		Type:           q.Type,
		Difficulty:     q.Difficulty,
		Category:       q.Category,
		AnswerOptions:  options,
		QuestionNumber: number,
		TotalQuestions: total,
	}
}

// fullHistory expands the recorded answers to every question number 1..total.
// Completion requires full coverage, but the view tolerates a missing entry
// with an empty placeholder rather than panicking downstream formatting.
func fullHistory(answers map[int]domain.RecordedAnswer, total int) map[int]domain.RecordedAnswer {
	history := make(map[int]domain.RecordedAnswer, total)
	for number := 1; number <= total; number++ {
		if answer, ok := answers[number]; ok {
			history[number] = answer
			continue
		}
		history[number] = domain.RecordedAnswer{QuestionNumber: number}
	}
	return history
}
