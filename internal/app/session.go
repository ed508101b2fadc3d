package app

import (
	"sync"
	"time"

	"quiz-tournament-service/internal/domain"
)

// Session tracks one participant's progress through one tournament's
// question batch. The batch reference is read-only and shared with every
// other session in the tournament.
type Session struct {
	key       domain.SessionKey
	batch     domain.QuestionBatch
	startedAt time.Time
	now       func() time.Time

	mu          sync.RWMutex
	lastActive  time.Time
	answers     map[int]domain.RecordedAnswer
	subscribers map[chan domain.SessionProgress]struct{}
}

// NewSession binds a fresh, empty-answers session to a question batch.
func NewSession(key domain.SessionKey, batch domain.QuestionBatch) *Session {
	return NewSessionWithClock(key, batch, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(key domain.SessionKey, batch domain.QuestionBatch, now func() time.Time) *Session {
	started := now()
	return &Session{
		key:         key,
		batch:       batch,
		startedAt:   started,
		now:         now,
		lastActive:  started,
		answers:     make(map[int]domain.RecordedAnswer),
		subscribers: make(map[chan domain.SessionProgress]struct{}),
	}
}

// Key returns the (participant, tournament) identity of the session.
func (s *Session) Key() domain.SessionKey { return s.key }

// StartedAt returns the session creation timestamp.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Question returns the 1-indexed question, bounds-checked against the batch.
func (s *Session) Question(number int) (domain.Question, error) {
	if number < 1 || number > s.batch.Size() {
		return domain.Question{}, domain.ErrInvalidQuestionNumber
	}
	return s.batch.Questions[number-1], nil
}

// RecordAnswer validates and stores an answer for a question number.
// Resubmitting a number replaces the prior record; the running correct count
// follows the latest answer for each number.
func (s *Session) RecordAnswer(number int, answer string) (domain.AnswerFeedback, error) {
	question, err := s.Question(number)
	if err != nil {
		return domain.AnswerFeedback{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	correct := question.IsCorrect(answer)
	s.answers[number] = domain.RecordedAnswer{
		QuestionNumber: number,
		Answer:         answer,
		Correct:        correct,
		CorrectAnswer:  question.CorrectAnswer,
		Prompt:         question.Prompt,
		SubmittedAt:    now,
	}
	s.lastActive = now
	s.broadcastLocked()

	return domain.AnswerFeedback{
		Correct:        correct,
		CorrectAnswer:  question.CorrectAnswer,
		UserAnswer:     answer,
		QuestionNumber: number,
		CorrectCount:   s.correctCountLocked(),
		TotalQuestions: s.batch.Size(),
	}, nil
}

// Progress returns a snapshot of the session state.
func (s *Session) Progress() domain.SessionProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progressLocked()
}

// Completed reports whether every question number has an answer.
func (s *Session) Completed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.answers) >= s.batch.Size()
}

// CorrectCount returns the number of correctly answered questions.
func (s *Session) CorrectCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.correctCountLocked()
}

// AnswerHistory returns a copy of the recorded answers keyed by question number.
func (s *Session) AnswerHistory() map[int]domain.RecordedAnswer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := make(map[int]domain.RecordedAnswer, len(s.answers))
	for number, answer := range s.answers {
		history[number] = answer
	}
	return history
}

// LastActive returns the time of the most recent submission (or creation).
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// Subscribe returns a channel receiving progress snapshots after each
// submission. The caller must invoke cancel to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.SessionProgress, func()) {
	ch := make(chan domain.SessionProgress, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.progressLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() {
	snapshot := s.progressLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			// Drop the stale snapshot so a slow reader never blocks submissions.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func (s *Session) progressLocked() domain.SessionProgress {
	return domain.SessionProgress{
		Active:          true,
		CurrentQuestion: len(s.answers) + 1,
		CorrectAnswers:  s.correctCountLocked(),
		TotalQuestions:  s.batch.Size(),
		Completed:       len(s.answers) >= s.batch.Size(),
	}
}

func (s *Session) correctCountLocked() int {
	count := 0
	for _, answer := range s.answers {
		if answer.Correct {
			count++
		}
	}
	return count
}
