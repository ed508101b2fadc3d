package domain

import (
	"math/rand"
	"sort"
	"strings"
	"time"
)

// QuestionType mirrors the trivia provider's question kinds.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple"
	TypeTrueFalse      QuestionType = "boolean"
)

// Difficulty is the provider's three-level difficulty scale.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is a single trivia question. Immutable once fetched; the correct
// answer never leaves the server.
type Question struct {
	Category         string       `json:"category"`
	Type             QuestionType `json:"type"`
	Difficulty       Difficulty   `json:"difficulty"`
	Prompt           string       `json:"question"`
	CorrectAnswer    string       `json:"correct_answer"`
	IncorrectAnswers []string     `json:"incorrect_answers"`
}

// IsCorrect reports whether answer matches the correct answer, ignoring case.
func (q Question) IsCorrect(answer string) bool {
	return q.CorrectAnswer != "" && strings.EqualFold(q.CorrectAnswer, answer)
}

// OptionsShuffled returns all answer options in random order. Used when the
// quiz is first listed in bulk; the ordering hides which option is correct.
func (q Question) OptionsShuffled() []string {
	options := q.allOptions()
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}

// OptionsSorted returns all answer options alphabetically, so repeated
// single-question lookups render consistently for the same participant.
func (q Question) OptionsSorted() []string {
	options := q.allOptions()
	sort.Strings(options)
	return options
}

func (q Question) allOptions() []string {
	options := make([]string, 0, 1+len(q.IncorrectAnswers))
	options = append(options, q.CorrectAnswer)
	options = append(options, q.IncorrectAnswers...)
	return options
}

// QuestionBatch is the fixed, ordered question set shared by every
// participant in one tournament.
type QuestionBatch struct {
	TournamentID int64      `json:"tournamentId"`
	Questions    []Question `json:"questions"`
}

// Size returns the number of questions in the batch.
func (b QuestionBatch) Size() int { return len(b.Questions) }

// SessionKey identifies one participant's attempt at one tournament.
// Used directly as a map key, never as a concatenated string.
type SessionKey struct {
	UserID       int64
	TournamentID int64
}

// RecordedAnswer captures one submitted answer, including the correct answer
// and prompt so the completion summary can be built without the batch.
type RecordedAnswer struct {
	QuestionNumber int       `json:"questionNumber"`
	Answer         string    `json:"answer"`
	Correct        bool      `json:"correct"`
	CorrectAnswer  string    `json:"correctAnswer"`
	Prompt         string    `json:"question"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// TournamentStatus classifies a tournament by its date window.
type TournamentStatus int

const (
	StatusUpcoming TournamentStatus = iota
	StatusOngoing
	StatusPast
)

func (s TournamentStatus) String() string {
	switch s {
	case StatusUpcoming:
		return "upcoming"
	case StatusOngoing:
		return "ongoing"
	case StatusPast:
		return "past"
	default:
		return "unknown"
	}
}

// Tournament is the read-only metadata the quiz core needs: what to fetch,
// when play is allowed, and the pass threshold.
type Tournament struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Category        string     `json:"category"`
	Difficulty      Difficulty `json:"difficulty"`
	MinPassingScore float64    `json:"minPassingScore"` // percentage, 0-100
	StartDate       time.Time  `json:"startDate"`
	EndDate         time.Time  `json:"endDate"`
}

// StatusAt classifies the tournament relative to now. The playable window is
// inclusive on both ends.
func (t Tournament) StatusAt(now time.Time) TournamentStatus {
	if now.Before(t.StartDate) {
		return StatusUpcoming
	}
	if now.After(t.EndDate) {
		return StatusPast
	}
	return StatusOngoing
}

// QuestionView is a question as exposed to a participant: no correct-answer
// marker, options pre-ordered by the caller.
type QuestionView struct {
	Prompt         string       `json:"question"`
	Type           QuestionType `json:"type"`
	Difficulty     Difficulty   `json:"difficulty"`
	Category       string       `json:"category"`
	AnswerOptions  []string     `json:"answerOptions"`
	QuestionNumber int          `json:"questionNumber"`
	TotalQuestions int          `json:"totalQuestions"`
}

// AnswerFeedback is returned after each submission.
type AnswerFeedback struct {
	Correct        bool   `json:"correct"`
	CorrectAnswer  string `json:"correctAnswer"`
	UserAnswer     string `json:"userAnswer"`
	QuestionNumber int    `json:"questionNumber"`
	CorrectCount   int    `json:"correctCount"`
	TotalQuestions int    `json:"totalQuestions"`
}

// SessionProgress is a point-in-time snapshot of one session.
type SessionProgress struct {
	Active          bool `json:"active"`
	CurrentQuestion int  `json:"currentQuestion"`
	CorrectAnswers  int  `json:"correctAnswers"`
	TotalQuestions  int  `json:"totalQuestions"`
	Completed       bool `json:"completed"`
}

// QuizResult is the persisted outcome of a completed session.
type QuizResult struct {
	UserID           int64     `json:"userId"`
	TournamentID     int64     `json:"tournamentId"`
	Score            int       `json:"score"` // correct answers
	TotalQuestions   int       `json:"totalQuestions"`
	Percentage       float64   `json:"percentage"`
	Passed           bool      `json:"passed"`
	CompletedAt      time.Time `json:"completedAt"`
	TimeTakenSeconds int       `json:"timeTakenSeconds"`
}

// LegacyScore mirrors a result into the score-out-of-10 shape the
// downstream leaderboard still reads.
type LegacyScore struct {
	UserID       int64     `json:"userId"`
	TournamentID int64     `json:"tournamentId"`
	Score        int       `json:"score"` // 0-10
	Passed       bool      `json:"passed"`
	CompletedAt  time.Time `json:"completedAt"`
}

// QuizCompletion is handed back to the participant when a quiz finishes.
type QuizCompletion struct {
	CorrectAnswers  int                    `json:"correctAnswers"`
	TotalQuestions  int                    `json:"totalQuestions"`
	Percentage      float64                `json:"percentage"`
	Passed          bool                   `json:"passed"`
	MinPassingScore float64                `json:"minPassingScore"`
	AnswerHistory   map[int]RecordedAnswer `json:"answerHistory"`
}

// CacheStats reports the size of the two in-memory tables.
type CacheStats struct {
	CachedTournaments  int `json:"cachedTournaments"`
	ActiveQuizSessions int `json:"activeQuizSessions"`
}
