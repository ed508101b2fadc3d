package domain

import "errors"

var (
	// ErrTournamentNotFound indicates the tournament id is unknown.
	ErrTournamentNotFound = errors.New("tournament not found")
	// ErrTournamentNotStarted is returned when a quiz is started before the tournament opens.
	ErrTournamentNotStarted = errors.New("tournament has not started yet")
	// ErrTournamentEnded is returned when a quiz is started after the tournament closed.
	ErrTournamentEnded = errors.New("tournament has already ended")
	// ErrSessionNotFound is returned when answer/query/complete is attempted without starting the quiz.
	ErrSessionNotFound = errors.New("no active quiz session found")
	// ErrInvalidQuestionNumber indicates a question number outside [1, N].
	ErrInvalidQuestionNumber = errors.New("invalid question number")
	// ErrQuizNotFinished is returned when completion is attempted before all questions are answered.
	ErrQuizNotFinished = errors.New("quiz is not yet completed")
)
