package domain

import (
	"sort"
	"testing"
	"time"
)

func sampleQuestion() Question {
	return Question{
		Category:         "Science & Nature",
		Type:             TypeMultipleChoice,
		Difficulty:       DifficultyMedium,
		Prompt:           "What is the chemical symbol for gold?",
		CorrectAnswer:    "Au",
		IncorrectAnswers: []string{"Ag", "Go", "Gd"},
	}
}

func TestIsCorrectIgnoresCase(t *testing.T) {
	q := sampleQuestion()
	if !q.IsCorrect("au") || !q.IsCorrect("AU") {
		t.Fatalf("expected case-insensitive match")
	}
	if q.IsCorrect("Ag") {
		t.Fatalf("expected incorrect answer to fail")
	}
}

func TestOptionsSortedIsStableAndComplete(t *testing.T) {
	q := sampleQuestion()
	options := q.OptionsSorted()
	if len(options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(options))
	}
	if !sort.StringsAreSorted(options) {
		t.Fatalf("expected alphabetical order, got %v", options)
	}
	if !contains(options, q.CorrectAnswer) {
		t.Fatalf("correct answer missing from options")
	}
}

func TestOptionsShuffledContainsAllOptions(t *testing.T) {
	q := sampleQuestion()
	options := q.OptionsShuffled()
	if len(options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(options))
	}
	for _, want := range append([]string{q.CorrectAnswer}, q.IncorrectAnswers...) {
		if !contains(options, want) {
			t.Fatalf("option %q missing from %v", want, options)
		}
	}
}

func TestTournamentStatusAt(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	tournament := Tournament{StartDate: start, EndDate: end}

	cases := []struct {
		now  time.Time
		want TournamentStatus
	}{
		{start.AddDate(0, 0, -1), StatusUpcoming},
		{start, StatusOngoing},
		{start.AddDate(0, 0, 10), StatusOngoing},
		{end, StatusOngoing},
		{end.Add(time.Second), StatusPast},
	}
	for _, tc := range cases {
		if got := tournament.StatusAt(tc.now); got != tc.want {
			t.Fatalf("at %s: expected %s, got %s", tc.now, tc.want, got)
		}
	}
}

func contains(options []string, want string) bool {
	for _, o := range options {
		if o == want {
			return true
		}
	}
	return false
}
