package trivia

import (
	"log"
	"strings"

	"quiz-tournament-service/internal/domain"
)

// fallbackQuestions returns hardcoded questions when the provider is
// unusable, so a tournament can always be played. Banks are small (2-3
// entries per category); the requested difficulty overrides the stored one.
func fallbackQuestions(category string, difficulty domain.Difficulty, amount int) []domain.Question {
	log.Printf("trivia: using fallback questions for category %q", category)

	var bank []domain.Question
	switch strings.ToLower(category) {
	case "science":
		bank = scienceFallback()
	case "history":
		bank = historyFallback()
	case "sports":
		bank = sportsFallback()
	default:
		bank = generalFallback()
	}

	if difficulty != "" {
		for i := range bank {
			bank[i].Difficulty = difficulty
		}
	}

	if len(bank) > amount {
		bank = bank[:amount]
	}
	return bank
}

func scienceFallback() []domain.Question {
	return []domain.Question{
		{
			Category:         "Science & Nature",
			Type:             domain.TypeMultipleChoice,
			Difficulty:       domain.DifficultyMedium,
			Prompt:           "What is the chemical symbol for gold?",
			CorrectAnswer:    "Au",
			IncorrectAnswers: []string{"Ag", "Go", "Gd"},
		},
		{
			Category:         "Science & Nature",
			Type:             domain.TypeTrueFalse,
			Difficulty:       domain.DifficultyEasy,
			Prompt:           "The Earth is the third planet from the Sun.",
			CorrectAnswer:    "True",
			IncorrectAnswers: []string{"False"},
		},
		{
			Category:         "Science & Nature",
			Type:             domain.TypeMultipleChoice,
			Difficulty:       domain.DifficultyHard,
			Prompt:           "What is the most abundant gas in Earth's atmosphere?",
			CorrectAnswer:    "Nitrogen",
			IncorrectAnswers: []string{"Oxygen", "Carbon Dioxide", "Argon"},
		},
	}
}

func historyFallback() []domain.Question {
	return []domain.Question{
		{
			Category:         "History",
			Type:             domain.TypeMultipleChoice,
			Difficulty:       domain.DifficultyMedium,
			Prompt:           "In which year did World War II end?",
			CorrectAnswer:    "1945",
			IncorrectAnswers: []string{"1944", "1946", "1943"},
		},
		{
			Category:         "History",
			Type:             domain.TypeTrueFalse,
			Difficulty:       domain.DifficultyEasy,
			Prompt:           "The Great Wall of China was built in a single dynasty.",
			CorrectAnswer:    "False",
			IncorrectAnswers: []string{"True"},
		},
	}
}

func sportsFallback() []domain.Question {
	return []domain.Question{
		{
			Category:         "Sports",
			Type:             domain.TypeMultipleChoice,
			Difficulty:       domain.DifficultyMedium,
			Prompt:           "How many players are there in a basketball team on court?",
			CorrectAnswer:    "5",
			IncorrectAnswers: []string{"6", "7", "4"},
		},
		{
			Category:         "Sports",
			Type:             domain.TypeTrueFalse,
			Difficulty:       domain.DifficultyEasy,
			Prompt:           "A soccer match consists of two halves.",
			CorrectAnswer:    "True",
			IncorrectAnswers: []string{"False"},
		},
	}
}

func generalFallback() []domain.Question {
	return []domain.Question{
		{
			Category:         "General Knowledge",
			Type:             domain.TypeMultipleChoice,
			Difficulty:       domain.DifficultyMedium,
			Prompt:           "What is the capital of Australia?",
			CorrectAnswer:    "Canberra",
			IncorrectAnswers: []string{"Sydney", "Melbourne", "Perth"},
		},
		{
			Category:         "General Knowledge",
			Type:             domain.TypeTrueFalse,
			Difficulty:       domain.DifficultyEasy,
			Prompt:           "There are 7 continents on Earth.",
			CorrectAnswer:    "True",
			IncorrectAnswers: []string{"False"},
		},
		{
			Category:         "General Knowledge",
			Type:             domain.TypeMultipleChoice,
			Difficulty:       domain.DifficultyHard,
			Prompt:           "Which planet has the most moons?",
			CorrectAnswer:    "Jupiter",
			IncorrectAnswers: []string{"Saturn", "Neptune", "Uranus"},
		},
	}
}
