package ports

import (
	"context"

	"quizforge/models"
)

// GeneratedQuestion is one validated multiple-choice question produced by
// the generator. CorrectOption is always one of A/B/C/D after repair.
type GeneratedQuestion struct {
	Question      string `json:"question"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectOption string `json:"correct_option"`
	Explanation   string `json:"explanation"`
}

// QuestionGenerator produces validated question records from study material.
// A nil error with zero records is a valid parse outcome; callers decide
// whether that constitutes a failure.
type QuestionGenerator interface {
	// FromText generates up to count questions from source text.
	FromText(ctx context.Context, text string, count int, difficulty models.Difficulty) ([]GeneratedQuestion, error)

	// FromTopic generates up to count questions about a topic.
	FromTopic(ctx context.Context, topic string, count int, difficulty models.Difficulty) ([]GeneratedQuestion, error)
}
