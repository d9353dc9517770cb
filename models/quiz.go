package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the lifecycle state of a quiz session.
// Transitions are one-directional: pending -> in_progress -> completed|timed_out.
type SessionStatus string

const (
	StatusPending    SessionStatus = "pending"
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusTimedOut   SessionStatus = "timed_out"
)

// Terminal reports whether no further transition may leave this state.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusTimedOut
}

// CanStart reports whether the session may move to in_progress.
func (s SessionStatus) CanStart() bool {
	return s == StatusPending
}

// CanSubmit reports whether answers may still be submitted.
func (s SessionStatus) CanSubmit() bool {
	return !s.Terminal()
}

// Difficulty selects the question style requested from the generator.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the three supported levels.
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// QuizSession is one timed quiz attempt with a fixed set of questions.
// TotalQuestions equals the number of persisted questions at creation and
// never changes afterward.
type QuizSession struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	UserID           uuid.UUID     `json:"user_id" db:"user_id"`
	SourceID         *uuid.UUID    `json:"source_id,omitempty" db:"source_id"`
	Title            string        `json:"title" db:"title"`
	NumQuestions     int           `json:"num_questions" db:"num_questions"`
	Difficulty       Difficulty    `json:"difficulty" db:"difficulty"`
	TimeLimitSeconds int           `json:"time_limit_seconds" db:"time_limit_seconds"`
	TimeTakenSeconds *int          `json:"time_taken_seconds,omitempty" db:"time_taken_seconds"`
	Score            int           `json:"score" db:"score"`
	TotalQuestions   int           `json:"total_questions" db:"total_questions"`
	Percentage       *float64      `json:"percentage,omitempty" db:"percentage"`
	Status           SessionStatus `json:"status" db:"status"`
	StartedAt        *time.Time    `json:"started_at,omitempty" db:"started_at"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
}

// QuizQuestion is immutable once created. OrderIndex is 1-based and
// contiguous within a session.
type QuizQuestion struct {
	ID            uuid.UUID `json:"id" db:"id"`
	SessionID     uuid.UUID `json:"session_id" db:"session_id"`
	QuestionText  string    `json:"question_text" db:"question_text"`
	OptionA       string    `json:"option_a" db:"option_a"`
	OptionB       string    `json:"option_b" db:"option_b"`
	OptionC       string    `json:"option_c" db:"option_c"`
	OptionD       string    `json:"option_d" db:"option_d"`
	CorrectOption string    `json:"correct_option" db:"correct_option"`
	Explanation   string    `json:"explanation" db:"explanation"`
	OrderIndex    int       `json:"order_index" db:"order_index"`
}

// UserAnswer records the single grading pass for one question at submission
// time. SelectedOption nil means the question was skipped; a skipped answer
// is never correct. Rows are never updated after insertion.
type UserAnswer struct {
	ID             uuid.UUID `json:"id" db:"id"`
	SessionID      uuid.UUID `json:"session_id" db:"session_id"`
	QuestionID     uuid.UUID `json:"question_id" db:"question_id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	SelectedOption *string   `json:"selected_option,omitempty" db:"selected_option"`
	IsCorrect      bool      `json:"is_correct" db:"is_correct"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
