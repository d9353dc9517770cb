package ports

import (
	"context"
	"time"

	"quizforge/models"

	"github.com/google/uuid"
)

// SessionRepository defines the interface for quiz session persistence.
// Session lookups are scoped to the owning user. The two multi-row writes
// (creation with questions, submission with answers) are each one
// transaction: neither half may exist without the other.
type SessionRepository interface {
	// CreateSessionWithQuestions atomically persists a session and its
	// ordered question list.
	CreateSessionWithQuestions(ctx context.Context, session *models.QuizSession, questions []*models.QuizQuestion) error

	// GetSession retrieves a session by owner and ID.
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*models.QuizSession, error)

	// ListQuestions returns the session's questions ordered by order_index.
	ListQuestions(ctx context.Context, sessionID uuid.UUID) ([]*models.QuizQuestion, error)

	// ListAnswers returns the session's recorded answers.
	ListAnswers(ctx context.Context, sessionID uuid.UUID) ([]*models.UserAnswer, error)

	// StartSession moves a pending session to in_progress. The update is
	// conditional on status = pending; ErrInvalidState is returned when no
	// row matched.
	StartSession(ctx context.Context, userID, sessionID uuid.UUID, startedAt time.Time) error

	// SubmitSession atomically records the answer rows and finalizes the
	// session (score, percentage, time taken, terminal status,
	// completed_at). The status update is conditional on the session not
	// already being terminal; ErrInvalidState is returned otherwise and
	// nothing is written.
	SubmitSession(ctx context.Context, session *models.QuizSession, answers []*models.UserAnswer) error

	// ListSessions returns a page of the user's sessions, newest first.
	ListSessions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.QuizSession, error)

	// CountSessions returns the user's total session count.
	CountSessions(ctx context.Context, userID uuid.UUID) (int, error)

	// FinishedPercentages returns the percentage of every terminal session
	// owned by the user, for aggregate statistics.
	FinishedPercentages(ctx context.Context, userID uuid.UUID) ([]float64, error)
}
