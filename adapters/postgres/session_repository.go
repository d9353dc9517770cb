package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizforge/domain/core"
	"quizforge/models"
	"quizforge/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SessionRepositoryImpl implements SessionRepository for PostgreSQL
type SessionRepositoryImpl struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) ports.SessionRepository {
	return &SessionRepositoryImpl{db: db}
}

// CreateSessionWithQuestions atomically persists a session and its ordered
// question list. The questions never exist without their parent session.
func (r *SessionRepositoryImpl) CreateSessionWithQuestions(ctx context.Context, session *models.QuizSession, questions []*models.QuizQuestion) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session transaction: %w", err)
	}
	defer tx.Rollback()

	session.ID = uuid.New()
	session.CreatedAt = time.Now().UTC()
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO quiz_sessions (
			id, user_id, source_id, title, num_questions, difficulty,
			time_limit_seconds, score, total_questions, status, created_at
		) VALUES (
			:id, :user_id, :source_id, :title, :num_questions, :difficulty,
			:time_limit_seconds, :score, :total_questions, :status, :created_at
		)
	`, session)
	if err != nil {
		return fmt.Errorf("insert quiz session: %w", err)
	}

	for _, q := range questions {
		q.ID = uuid.New()
		q.SessionID = session.ID
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO quiz_questions (
				id, session_id, question_text, option_a, option_b, option_c, option_d,
				correct_option, explanation, order_index
			) VALUES (
				:id, :session_id, :question_text, :option_a, :option_b, :option_c, :option_d,
				:correct_option, :explanation, :order_index
			)
		`, q)
		if err != nil {
			return fmt.Errorf("insert quiz question %d: %w", q.OrderIndex, err)
		}
	}

	return tx.Commit()
}

// GetSession retrieves a session by owner and ID
func (r *SessionRepositoryImpl) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*models.QuizSession, error) {
	var session models.QuizSession
	err := r.db.GetContext(ctx, &session, `
		SELECT id, user_id, source_id, title, num_questions, difficulty,
		       time_limit_seconds, time_taken_seconds, score, total_questions,
		       percentage, status, started_at, completed_at, created_at
		FROM quiz_sessions
		WHERE user_id = $1 AND id = $2
	`, userID, sessionID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("quiz session")
		}
		return nil, err
	}

	return &session, nil
}

// ListQuestions returns the session's questions ordered by order_index
func (r *SessionRepositoryImpl) ListQuestions(ctx context.Context, sessionID uuid.UUID) ([]*models.QuizQuestion, error) {
	questions := []*models.QuizQuestion{}
	err := r.db.SelectContext(ctx, &questions, `
		SELECT id, session_id, question_text, option_a, option_b, option_c, option_d,
		       correct_option, explanation, order_index
		FROM quiz_questions
		WHERE session_id = $1
		ORDER BY order_index
	`, sessionID)
	return questions, err
}

// ListAnswers returns the session's recorded answers
func (r *SessionRepositoryImpl) ListAnswers(ctx context.Context, sessionID uuid.UUID) ([]*models.UserAnswer, error) {
	answers := []*models.UserAnswer{}
	err := r.db.SelectContext(ctx, &answers, `
		SELECT id, session_id, question_id, user_id, selected_option, is_correct, created_at
		FROM user_answers
		WHERE session_id = $1
	`, sessionID)
	return answers, err
}

// StartSession moves a pending session to in_progress. The status guard in
// the WHERE clause makes concurrent starts safe: the second one matches no
// row and fails with ErrInvalidState.
func (r *SessionRepositoryImpl) StartSession(ctx context.Context, userID, sessionID uuid.UUID, startedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE quiz_sessions
		SET status = $3, started_at = $4
		WHERE user_id = $1 AND id = $2 AND status = $5
	`, userID, sessionID, models.StatusInProgress, startedAt, models.StatusPending)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return core.NewInvalidStateError("non-pending", "start")
	}
	return nil
}

// SubmitSession atomically records the answer rows and finalizes the
// session. The conditional update runs first inside the transaction; if the
// session already reached a terminal state no answers are written.
func (r *SessionRepositoryImpl) SubmitSession(ctx context.Context, session *models.QuizSession, answers []*models.UserAnswer) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin submit transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE quiz_sessions
		SET status = $3, score = $4, percentage = $5,
		    time_taken_seconds = $6, completed_at = $7
		WHERE user_id = $1 AND id = $2 AND status IN ($8, $9)
	`, session.UserID, session.ID, session.Status, session.Score, session.Percentage,
		session.TimeTakenSeconds, session.CompletedAt,
		models.StatusPending, models.StatusInProgress)
	if err != nil {
		return fmt.Errorf("finalize quiz session: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return core.NewInvalidStateError("terminal", "submit")
	}

	for _, a := range answers {
		a.ID = uuid.New()
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO user_answers (id, session_id, question_id, user_id, selected_option, is_correct, created_at)
			VALUES (:id, :session_id, :question_id, :user_id, :selected_option, :is_correct, NOW())
		`, a)
		if err != nil {
			return fmt.Errorf("insert user answer: %w", err)
		}
	}

	return tx.Commit()
}

// ListSessions returns a page of the user's sessions, newest first
func (r *SessionRepositoryImpl) ListSessions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.QuizSession, error) {
	sessions := []*models.QuizSession{}
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT id, user_id, source_id, title, num_questions, difficulty,
		       time_limit_seconds, time_taken_seconds, score, total_questions,
		       percentage, status, started_at, completed_at, created_at
		FROM quiz_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return sessions, err
}

// CountSessions returns the user's total session count
func (r *SessionRepositoryImpl) CountSessions(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM quiz_sessions WHERE user_id = $1
	`, userID)
	return count, err
}

// FinishedPercentages returns the percentage of every terminal session
// owned by the user
func (r *SessionRepositoryImpl) FinishedPercentages(ctx context.Context, userID uuid.UUID) ([]float64, error) {
	percentages := []float64{}
	err := r.db.SelectContext(ctx, &percentages, `
		SELECT percentage
		FROM quiz_sessions
		WHERE user_id = $1 AND status IN ($2, $3) AND percentage IS NOT NULL
		ORDER BY created_at DESC
	`, userID, models.StatusCompleted, models.StatusTimedOut)
	return percentages, err
}
