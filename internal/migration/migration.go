package migration

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createUsersTable(ctx, db); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	if err := r.createStudySourcesTable(ctx, db); err != nil {
		return fmt.Errorf("failed to create study_sources table: %w", err)
	}

	if err := r.createQuizSessionsTable(ctx, db); err != nil {
		return fmt.Errorf("failed to create quiz_sessions table: %w", err)
	}

	if err := r.createQuizQuestionsTable(ctx, db); err != nil {
		return fmt.Errorf("failed to create quiz_questions table: %w", err)
	}

	if err := r.createUserAnswersTable(ctx, db); err != nil {
		return fmt.Errorf("failed to create user_answers table: %w", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func (r *MigrationRunner) createUsersTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL UNIQUE,
			hashed_password TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

func (r *MigrationRunner) createStudySourcesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS study_sources (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			source_type TEXT NOT NULL CHECK (source_type IN ('pdf', 'docx', 'image', 'topic')),
			file_name TEXT,
			file_path TEXT,
			raw_text TEXT,
			topic TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

func (r *MigrationRunner) createQuizSessionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS quiz_sessions (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			source_id UUID REFERENCES study_sources(id) ON DELETE SET NULL,
			title TEXT,
			num_questions INTEGER NOT NULL,
			difficulty TEXT NOT NULL DEFAULT 'medium' CHECK (difficulty IN ('easy', 'medium', 'hard')),
			time_limit_seconds INTEGER NOT NULL,
			time_taken_seconds INTEGER,
			score INTEGER NOT NULL DEFAULT 0,
			total_questions INTEGER NOT NULL,
			percentage NUMERIC(5,2),
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'in_progress', 'completed', 'timed_out')),
			started_at TIMESTAMPTZ,
			completed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

func (r *MigrationRunner) createQuizQuestionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS quiz_questions (
			id UUID PRIMARY KEY,
			session_id UUID NOT NULL REFERENCES quiz_sessions(id) ON DELETE CASCADE,
			question_text TEXT NOT NULL,
			option_a TEXT NOT NULL,
			option_b TEXT NOT NULL,
			option_c TEXT NOT NULL,
			option_d TEXT NOT NULL,
			correct_option TEXT NOT NULL CHECK (correct_option IN ('A', 'B', 'C', 'D')),
			explanation TEXT,
			order_index INTEGER NOT NULL
		)`)
	return err
}

func (r *MigrationRunner) createUserAnswersTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS user_answers (
			id UUID PRIMARY KEY,
			session_id UUID NOT NULL REFERENCES quiz_sessions(id) ON DELETE CASCADE,
			question_id UUID NOT NULL REFERENCES quiz_questions(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			selected_option TEXT CHECK (selected_option IN ('A', 'B', 'C', 'D')),
			is_correct BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_study_sources_user_id ON study_sources(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_quiz_sessions_user_id ON quiz_sessions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_quiz_sessions_created_at ON quiz_sessions(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_quiz_questions_session_id ON quiz_questions(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_user_answers_session_id ON user_answers(session_id)`,
	}

	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}
