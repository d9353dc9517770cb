package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"quizforge/domain/core"
	"quizforge/models"
	"quizforge/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SourceRepositoryImpl implements SourceRepository for PostgreSQL
type SourceRepositoryImpl struct {
	db *sqlx.DB
}

// NewSourceRepository creates a new PostgreSQL source repository
func NewSourceRepository(db *sqlx.DB) ports.SourceRepository {
	return &SourceRepositoryImpl{db: db}
}

// CreateSource inserts a new study source, assigning its ID
func (r *SourceRepositoryImpl) CreateSource(ctx context.Context, source *models.StudySource) error {
	source.ID = uuid.New()
	source.CreatedAt = time.Now().UTC()
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO study_sources (id, user_id, source_type, file_name, file_path, raw_text, topic, created_at)
		VALUES (:id, :user_id, :source_type, :file_name, :file_path, :raw_text, :topic, :created_at)
	`, source)
	return err
}

// GetSource retrieves a source by owner and ID. A source owned by another
// user surfaces as not found.
func (r *SourceRepositoryImpl) GetSource(ctx context.Context, userID, sourceID uuid.UUID) (*models.StudySource, error) {
	var source models.StudySource
	err := r.db.GetContext(ctx, &source, `
		SELECT id, user_id, source_type, file_name, file_path, raw_text, topic, created_at
		FROM study_sources
		WHERE user_id = $1 AND id = $2
	`, userID, sourceID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("study source")
		}
		return nil, err
	}

	return &source, nil
}

// ListSources returns all sources owned by the user, newest first
func (r *SourceRepositoryImpl) ListSources(ctx context.Context, userID uuid.UUID) ([]*models.StudySource, error) {
	sources := []*models.StudySource{}
	err := r.db.SelectContext(ctx, &sources, `
		SELECT id, user_id, source_type, file_name, file_path, raw_text, topic, created_at
		FROM study_sources
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	return sources, err
}

// DeleteSource removes a source by owner and ID. Sessions referencing the
// source keep running; the foreign key sets their source_id to null.
func (r *SourceRepositoryImpl) DeleteSource(ctx context.Context, userID, sourceID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM study_sources
		WHERE user_id = $1 AND id = $2
	`, userID, sourceID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return core.NewNotFoundError("study source")
	}
	return nil
}
