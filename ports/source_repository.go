package ports

import (
	"context"

	"quizforge/models"

	"github.com/google/uuid"
)

// SourceRepository defines the interface for study source persistence.
// All lookups are scoped to the owning user; a source owned by someone
// else behaves exactly like a missing one.
type SourceRepository interface {
	// CreateSource inserts a new study source, assigning its ID.
	CreateSource(ctx context.Context, source *models.StudySource) error

	// GetSource retrieves a source by owner and ID.
	GetSource(ctx context.Context, userID, sourceID uuid.UUID) (*models.StudySource, error)

	// ListSources returns all sources owned by the user, newest first.
	ListSources(ctx context.Context, userID uuid.UUID) ([]*models.StudySource, error)

	// DeleteSource removes a source by owner and ID. Sessions referencing
	// it keep running with their source reference set to null.
	DeleteSource(ctx context.Context, userID, sourceID uuid.UUID) error
}
