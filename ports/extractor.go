package ports

import (
	"context"

	"quizforge/models"
)

// TextExtractor converts an uploaded file into plain UTF-8 text.
type TextExtractor interface {
	// Extract reads the file at path and returns its text content. kind is
	// the MIME-derived source type (pdf, docx or image).
	Extract(ctx context.Context, path string, kind models.SourceType) (string, error)
}
