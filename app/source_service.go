package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"quizforge/domain/core"
	"quizforge/internal"
	"quizforge/internal/upload"
	"quizforge/models"
	"quizforge/ports"

	"github.com/google/uuid"
)

// allowedTypes maps accepted upload content types to source kinds.
var allowedTypes = map[string]models.SourceType{
	"application/pdf": models.SourcePDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": models.SourceDOCX,
	"application/msword": models.SourceDOCX,
	"image/png":          models.SourceImage,
	"image/jpeg":         models.SourceImage,
	"image/jpg":          models.SourceImage,
}

// minExtractedLen is the smallest trimmed text length considered usable.
const minExtractedLen = 50

// SourceService owns the study-source catalog: uploads, topics, listing
// and deletion, always scoped to the owning user.
type SourceService struct {
	sources   ports.SourceRepository
	extractor ports.TextExtractor
	store     *upload.Store
	maxBytes  int64
	log       *internal.Logger
}

// NewSourceService creates a new source service
func NewSourceService(sources ports.SourceRepository, extractor ports.TextExtractor, store *upload.Store, maxUploadMB int, log *internal.Logger) *SourceService {
	return &SourceService{
		sources:   sources,
		extractor: extractor,
		store:     store,
		maxBytes:  int64(maxUploadMB) * 1024 * 1024,
		log:       log,
	}
}

// SaveFileSource validates, stores and extracts an uploaded document, then
// persists it as a study source.
func (s *SourceService) SaveFileSource(ctx context.Context, user *models.User, fileName, contentType string, file io.Reader) (*models.StudySource, error) {
	kind, ok := allowedTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s (allowed: PDF, DOCX, PNG, JPEG)", core.ErrUnsupportedType, contentType)
	}

	data, err := io.ReadAll(io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: max size %dMB", core.ErrTooLarge, s.maxBytes/(1024*1024))
	}

	path, err := s.store.Save(user.ID, fileName, data)
	if err != nil {
		return nil, err
	}

	// Extraction failures are folded into the insufficient-content check
	// below; the specific cause is only logged.
	text, err := s.extractor.Extract(ctx, path, kind)
	if err != nil {
		s.log.Warn("text extraction failed for %s: %v", path, err)
		text = ""
	}

	if len([]rune(strings.TrimSpace(text))) < minExtractedLen {
		s.store.Remove(path)
		return nil, fmt.Errorf("%w: could not extract enough text from the file", core.ErrInsufficientContent)
	}

	text = truncateRunes(text, models.MaxRawTextLen)
	source := &models.StudySource{
		UserID:     user.ID,
		SourceType: kind,
		FileName:   &fileName,
		FilePath:   &path,
		RawText:    &text,
	}
	if err := s.sources.CreateSource(ctx, source); err != nil {
		s.store.Remove(path)
		return nil, err
	}

	s.log.Info("saved %s source %s for user %s", kind, source.ID, user.ID)
	return source, nil
}

// SaveTopicSource persists a topic-type source. Topics carry no extracted
// text; generation works from the topic string alone.
func (s *SourceService) SaveTopicSource(ctx context.Context, user *models.User, topic string) (*models.StudySource, error) {
	topic = strings.TrimSpace(topic)
	if len([]rune(topic)) < 3 {
		return nil, core.NewInvalidRequestError("topic must be at least 3 characters")
	}

	source := &models.StudySource{
		UserID:     user.ID,
		SourceType: models.SourceTopic,
		Topic:      &topic,
	}
	if err := s.sources.CreateSource(ctx, source); err != nil {
		return nil, err
	}
	return source, nil
}

// ListSources returns the user's sources, newest first.
func (s *SourceService) ListSources(ctx context.Context, user *models.User) ([]*models.StudySource, error) {
	return s.sources.ListSources(ctx, user.ID)
}

// DeleteSource removes a source and its backing file. File removal is
// best-effort; record deletion proceeds regardless.
func (s *SourceService) DeleteSource(ctx context.Context, user *models.User, sourceID uuid.UUID) error {
	source, err := s.sources.GetSource(ctx, user.ID, sourceID)
	if err != nil {
		return err
	}

	if source.FilePath != nil {
		s.store.Remove(*source.FilePath)
	}

	return s.sources.DeleteSource(ctx, user.ID, sourceID)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
