package models

import (
	"time"

	"github.com/google/uuid"
)

// SourceType identifies what kind of study material a source holds.
type SourceType string

const (
	SourcePDF   SourceType = "pdf"
	SourceDOCX  SourceType = "docx"
	SourceImage SourceType = "image"
	SourceTopic SourceType = "topic"
)

// IsFile reports whether the source is backed by an uploaded file.
func (t SourceType) IsFile() bool {
	return t == SourcePDF || t == SourceDOCX || t == SourceImage
}

// MaxRawTextLen caps stored extracted text to keep later prompts bounded.
const MaxRawTextLen = 50000

// StudySource is a user-supplied unit of study material: an uploaded
// document with extracted text, or a bare topic string. File-backed fields
// are nil for topic sources and vice versa.
type StudySource struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	SourceType SourceType `json:"source_type" db:"source_type"`
	FileName   *string    `json:"file_name,omitempty" db:"file_name"`
	FilePath   *string    `json:"-" db:"file_path"`
	RawText    *string    `json:"-" db:"raw_text"`
	Topic      *string    `json:"topic,omitempty" db:"topic"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
