package domain

import (
	"time"

	"github.com/google/uuid"
)

type Attachment struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	RecordID   uuid.UUID  `json:"record_id" db:"record_id"`
	Filename   string     `json:"filename" db:"filename"`
	MimeType   string     `json:"mime_type" db:"mime_type"`
	SizeBytes  int64      `json:"size_bytes" db:"size_bytes"`
	StorageKey string     `json:"-" db:"storage_key"`
	UploadedBy uuid.UUID  `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	DeletedAt  *time.Time `json:"-" db:"deleted_at"`
}
