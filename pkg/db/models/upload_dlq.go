package models

import (
	"time"

	"github.com/google/uuid"
)

// UploadDLQ reasons a file in the upload directory could not be cleaned up.
const (
	UploadDLQReasonDeleteFailed  = "delete_failed"
	UploadDLQReasonOrphanedWrite = "orphaned_write"
)

// UploadDLQ records upload-directory files whose cleanup failed, so the
// reconciler can retry them later instead of the request swallowing the
// error.
type UploadDLQ struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Filename   string     `gorm:"column:filename;not null;uniqueIndex"`
	Reason     string     `gorm:"column:reason;not null"`
	Attempts   int        `gorm:"column:attempts;not null;default:0"`
	LastError  *string    `gorm:"column:last_error"`
	ResolvedAt *time.Time `gorm:"column:resolved_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
