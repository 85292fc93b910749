package uploads

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/msaleh-dev/catalog-backend/pkg/db/models"
)

// DLQRepository persists upload-directory cleanup failures for later retry.
type DLQRepository struct {
	db *gorm.DB
}

func NewDLQRepository(db *gorm.DB) *DLQRepository {
	return &DLQRepository{db: db}
}

// Record stores a cleanup failure. Re-recording the same filename bumps
// the attempt counter and reopens the row if it was resolved.
func (r *DLQRepository) Record(ctx context.Context, filename, reason string, cause error) error {
	var lastError *string
	if cause != nil {
		msg := cause.Error()
		lastError = &msg
	}
	row := &models.UploadDLQ{
		ID:        uuid.New(),
		Filename:  filename,
		Reason:    reason,
		Attempts:  1,
		LastError: lastError,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "filename"}},
			DoUpdates: clause.Assignments(map[string]any{
				"reason":      reason,
				"attempts":    gorm.Expr("upload_dlqs.attempts + 1"),
				"last_error":  lastError,
				"resolved_at": nil,
				"updated_at":  time.Now(),
			}),
		}).
		Create(row).Error
}

// ListUnresolved returns pending rows, oldest first.
func (r *DLQRepository) ListUnresolved(ctx context.Context, limit int) ([]models.UploadDLQ, error) {
	var rows []models.UploadDLQ
	q := r.db.WithContext(ctx).
		Where("resolved_at IS NULL").
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkResolved closes out a row after its file is confirmed gone.
func (r *DLQRepository) MarkResolved(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.UploadDLQ{}).
		Where("id = ?", id).
		Updates(map[string]any{"resolved_at": &now}).Error
}

// MarkAttempt records another failed retry.
func (r *DLQRepository) MarkAttempt(ctx context.Context, id uuid.UUID, cause error) error {
	updates := map[string]any{
		"attempts": gorm.Expr("attempts + 1"),
	}
	if cause != nil {
		msg := cause.Error()
		updates["last_error"] = &msg
	}
	return r.db.WithContext(ctx).
		Model(&models.UploadDLQ{}).
		Where("id = ?", id).
		Updates(updates).Error
}
