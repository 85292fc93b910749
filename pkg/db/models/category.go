package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a reference row products point at. The catalog treats the set
// as read-only; rows are seeded by migrations.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
}
