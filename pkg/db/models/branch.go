package models

import (
	"time"

	"github.com/google/uuid"
)

// Branch is the tenant scope every trip and guide belongs to.
type Branch struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Timezone  string    `gorm:"column:timezone;not null;default:'UTC'"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
