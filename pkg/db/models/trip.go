package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
)

// Trip is a scheduled departure that crew assignments hang off.
type Trip struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID      uuid.UUID        `gorm:"column:branch_id;type:uuid;not null"`
	Title         string           `gorm:"column:title;not null"`
	Status        enums.TripStatus `gorm:"column:status;type:trip_status;not null;default:'scheduled'"`
	DepartsAt     time.Time        `gorm:"column:departs_at;not null"`
	GuideFeeTotal decimal.Decimal  `gorm:"column:guide_fee_total;type:numeric(14,2);not null;default:0"`

	// Set when a blocked departure is forced through by an authorized admin.
	StartedAt        *time.Time `gorm:"column:started_at"`
	SafetyOverride   bool       `gorm:"column:safety_override;not null;default:false"`
	SafetyOverrideBy *uuid.UUID `gorm:"column:safety_override_by;type:uuid"`

	Assignments []TripAssignment `gorm:"foreignKey:TripID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
