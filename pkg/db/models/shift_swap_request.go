package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
)

// ShiftSwapRequest is a guide's proposal to hand a trip slot to a peer.
// Approval and the actual reassignment are an admin concern.
type ShiftSwapRequest struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TripID      uuid.UUID        `gorm:"column:trip_id;type:uuid;not null"`
	BranchID    uuid.UUID        `gorm:"column:branch_id;type:uuid;not null"`
	FromGuideID uuid.UUID        `gorm:"column:from_guide_id;type:uuid;not null"`
	ToGuideID   uuid.UUID        `gorm:"column:to_guide_id;type:uuid;not null"`
	Status      enums.SwapStatus `gorm:"column:status;type:swap_status;not null;default:'pending'"`
	Reason      *string          `gorm:"column:reason"`
	AdminNote   *string          `gorm:"column:admin_note"`
	DecidedAt   *time.Time       `gorm:"column:decided_at"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
