package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
)

// TripAssignment is one (trip, guide) crew slot. Rejected and expired rows are
// never deleted; they remain for audit and drive reassignment.
type TripAssignment struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TripID   uuid.UUID `gorm:"column:trip_id;type:uuid;not null;uniqueIndex:ux_trip_assignments_trip_guide,priority:1,where:status IN ('pending_confirmation','confirmed')"`
	GuideID  uuid.UUID `gorm:"column:guide_id;type:uuid;not null;uniqueIndex:ux_trip_assignments_trip_guide,priority:2"`
	BranchID uuid.UUID `gorm:"column:branch_id;type:uuid;not null"`

	Role   enums.CrewRole         `gorm:"column:role;type:crew_role;not null"`
	Status enums.AssignmentStatus `gorm:"column:status;type:assignment_status;not null;default:'pending_confirmation'"`

	ConfirmationDeadline *time.Time      `gorm:"column:confirmation_deadline"`
	FeeAmount            decimal.Decimal `gorm:"column:fee_amount;type:numeric(14,2);not null;default:0"`

	// Non-empty exactly when Status is rejected.
	RejectionReason *string `gorm:"column:rejection_reason"`

	AssignedBy  uuid.UUID  `gorm:"column:assigned_by;type:uuid;not null"`
	Notes       *string    `gorm:"column:notes"`
	ConfirmedAt *time.Time `gorm:"column:confirmed_at"`
	RejectedAt  *time.Time `gorm:"column:rejected_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
