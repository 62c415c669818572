package swaps

import (
	"time"

	"github.com/google/uuid"

	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
)

// CreateSwapInput captures a guide's request to hand a trip slot to a peer,
// addressed by the peer's email.
type CreateSwapInput struct {
	TripID        uuid.UUID
	TargetEmail   string
	Reason        *string
	ActorUserID   uuid.UUID
	ActorGuideID  uuid.UUID
	ActorBranchID *uuid.UUID
	ActorRole     enums.ActorRole
}

// ListSwapsInput scopes a guide's swap history query.
type ListSwapsInput struct {
	GuideID uuid.UUID
	Status  *enums.SwapStatus
	Limit   int
	Cursor  string
}

// SwapListItem is one swap row denormalized with trip and counterparty fields
// so list screens render without extra lookups.
type SwapListItem struct {
	ID            uuid.UUID        `gorm:"column:id" json:"id"`
	TripID        uuid.UUID        `gorm:"column:trip_id" json:"trip_id"`
	TripTitle     string           `gorm:"column:trip_title" json:"trip_title"`
	TripDepartsAt time.Time        `gorm:"column:trip_departs_at" json:"trip_departs_at"`
	FromGuideID   uuid.UUID        `gorm:"column:from_guide_id" json:"from_guide_id"`
	ToGuideID     uuid.UUID        `gorm:"column:to_guide_id" json:"to_guide_id"`
	ToGuideName   string           `gorm:"column:to_guide_name" json:"to_guide_name"`
	ToGuideEmail  string           `gorm:"column:to_guide_email" json:"to_guide_email"`
	Status        enums.SwapStatus `gorm:"column:status" json:"status"`
	Reason        *string          `gorm:"column:reason" json:"reason,omitempty"`
	CreatedAt     time.Time        `gorm:"column:created_at" json:"created_at"`
}

// SwapList is a cursor page of swap rows.
type SwapList struct {
	Swaps      []SwapListItem `json:"swaps"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
