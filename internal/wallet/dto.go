package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasfarrell/wavecrest-backend/pkg/db/models"
	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
)

// FeeSplitShareView is one guide's allocation rendered for API responses.
// IsSelf marks the row belonging to the calling guide so clients can
// highlight it without comparing ids themselves.
type FeeSplitShareView struct {
	AssignmentID uuid.UUID       `json:"assignment_id"`
	GuideID      uuid.UUID       `json:"guide_id"`
	Role         enums.CrewRole  `json:"role"`
	FeeAmount    decimal.Decimal `json:"fee_amount"`
	Percentage   decimal.Decimal `json:"percentage"`
	Amount       decimal.Decimal `json:"amount"`
	IsSelf       bool            `json:"is_self"`
}

// FeeSplitView is a trip's full allocation.
type FeeSplitView struct {
	TripID      uuid.UUID           `json:"trip_id"`
	TotalFee    decimal.Decimal     `json:"total_fee"`
	TotalWeight decimal.Decimal     `json:"total_weight"`
	Shares      []FeeSplitShareView `json:"shares"`
}

// ExecuteSplitResult returns what the execution wrote.
type ExecuteSplitResult struct {
	Split  FeeSplitView         `json:"split"`
	Ledger []models.LedgerEvent `json:"ledger"`
}

// LedgerList is a cursor page of a guide's ledger rows.
type LedgerList struct {
	Events     []models.LedgerEvent `json:"events"`
	NextCursor string               `json:"next_cursor,omitempty"`
}

// payoutMetadata is persisted with each ledger row so audits can reconstruct
// the allocation inputs without replaying the split.
type payoutMetadata struct {
	TripID     uuid.UUID `json:"trip_id"`
	Role       string    `json:"role"`
	Percentage string    `json:"percentage"`
	TotalFee   string    `json:"total_fee"`
	ExecutedAt time.Time `json:"executed_at"`
}
