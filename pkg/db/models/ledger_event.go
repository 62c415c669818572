package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
)

// LedgerEvent records an immutable money lifecycle event for a guide's share
// of a trip fee. Rows are append-only; corrections land as new adjustments.
type LedgerEvent struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TripID      uuid.UUID             `gorm:"column:trip_id;type:uuid;not null"`
	GuideID     uuid.UUID             `gorm:"column:guide_id;type:uuid;not null"`
	BranchID    uuid.UUID             `gorm:"column:branch_id;type:uuid;not null"`
	ActorUserID uuid.UUID             `gorm:"column:actor_user_id;type:uuid;not null"`
	Type        enums.LedgerEventType `gorm:"column:type;type:ledger_event_type_enum;not null"`
	Amount      decimal.Decimal       `gorm:"column:amount;type:numeric(14,2);not null"`
	Metadata    json.RawMessage       `gorm:"column:metadata;type:jsonb"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}
