package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
)

// AssignmentCreatedEvent signals a batch of crew offers created for a trip.
type AssignmentCreatedEvent struct {
	TripID        uuid.UUID   `json:"trip_id"`
	BranchID      uuid.UUID   `json:"branch_id"`
	AssignmentIDs []uuid.UUID `json:"assignment_ids"`
	Deadline      time.Time   `json:"deadline"`
}

// AssignmentDecisionEvent is emitted when a guide confirms or rejects an offer.
type AssignmentDecisionEvent struct {
	AssignmentID uuid.UUID              `json:"assignment_id"`
	TripID       uuid.UUID              `json:"trip_id"`
	BranchID     uuid.UUID              `json:"branch_id"`
	GuideID      uuid.UUID              `json:"guide_id"`
	Role         enums.CrewRole         `json:"role"`
	Status       enums.AssignmentStatus `json:"status"`
	Reason       string                 `json:"reason,omitempty"`
}

// AssignmentExpiredEvent describes the payload when pending offers lapse.
type AssignmentExpiredEvent struct {
	AssignmentID uuid.UUID `json:"assignment_id"`
	TripID       uuid.UUID `json:"trip_id"`
	BranchID     uuid.UUID `json:"branch_id"`
	GuideID      uuid.UUID `json:"guide_id"`
	DeadlineAt   time.Time `json:"deadline_at"`
	ExpiredAt    time.Time `json:"expired_at"`
}

// SwapRequestedEvent tells downstream systems a guide asked to hand off a trip.
type SwapRequestedEvent struct {
	SwapRequestID uuid.UUID `json:"swap_request_id"`
	TripID        uuid.UUID `json:"trip_id"`
	BranchID      uuid.UUID `json:"branch_id"`
	FromGuideID   uuid.UUID `json:"from_guide_id"`
	ToGuideID     uuid.UUID `json:"to_guide_id"`
	Reason        string    `json:"reason,omitempty"`
}

// TripStartedEvent surfaces the safety evaluation recorded at departure.
type TripStartedEvent struct {
	TripID    uuid.UUID       `json:"trip_id"`
	BranchID  uuid.UUID       `json:"branch_id"`
	RiskScore int             `json:"risk_score"`
	RiskLevel enums.RiskLevel `json:"risk_level"`
	StartedAt time.Time       `json:"started_at"`
}

// TripStartOverriddenEvent is emitted when an admin forces departure past a block.
type TripStartOverriddenEvent struct {
	TripID       uuid.UUID       `json:"trip_id"`
	BranchID     uuid.UUID       `json:"branch_id"`
	RiskScore    int             `json:"risk_score"`
	RiskLevel    enums.RiskLevel `json:"risk_level"`
	OverriddenBy uuid.UUID       `json:"overridden_by"`
	StartedAt    time.Time       `json:"started_at"`
}

// FeeSplitShare carries one guide's slice of an executed split.
type FeeSplitShare struct {
	GuideID    uuid.UUID      `json:"guide_id"`
	Role       enums.CrewRole `json:"role"`
	Amount     string         `json:"amount"`
	Percentage string         `json:"percentage"`
}

// FeeSplitExecutedEvent is emitted when a trip's guide fees are paid out.
type FeeSplitExecutedEvent struct {
	TripID      uuid.UUID       `json:"trip_id"`
	BranchID    uuid.UUID       `json:"branch_id"`
	TotalAmount string          `json:"total_amount"`
	Shares      []FeeSplitShare `json:"shares"`
	ExecutedAt  time.Time       `json:"executed_at"`
}
