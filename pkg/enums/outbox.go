package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateTrip           OutboxAggregateType = "trip"
	AggregateTripAssignment OutboxAggregateType = "trip_assignment"
	AggregateSwapRequest    OutboxAggregateType = "swap_request"
	AggregateLedgerEvent    OutboxAggregateType = "ledger_event"
	AggregateNotification   OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateTrip,
	AggregateTripAssignment,
	AggregateSwapRequest,
	AggregateLedgerEvent,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventAssignmentCreated   OutboxEventType = "assignment_created"
	EventAssignmentConfirmed OutboxEventType = "assignment_confirmed"
	EventAssignmentRejected  OutboxEventType = "assignment_rejected"
	EventAssignmentExpired   OutboxEventType = "assignment_expired"
	EventSwapRequested       OutboxEventType = "swap_requested"
	EventTripStarted         OutboxEventType = "trip_started"
	EventTripStartOverridden OutboxEventType = "trip_start_overridden"
	EventFeeSplitExecuted    OutboxEventType = "fee_split_executed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventAssignmentCreated,
	EventAssignmentConfirmed,
	EventAssignmentRejected,
	EventAssignmentExpired,
	EventSwapRequested,
	EventTripStarted,
	EventTripStartOverridden,
	EventFeeSplitExecuted,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
