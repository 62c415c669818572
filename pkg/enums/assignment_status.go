package enums

import "fmt"

// AssignmentStatus tracks the lifecycle of a trip crew assignment.
type AssignmentStatus string

const (
	AssignmentStatusPendingConfirmation AssignmentStatus = "pending_confirmation"
	AssignmentStatusConfirmed           AssignmentStatus = "confirmed"
	AssignmentStatusRejected            AssignmentStatus = "rejected"
	AssignmentStatusExpired             AssignmentStatus = "expired"
)

var validAssignmentStatuses = []AssignmentStatus{
	AssignmentStatusPendingConfirmation,
	AssignmentStatusConfirmed,
	AssignmentStatusRejected,
	AssignmentStatusExpired,
}

// String implements fmt.Stringer.
func (a AssignmentStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AssignmentStatus.
func (a AssignmentStatus) IsValid() bool {
	for _, candidate := range validAssignmentStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (a AssignmentStatus) IsTerminal() bool {
	switch a {
	case AssignmentStatusConfirmed, AssignmentStatusRejected, AssignmentStatusExpired:
		return true
	default:
		return false
	}
}

// IsActive reports whether the assignment still counts toward the trip crew.
// Rejected and expired rows are kept for audit but no longer hold a slot.
func (a AssignmentStatus) IsActive() bool {
	return a == AssignmentStatusPendingConfirmation || a == AssignmentStatusConfirmed
}

// ParseAssignmentStatus converts raw input into an AssignmentStatus.
func ParseAssignmentStatus(value string) (AssignmentStatus, error) {
	for _, candidate := range validAssignmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment status %q", value)
}
