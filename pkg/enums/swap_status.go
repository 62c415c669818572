package enums

import "fmt"

// SwapStatus tracks the lifecycle of a shift swap request.
type SwapStatus string

const (
	SwapStatusPending  SwapStatus = "pending"
	SwapStatusApproved SwapStatus = "approved"
	SwapStatusRejected SwapStatus = "rejected"
)

var validSwapStatuses = []SwapStatus{
	SwapStatusPending,
	SwapStatusApproved,
	SwapStatusRejected,
}

// String implements fmt.Stringer.
func (s SwapStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SwapStatus.
func (s SwapStatus) IsValid() bool {
	for _, candidate := range validSwapStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSwapStatus converts raw input into a SwapStatus.
func ParseSwapStatus(value string) (SwapStatus, error) {
	for _, candidate := range validSwapStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid swap status %q", value)
}
