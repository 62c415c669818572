package enums

import "fmt"

// TripStatus tracks the coarse lifecycle of a scheduled trip.
type TripStatus string

const (
	TripStatusScheduled TripStatus = "scheduled"
	TripStatusStarted   TripStatus = "started"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCanceled  TripStatus = "canceled"
)

var validTripStatuses = []TripStatus{
	TripStatusScheduled,
	TripStatusStarted,
	TripStatusCompleted,
	TripStatusCanceled,
}

// String implements fmt.Stringer.
func (t TripStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TripStatus.
func (t TripStatus) IsValid() bool {
	for _, candidate := range validTripStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTripStatus converts raw input into a TripStatus.
func ParseTripStatus(value string) (TripStatus, error) {
	for _, candidate := range validTripStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid trip status %q", value)
}
