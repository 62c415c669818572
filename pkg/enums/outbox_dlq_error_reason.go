package enums

import "fmt"

// OutboxDLQErrorReason categorizes why an outbox event was dead-lettered.
type OutboxDLQErrorReason string

const (
	DLQReasonMaxAttempts     OutboxDLQErrorReason = "max_attempts_exceeded"
	DLQReasonUnroutableEvent OutboxDLQErrorReason = "unroutable_event"
	DLQReasonMalformedPayload OutboxDLQErrorReason = "malformed_payload"
)

var validDLQErrorReasons = []OutboxDLQErrorReason{
	DLQReasonMaxAttempts,
	DLQReasonUnroutableEvent,
	DLQReasonMalformedPayload,
}

// IsValid reports whether the value matches the canonical enum.
func (r OutboxDLQErrorReason) IsValid() bool {
	for _, candidate := range validDLQErrorReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseOutboxDLQErrorReason converts raw input into OutboxDLQErrorReason.
func ParseOutboxDLQErrorReason(value string) (OutboxDLQErrorReason, error) {
	for _, candidate := range validDLQErrorReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dlq error reason %q", value)
}
