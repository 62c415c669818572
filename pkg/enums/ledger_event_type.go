package enums

import "fmt"

// LedgerEventType maps to the ledger_event_type enum in Postgres.
type LedgerEventType string

const (
	LedgerEventGuideFeePayout LedgerEventType = "guide_fee_payout"
	LedgerEventFeeAdjustment  LedgerEventType = "fee_adjustment"
)

var validLedgerEventTypes = []LedgerEventType{
	LedgerEventGuideFeePayout,
	LedgerEventFeeAdjustment,
}

// IsValid reports whether the value matches the canonical enum.
func (l LedgerEventType) IsValid() bool {
	for _, candidate := range validLedgerEventTypes {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLedgerEventType converts raw input into a LedgerEventType.
func ParseLedgerEventType(value string) (LedgerEventType, error) {
	for _, candidate := range validLedgerEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger event type %q", value)
}
