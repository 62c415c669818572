package feesplit

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
)

// Entry is one assignment row fed into the allocation.
type Entry struct {
	AssignmentID uuid.UUID
	GuideID      uuid.UUID
	Role         enums.CrewRole
	FeeAmount    decimal.Decimal
}

// Share is one guide's slice of the trip fee.
type Share struct {
	AssignmentID uuid.UUID
	GuideID      uuid.UUID
	Role         enums.CrewRole
	FeeAmount    decimal.Decimal
	Percentage   decimal.Decimal
	Amount       decimal.Decimal
}

// Result carries the full allocation for a trip.
type Result struct {
	TotalFee    decimal.Decimal
	TotalWeight decimal.Decimal
	Shares      []Share
}

// Weights maps crew roles to their allocation weight. Roles absent from the
// table weigh zero.
type Weights map[enums.CrewRole]decimal.Decimal

// DefaultWeights returns the production role-weight table.
func DefaultWeights() Weights {
	return Weights{
		enums.CrewRoleLead:         decimal.RequireFromString("0.6"),
		enums.CrewRoleSupport:      decimal.RequireFromString("0.3"),
		enums.CrewRoleAssistant:    decimal.RequireFromString("0.3"),
		enums.CrewRoleDriver:       decimal.RequireFromString("0.1"),
		enums.CrewRolePhotographer: decimal.RequireFromString("0.1"),
	}
}

// ParseRoleWeights converts the configured role:weight pairs into a typed table.
func ParseRoleWeights(raw map[string]string) (Weights, error) {
	weights := make(Weights, len(raw))
	for role, value := range raw {
		parsedRole, err := enums.ParseCrewRole(role)
		if err != nil {
			return nil, fmt.Errorf("role weight table: %w", err)
		}
		weight, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("weight for role %q: %w", role, err)
		}
		if weight.IsNegative() {
			return nil, fmt.Errorf("weight for role %q must not be negative", role)
		}
		weights[parsedRole] = weight
	}
	return weights, nil
}

// Weight returns the role's weight, zero when unlisted.
func (w Weights) Weight(role enums.CrewRole) decimal.Decimal {
	if weight, ok := w[role]; ok {
		return weight
	}
	return decimal.Zero
}

// Split divides the summed fee across entries proportionally to role weight.
// Per-share rounding is independent; the total may drift from round(totalFee)
// by at most len(entries)-1 whole units and is not corrected afterwards.
// When every role weighs zero the entries keep their own recorded fees.
func Split(entries []Entry, weights Weights) Result {
	totalFee := decimal.Zero
	totalWeight := decimal.Zero
	for _, entry := range entries {
		totalFee = totalFee.Add(entry.FeeAmount)
		totalWeight = totalWeight.Add(weights.Weight(entry.Role))
	}

	result := Result{
		TotalFee:    totalFee,
		TotalWeight: totalWeight,
		Shares:      make([]Share, 0, len(entries)),
	}

	hundred := decimal.NewFromInt(100)
	for _, entry := range entries {
		share := Share{
			AssignmentID: entry.AssignmentID,
			GuideID:      entry.GuideID,
			Role:         entry.Role,
			FeeAmount:    entry.FeeAmount,
		}
		if totalWeight.IsPositive() {
			ratio := weights.Weight(entry.Role).Div(totalWeight)
			share.Percentage = ratio.Mul(hundred).Round(2)
			share.Amount = ratio.Mul(totalFee).Round(0)
		} else {
			share.Amount = entry.FeeAmount
			if totalFee.IsPositive() {
				share.Percentage = entry.FeeAmount.Div(totalFee).Mul(hundred).Round(2)
			} else {
				share.Percentage = decimal.Zero
			}
		}
		result.Shares = append(result.Shares, share)
	}

	return result
}
