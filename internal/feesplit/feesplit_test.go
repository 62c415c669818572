package feesplit

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
)

func TestSplitProportionalByRoleWeight(t *testing.T) {
	entries := []Entry{
		{AssignmentID: uuid.New(), GuideID: uuid.New(), Role: enums.CrewRoleLead, FeeAmount: decimal.NewFromInt(600000)},
		{AssignmentID: uuid.New(), GuideID: uuid.New(), Role: enums.CrewRoleSupport, FeeAmount: decimal.NewFromInt(300000)},
		{AssignmentID: uuid.New(), GuideID: uuid.New(), Role: enums.CrewRoleDriver, FeeAmount: decimal.NewFromInt(100000)},
	}

	result := Split(entries, DefaultWeights())

	if !result.TotalFee.Equal(decimal.NewFromInt(1000000)) {
		t.Fatalf("expected total fee 1000000, got %s", result.TotalFee)
	}
	if !result.TotalWeight.Equal(decimal.RequireFromString("1.0")) {
		t.Fatalf("expected total weight 1.0, got %s", result.TotalWeight)
	}

	wantAmounts := []int64{600000, 300000, 100000}
	wantPercents := []string{"60", "30", "10"}
	for i, share := range result.Shares {
		if !share.Amount.Equal(decimal.NewFromInt(wantAmounts[i])) {
			t.Errorf("share %d: expected amount %d, got %s", i, wantAmounts[i], share.Amount)
		}
		if !share.Percentage.Equal(decimal.RequireFromString(wantPercents[i])) {
			t.Errorf("share %d: expected percentage %s, got %s", i, wantPercents[i], share.Percentage)
		}
	}
}

func TestSplitSumStaysWithinRoundingTolerance(t *testing.T) {
	entries := []Entry{
		{GuideID: uuid.New(), Role: enums.CrewRoleLead, FeeAmount: decimal.NewFromInt(100)},
		{GuideID: uuid.New(), Role: enums.CrewRoleSupport, FeeAmount: decimal.NewFromInt(100)},
		{GuideID: uuid.New(), Role: enums.CrewRoleAssistant, FeeAmount: decimal.NewFromInt(100)},
	}

	result := Split(entries, DefaultWeights())

	sum := decimal.Zero
	for _, share := range result.Shares {
		sum = sum.Add(share.Amount)
	}
	drift := sum.Sub(result.TotalFee.Round(0)).Abs()
	tolerance := decimal.NewFromInt(int64(len(entries) - 1))
	if drift.GreaterThan(tolerance) {
		t.Fatalf("split drift %s exceeds tolerance %s", drift, tolerance)
	}
}

func TestSplitFallsBackToRecordedFees(t *testing.T) {
	entries := []Entry{
		{GuideID: uuid.New(), Role: enums.CrewRoleLead, FeeAmount: decimal.NewFromInt(70000)},
		{GuideID: uuid.New(), Role: enums.CrewRoleSupport, FeeAmount: decimal.NewFromInt(30000)},
	}

	// Empty table: every role weighs zero, entries keep their own fees.
	result := Split(entries, Weights{})

	if !result.TotalWeight.IsZero() {
		t.Fatalf("expected zero total weight, got %s", result.TotalWeight)
	}
	if !result.Shares[0].Amount.Equal(decimal.NewFromInt(70000)) {
		t.Fatalf("expected fallback to own fee, got %s", result.Shares[0].Amount)
	}
	if !result.Shares[1].Amount.Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("expected fallback to own fee, got %s", result.Shares[1].Amount)
	}
	if !result.Shares[0].Percentage.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected 70 percent, got %s", result.Shares[0].Percentage)
	}
}

func TestSplitEmptyEntries(t *testing.T) {
	result := Split(nil, DefaultWeights())
	if len(result.Shares) != 0 {
		t.Fatalf("expected no shares, got %d", len(result.Shares))
	}
	if !result.TotalFee.IsZero() {
		t.Fatalf("expected zero total fee, got %s", result.TotalFee)
	}
}

func TestParseRoleWeights(t *testing.T) {
	weights, err := ParseRoleWeights(map[string]string{
		"lead":    "0.5",
		"support": "0.25",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !weights.Weight(enums.CrewRoleLead).Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("unexpected lead weight %s", weights.Weight(enums.CrewRoleLead))
	}
	if !weights.Weight(enums.CrewRolePhotographer).IsZero() {
		t.Fatalf("unlisted role must weigh zero")
	}
}

func TestParseRoleWeightsRejectsBadInput(t *testing.T) {
	if _, err := ParseRoleWeights(map[string]string{"captain": "0.5"}); err == nil {
		t.Fatal("expected invalid role error")
	}
	if _, err := ParseRoleWeights(map[string]string{"lead": "abc"}); err == nil {
		t.Fatal("expected invalid weight error")
	}
	if _, err := ParseRoleWeights(map[string]string{"lead": "-0.5"}); err == nil {
		t.Fatal("expected negative weight error")
	}
}
