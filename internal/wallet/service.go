package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasfarrell/wavecrest-backend/internal/feesplit"
	"github.com/lucasfarrell/wavecrest-backend/pkg/db/models"
	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
	pkgerrors "github.com/lucasfarrell/wavecrest-backend/pkg/errors"
	"github.com/lucasfarrell/wavecrest-backend/pkg/outbox"
	"github.com/lucasfarrell/wavecrest-backend/pkg/outbox/payloads"
	"github.com/lucasfarrell/wavecrest-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Clock lets tests pin the payout timestamp.
type Clock func() time.Time

// Service defines fee allocation and ledger operations.
type Service interface {
	PreviewSplit(ctx context.Context, input SplitInput) (*FeeSplitView, error)
	ExecuteSplit(ctx context.Context, input SplitInput) (*ExecuteSplitResult, error)
	ListGuideLedger(ctx context.Context, guideID uuid.UUID, params pagination.Params) (*LedgerList, error)
}

// SplitInput scopes a fee split call to a trip and its caller. ActorGuideID
// is set for guide-scoped tokens and drives the is_self share flag.
type SplitInput struct {
	TripID        uuid.UUID
	ActorUserID   uuid.UUID
	ActorBranchID *uuid.UUID
	ActorGuideID  *uuid.UUID
	ActorRole     enums.ActorRole
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	weights feesplit.Weights
	now     Clock
}

// NewService builds the wallet service with the required dependencies.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, weights feesplit.Weights, now Clock) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if len(weights) == 0 {
		weights = feesplit.DefaultWeights()
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, tx: tx, outbox: ob, weights: weights, now: now}, nil
}

// PreviewSplit computes the allocation without writing anything. Admins see
// any trip in their branch; a guide sees the split only for trips where they
// hold a confirmed assignment, with their own row flagged.
func (s *service) PreviewSplit(ctx context.Context, input SplitInput) (*FeeSplitView, error) {
	trip, entries, err := s.loadSplitInputs(ctx, s.repo, input, true)
	if err != nil {
		return nil, err
	}
	view := buildSplitView(trip.ID, feesplit.Split(entries, s.weights), input.ActorGuideID)
	return &view, nil
}

// ExecuteSplit materializes the allocation as ledger rows. A trip pays out at
// most once; re-running is a conflict, never a double payout.
func (s *service) ExecuteSplit(ctx context.Context, input SplitInput) (*ExecuteSplitResult, error) {
	var result *ExecuteSplitResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		trip, entries, err := s.loadSplitInputs(ctx, repo, input, false)
		if err != nil {
			return err
		}
		if trip.Status != enums.TripStatusStarted && trip.Status != enums.TripStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("fee split requires a started trip, status is %s", trip.Status))
		}

		existing, err := repo.CountPayouts(ctx, trip.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check prior payouts")
		}
		if existing > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "fee split already executed for this trip")
		}

		split := feesplit.Split(entries, s.weights)
		now := s.now()

		rows := make([]models.LedgerEvent, 0, len(split.Shares))
		eventShares := make([]payloads.FeeSplitShare, 0, len(split.Shares))
		for _, share := range split.Shares {
			meta, err := json.Marshal(payoutMetadata{
				TripID:     trip.ID,
				Role:       string(share.Role),
				Percentage: share.Percentage.String(),
				TotalFee:   split.TotalFee.String(),
				ExecutedAt: now,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode payout metadata")
			}
			rows = append(rows, models.LedgerEvent{
				TripID:      trip.ID,
				GuideID:     share.GuideID,
				BranchID:    trip.BranchID,
				ActorUserID: input.ActorUserID,
				Type:        enums.LedgerEventGuideFeePayout,
				Amount:      share.Amount,
				Metadata:    meta,
			})
			eventShares = append(eventShares, payloads.FeeSplitShare{
				GuideID:    share.GuideID,
				Role:       share.Role,
				Amount:     share.Amount.String(),
				Percentage: share.Percentage.String(),
			})
		}

		created, err := repo.CreateLedgerEvents(ctx, rows)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ledger events")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventFeeSplitExecuted,
			AggregateType: enums.AggregateTrip,
			AggregateID:   trip.ID,
			Version:       1,
			Actor: &outbox.ActorRef{
				UserID:   input.ActorUserID,
				BranchID: input.ActorBranchID,
				Role:     string(input.ActorRole),
			},
			Data: payloads.FeeSplitExecutedEvent{
				TripID:      trip.ID,
				BranchID:    trip.BranchID,
				TotalAmount: split.TotalFee.String(),
				Shares:      eventShares,
				ExecutedAt:  now,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		result = &ExecuteSplitResult{
			Split:  buildSplitView(trip.ID, split, input.ActorGuideID),
			Ledger: created,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ListGuideLedger(ctx context.Context, guideID uuid.UUID, params pagination.Params) (*LedgerList, error) {
	if guideID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "guide context missing")
	}
	list, err := s.repo.ListGuideLedger(ctx, guideID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger events")
	}
	return list, nil
}

func (s *service) loadSplitInputs(ctx context.Context, repo Repository, input SplitInput, allowAssignedGuide bool) (*models.Trip, []feesplit.Entry, error) {
	if input.TripID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "trip id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	trip, err := repo.FindTrip(ctx, input.TripID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip")
	}

	assignments, err := repo.FindConfirmedAssignments(ctx, trip.ID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load confirmed assignments")
	}

	if !actorCoversBranch(input.ActorRole, input.ActorBranchID, trip.BranchID) &&
		!(allowAssignedGuide && guideHoldsAssignment(input.ActorGuideID, assignments)) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
	}

	if len(assignments) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "trip has no confirmed crew to pay")
	}

	entries := make([]feesplit.Entry, 0, len(assignments))
	for _, row := range assignments {
		entries = append(entries, feesplit.Entry{
			AssignmentID: row.ID,
			GuideID:      row.GuideID,
			Role:         row.Role,
			FeeAmount:    row.FeeAmount,
		})
	}
	return trip, entries, nil
}

func buildSplitView(tripID uuid.UUID, split feesplit.Result, actorGuideID *uuid.UUID) FeeSplitView {
	view := FeeSplitView{
		TripID:      tripID,
		TotalFee:    split.TotalFee,
		TotalWeight: split.TotalWeight,
		Shares:      make([]FeeSplitShareView, 0, len(split.Shares)),
	}
	for _, share := range split.Shares {
		view.Shares = append(view.Shares, FeeSplitShareView{
			AssignmentID: share.AssignmentID,
			GuideID:      share.GuideID,
			Role:         share.Role,
			FeeAmount:    share.FeeAmount,
			Percentage:   share.Percentage,
			Amount:       share.Amount,
			IsSelf:       actorGuideID != nil && share.GuideID == *actorGuideID,
		})
	}
	return view
}

func guideHoldsAssignment(guideID *uuid.UUID, assignments []models.TripAssignment) bool {
	if guideID == nil {
		return false
	}
	for _, row := range assignments {
		if row.GuideID == *guideID {
			return true
		}
	}
	return false
}

func actorCoversBranch(role enums.ActorRole, actorBranchID *uuid.UUID, branchID uuid.UUID) bool {
	if role == enums.ActorRoleAdmin {
		return true
	}
	return actorBranchID != nil && *actorBranchID == branchID
}
