package assignments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lucasfarrell/wavecrest-backend/pkg/config"
	"github.com/lucasfarrell/wavecrest-backend/pkg/db/models"
	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
	pkgerrors "github.com/lucasfarrell/wavecrest-backend/pkg/errors"
	"github.com/lucasfarrell/wavecrest-backend/pkg/outbox"
	"github.com/lucasfarrell/wavecrest-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Clock lets tests pin the wall-clock the deadline checks read.
type Clock func() time.Time

// Service defines assignment lifecycle operations.
type Service interface {
	AssignGuides(ctx context.Context, input AssignGuidesInput) (*AssignGuidesResult, error)
	Decide(ctx context.Context, input DecideInput) (*models.TripAssignment, error)
	ExpireStale(ctx context.Context, batchSize int) (int, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	cfg    config.AssignmentConfig
	now    Clock
}

// Decision is the action a guide takes on a pending offer.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// AssignGuidesInput captures a batch crew assignment request.
type AssignGuidesInput struct {
	TripID        uuid.UUID
	GuideIDs      []uuid.UUID
	Roles         []enums.CrewRole
	Fees          []decimal.Decimal
	Notes         *string
	ActorUserID   uuid.UUID
	ActorBranchID *uuid.UUID
	ActorRole     enums.ActorRole
}

// AssignGuidesResult returns the created offers plus a count for the response body.
type AssignGuidesResult struct {
	Assignments []models.TripAssignment
	Skipped     int
}

// DecideInput carries a guide's accept/reject call.
type DecideInput struct {
	AssignmentID uuid.UUID
	Decision     Decision
	Reason       string
	ActorUserID  uuid.UUID
	ActorGuideID uuid.UUID
	ActorRole    enums.ActorRole
}

// NewService builds the assignment service with the required dependencies.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, cfg config.AssignmentConfig, now Clock) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("assignments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: ob,
		cfg:    cfg,
		now:    now,
	}, nil
}

func (s *service) AssignGuides(ctx context.Context, input AssignGuidesInput) (*AssignGuidesResult, error) {
	if input.TripID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip id required")
	}
	if len(input.GuideIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one guide id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	roles, err := deriveRoles(input.GuideIDs, input.Roles)
	if err != nil {
		return nil, err
	}
	if len(input.Fees) > 0 && len(input.Fees) != len(input.GuideIDs) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fees must match guide ids one to one")
	}

	var result *AssignGuidesResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		trip, err := repo.FindTrip(ctx, input.TripID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip")
		}
		// Branch mismatch reads the same as a missing trip so tenants cannot
		// enumerate each other's data.
		if !actorCoversBranch(input.ActorRole, input.ActorBranchID, trip.BranchID) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
		}

		guides, err := repo.FindGuides(ctx, input.GuideIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load guides")
		}
		guidesByID := make(map[uuid.UUID]models.Guide, len(guides))
		for _, guide := range guides {
			guidesByID[guide.ID] = guide
		}
		for _, id := range input.GuideIDs {
			guide, ok := guidesByID[id]
			if !ok || guide.BranchID != trip.BranchID {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("guide %s not found", id))
			}
			if !guide.Active {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("guide %s is inactive", id))
			}
		}

		existing, err := repo.FindAssignmentsByTrip(ctx, input.TripID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load existing assignments")
		}
		activeGuides := make(map[uuid.UUID]bool)
		hasActiveLead := false
		for _, row := range existing {
			if row.Status.IsActive() {
				activeGuides[row.GuideID] = true
				if row.Role == enums.CrewRoleLead {
					hasActiveLead = true
				}
			}
		}

		deadline := s.now().Add(s.cfg.ConfirmationTTL)
		rows := make([]models.TripAssignment, 0, len(input.GuideIDs))
		skipped := 0
		for i, guideID := range input.GuideIDs {
			if activeGuides[guideID] {
				skipped++
				continue
			}
			role := roles[i]
			if role == enums.CrewRoleLead {
				if hasActiveLead {
					return pkgerrors.New(pkgerrors.CodeStateConflict, "trip already has a lead guide")
				}
				hasActiveLead = true
			}
			fee := decimal.Zero
			if len(input.Fees) > 0 {
				fee = input.Fees[i]
			}
			deadlineCopy := deadline
			rows = append(rows, models.TripAssignment{
				TripID:               trip.ID,
				GuideID:              guideID,
				BranchID:             trip.BranchID,
				Role:                 role,
				Status:               enums.AssignmentStatusPendingConfirmation,
				ConfirmationDeadline: &deadlineCopy,
				FeeAmount:            fee,
				AssignedBy:           input.ActorUserID,
				Notes:                input.Notes,
			})
		}

		if len(rows) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no new guides to assign")
		}

		created, err := repo.CreateAssignments(ctx, rows)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create assignments")
		}

		ids := make([]uuid.UUID, 0, len(created))
		for _, row := range created {
			ids = append(ids, row.ID)
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventAssignmentCreated,
			AggregateType: enums.AggregateTrip,
			AggregateID:   trip.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorBranchID, input.ActorRole),
			Data: payloads.AssignmentCreatedEvent{
				TripID:        trip.ID,
				BranchID:      trip.BranchID,
				AssignmentIDs: ids,
				Deadline:      deadline,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		result = &AssignGuidesResult{Assignments: created, Skipped: skipped}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Decide(ctx context.Context, input DecideInput) (*models.TripAssignment, error) {
	if input.AssignmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorGuideID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "guide context missing")
	}

	targetStatus, err := mapDecisionToStatus(input.Decision)
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(input.Reason)
	if targetStatus == enums.AssignmentStatusRejected && len(reason) < s.cfg.MinRejectionReasonLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("rejection reason must be at least %d characters", s.cfg.MinRejectionReasonLen))
	}

	var updated *models.TripAssignment
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		assignment, err := repo.FindAssignment(ctx, input.AssignmentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
		}
		if assignment.GuideID != input.ActorGuideID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "assignment does not belong to guide")
		}
		if assignment.Status != enums.AssignmentStatusPendingConfirmation {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "assignment already decided")
		}
		now := s.now()
		if assignment.ConfirmationDeadline != nil && now.After(*assignment.ConfirmationDeadline) {
			// The row stays pending; only the expiry sweep moves it to expired.
			return pkgerrors.New(pkgerrors.CodeStateConflict, "confirmation deadline passed")
		}

		updates := map[string]any{"status": targetStatus}
		var eventType enums.OutboxEventType
		if targetStatus == enums.AssignmentStatusConfirmed {
			updates["confirmed_at"] = now
			eventType = enums.EventAssignmentConfirmed
		} else {
			updates["rejected_at"] = now
			updates["rejection_reason"] = reason
			eventType = enums.EventAssignmentRejected
		}

		rows, err := repo.UpdateStatusIf(ctx, assignment.ID, enums.AssignmentStatusPendingConfirmation, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update assignment status")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "assignment was decided concurrently")
		}

		assignment.Status = targetStatus
		if targetStatus == enums.AssignmentStatusConfirmed {
			assignment.ConfirmedAt = &now
		} else {
			assignment.RejectedAt = &now
			assignment.RejectionReason = &reason
		}

		event := outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateTripAssignment,
			AggregateID:   assignment.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, nil, input.ActorRole),
			Data: payloads.AssignmentDecisionEvent{
				AssignmentID: assignment.ID,
				TripID:       assignment.TripID,
				BranchID:     assignment.BranchID,
				GuideID:      assignment.GuideID,
				Role:         assignment.Role,
				Status:       targetStatus,
				Reason:       reason,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		updated = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ExpireStale moves overdue pending offers to expired. Each row is guarded by
// the same conditional write the guide decision path uses, so a confirm that
// lands mid-sweep wins and the sweep skips that row.
func (s *service) ExpireStale(ctx context.Context, batchSize int) (int, error) {
	now := s.now()
	expired := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		stale, err := repo.FindStalePending(ctx, now, batchSize)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stale assignments")
		}

		for _, row := range stale {
			rows, err := repo.UpdateStatusIf(ctx, row.ID, enums.AssignmentStatusPendingConfirmation, map[string]any{
				"status": enums.AssignmentStatusExpired,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire assignment")
			}
			if rows == 0 {
				continue
			}

			deadline := now
			if row.ConfirmationDeadline != nil {
				deadline = *row.ConfirmationDeadline
			}
			event := outbox.DomainEvent{
				EventType:     enums.EventAssignmentExpired,
				AggregateType: enums.AggregateTripAssignment,
				AggregateID:   row.ID,
				Version:       1,
				Data: payloads.AssignmentExpiredEvent{
					AssignmentID: row.ID,
					TripID:       row.TripID,
					BranchID:     row.BranchID,
					GuideID:      row.GuideID,
					DeadlineAt:   deadline,
					ExpiredAt:    now,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}

func deriveRoles(guideIDs []uuid.UUID, roles []enums.CrewRole) ([]enums.CrewRole, error) {
	if len(roles) == 0 {
		derived := make([]enums.CrewRole, len(guideIDs))
		for i := range guideIDs {
			if i == 0 {
				derived[i] = enums.CrewRoleLead
			} else {
				derived[i] = enums.CrewRoleSupport
			}
		}
		return derived, nil
	}
	if len(roles) != len(guideIDs) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "roles must match guide ids one to one")
	}
	leads := 0
	for _, role := range roles {
		if !role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid crew role %q", role))
		}
		if role == enums.CrewRoleLead {
			leads++
		}
	}
	if leads > 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only one lead role allowed per request")
	}
	return roles, nil
}

func mapDecisionToStatus(decision Decision) (enums.AssignmentStatus, error) {
	switch decision {
	case DecisionAccept:
		return enums.AssignmentStatusConfirmed, nil
	case DecisionReject:
		return enums.AssignmentStatusRejected, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "decision must be accept or reject")
	}
}

func actorCoversBranch(role enums.ActorRole, actorBranchID *uuid.UUID, branchID uuid.UUID) bool {
	if role == enums.ActorRoleAdmin {
		return true
	}
	return actorBranchID != nil && *actorBranchID == branchID
}

func buildActor(userID uuid.UUID, branchID *uuid.UUID, role enums.ActorRole) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID:   userID,
		BranchID: branchID,
		Role:     string(role),
	}
}
