package trips

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasfarrell/wavecrest-backend/internal/riskgate"
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

// Clock lets tests pin the departure timestamp.
type Clock func() time.Time

// Service defines trip departure operations.
type Service interface {
	RiskCheck(ctx context.Context, input riskgate.Input) riskgate.Assessment
	Start(ctx context.Context, input StartTripInput) (*StartTripResult, error)
}

// StartTripInput carries the departure call with the observed conditions.
type StartTripInput struct {
	TripID        uuid.UUID
	Conditions    riskgate.Input
	Override      bool
	ActorUserID   uuid.UUID
	ActorBranchID *uuid.UUID
	ActorRole     enums.ActorRole
}

// StartTripResult returns the started trip plus the gate verdict that let it
// depart, so callers can surface the recorded risk.
type StartTripResult struct {
	Trip       *models.Trip        `json:"trip"`
	Assessment riskgate.Assessment `json:"assessment"`
	Overridden bool                `json:"overridden"`
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	policy riskgate.Policy
	now    Clock
}

// NewService builds the trips service with the required dependencies.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, policy riskgate.Policy, now Clock) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("trips repository required")
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
	return &service{repo: repo, tx: tx, outbox: ob, policy: policy, now: now}, nil
}

// RiskCheck evaluates conditions without touching any trip state. Dispatchers
// use it to preview the gate before committing to a departure.
func (s *service) RiskCheck(ctx context.Context, input riskgate.Input) riskgate.Assessment {
	return s.policy.Evaluate(input)
}

func (s *service) Start(ctx context.Context, input StartTripInput) (*StartTripResult, error) {
	if input.TripID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Override && !canOverride(input.ActorRole) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "safety override requires an admin role")
	}

	var result *StartTripResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		trip, err := repo.FindTrip(ctx, input.TripID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip")
		}
		if !actorCoversBranch(input.ActorRole, input.ActorBranchID, trip.BranchID) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
		}
		if trip.Status != enums.TripStatusScheduled {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("trip cannot start from status %s", trip.Status))
		}

		if _, err := repo.FindConfirmedLead(ctx, trip.ID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "trip has no confirmed lead guide")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check lead guide")
		}

		assessment := s.policy.Evaluate(input.Conditions)
		overridden := false
		if assessment.Blocked {
			if !input.Override {
				return pkgerrors.New(pkgerrors.CodeSafetyBlock, assessment.Advisory).
					WithDetails(assessment)
			}
			overridden = true
		}

		now := s.now()
		updates := map[string]any{
			"status":     enums.TripStatusStarted,
			"started_at": now,
		}
		if overridden {
			updates["safety_override"] = true
			updates["safety_override_by"] = input.ActorUserID
		}
		rows, err := repo.UpdateStatusIf(ctx, trip.ID, enums.TripStatusScheduled, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "start trip")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "trip was started concurrently")
		}

		trip.Status = enums.TripStatusStarted
		trip.StartedAt = &now
		if overridden {
			trip.SafetyOverride = true
			overrideBy := input.ActorUserID
			trip.SafetyOverrideBy = &overrideBy
		}

		actor := &outbox.ActorRef{
			UserID:   input.ActorUserID,
			BranchID: input.ActorBranchID,
			Role:     string(input.ActorRole),
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventTripStarted,
			AggregateType: enums.AggregateTrip,
			AggregateID:   trip.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.TripStartedEvent{
				TripID:    trip.ID,
				BranchID:  trip.BranchID,
				RiskScore: assessment.Score,
				RiskLevel: assessment.Level,
				StartedAt: now,
			},
		}
		if overridden {
			event.EventType = enums.EventTripStartOverridden
			event.Data = payloads.TripStartOverriddenEvent{
				TripID:       trip.ID,
				BranchID:     trip.BranchID,
				RiskScore:    assessment.Score,
				RiskLevel:    assessment.Level,
				OverriddenBy: input.ActorUserID,
				StartedAt:    now,
			}
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		result = &StartTripResult{Trip: trip, Assessment: assessment, Overridden: overridden}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func canOverride(role enums.ActorRole) bool {
	return role == enums.ActorRoleAdmin || role == enums.ActorRoleBranchAdmin
}

func actorCoversBranch(role enums.ActorRole, actorBranchID *uuid.UUID, branchID uuid.UUID) bool {
	if role == enums.ActorRoleAdmin {
		return true
	}
	return actorBranchID != nil && *actorBranchID == branchID
}
