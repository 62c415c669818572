package swaps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

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

// createLimiter throttles swap request creation per guide. Satisfied by
// the redis client; nil disables the limit.
type createLimiter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	CounterKey(name string) string
}

const (
	// createLimit caps how many swap requests one guide may open per window.
	createLimit  = 10
	createWindow = time.Hour
)

// Service defines shift swap operations.
type Service interface {
	Create(ctx context.Context, input CreateSwapInput) (*models.ShiftSwapRequest, error)
	ListMine(ctx context.Context, input ListSwapsInput) (*SwapList, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	limiter createLimiter
}

// NewService builds the swaps service. The limiter is optional; workers and
// tests pass nil.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, limiter createLimiter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("swaps repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: ob, limiter: limiter}, nil
}

func (s *service) Create(ctx context.Context, input CreateSwapInput) (*models.ShiftSwapRequest, error) {
	if input.TripID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip id required")
	}
	if strings.TrimSpace(input.TargetEmail) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target guide email required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorGuideID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "guide context missing")
	}
	if err := s.checkCreateLimit(ctx, input.ActorGuideID); err != nil {
		return nil, err
	}

	var created *models.ShiftSwapRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		trip, err := repo.FindTrip(ctx, input.TripID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip")
		}
		if input.ActorBranchID == nil || *input.ActorBranchID != trip.BranchID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
		}

		target, err := repo.FindGuideByEmail(ctx, trip.BranchID, input.TargetEmail)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "target guide not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve target guide")
		}
		if !target.Active {
			return pkgerrors.New(pkgerrors.CodeValidation, "target guide is inactive")
		}
		if target.ID == input.ActorGuideID {
			return pkgerrors.New(pkgerrors.CodeValidation, "cannot swap a trip with yourself")
		}

		if _, err := repo.FindActiveAssignment(ctx, trip.ID, input.ActorGuideID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeValidation, "requester holds no active assignment on this trip")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check requester assignment")
		}

		if _, err := repo.FindPendingSwap(ctx, trip.ID, input.ActorGuideID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "a pending swap request already exists for this trip")
		} else if err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending swap")
		}

		row := &models.ShiftSwapRequest{
			TripID:      trip.ID,
			BranchID:    trip.BranchID,
			FromGuideID: input.ActorGuideID,
			ToGuideID:   target.ID,
			Status:      enums.SwapStatusPending,
			Reason:      input.Reason,
		}
		row, err = repo.CreateSwapRequest(ctx, row)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create swap request")
		}

		reason := ""
		if input.Reason != nil {
			reason = *input.Reason
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventSwapRequested,
			AggregateType: enums.AggregateSwapRequest,
			AggregateID:   row.ID,
			Version:       1,
			Actor: &outbox.ActorRef{
				UserID:   input.ActorUserID,
				BranchID: input.ActorBranchID,
				Role:     string(input.ActorRole),
			},
			Data: payloads.SwapRequestedEvent{
				SwapRequestID: row.ID,
				TripID:        row.TripID,
				BranchID:      row.BranchID,
				FromGuideID:   row.FromGuideID,
				ToGuideID:     row.ToGuideID,
				Reason:        reason,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		created = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// checkCreateLimit enforces the per-guide creation cap. A redis outage must
// not block swap requests, so counter errors are swallowed.
func (s *service) checkCreateLimit(ctx context.Context, guideID uuid.UUID) error {
	if s.limiter == nil {
		return nil
	}
	key := s.limiter.CounterKey("swap-create:" + guideID.String())
	count, err := s.limiter.IncrWithTTL(ctx, key, createWindow)
	if err != nil {
		return nil
	}
	if count > createLimit {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many swap requests; try again later")
	}
	return nil
}

func (s *service) ListMine(ctx context.Context, input ListSwapsInput) (*SwapList, error) {
	if input.GuideID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "guide context missing")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid swap status %q", *input.Status))
	}

	list, err := s.repo.ListForGuide(ctx, input.GuideID, pagination.Params{
		Limit:  input.Limit,
		Cursor: input.Cursor,
	}, input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list swap requests")
	}
	return list, nil
}
