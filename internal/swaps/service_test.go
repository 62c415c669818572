package swaps

import (
	"context"
	"errors"
	"testing"
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

type stubSwapsRepo struct {
	trip        *models.Trip
	guides      map[string]*models.Guide
	assignment  *models.TripAssignment
	pendingSwap *models.ShiftSwapRequest
	created     *models.ShiftSwapRequest
}

func (s *stubSwapsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubSwapsRepo) FindTrip(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	if s.trip == nil || s.trip.ID != tripID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.trip, nil
}

func (s *stubSwapsRepo) FindGuideByEmail(ctx context.Context, branchID uuid.UUID, email string) (*models.Guide, error) {
	guide, ok := s.guides[email]
	if !ok || guide.BranchID != branchID {
		return nil, gorm.ErrRecordNotFound
	}
	return guide, nil
}

func (s *stubSwapsRepo) FindActiveAssignment(ctx context.Context, tripID, guideID uuid.UUID) (*models.TripAssignment, error) {
	if s.assignment == nil || s.assignment.TripID != tripID || s.assignment.GuideID != guideID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.assignment, nil
}

func (s *stubSwapsRepo) FindPendingSwap(ctx context.Context, tripID, fromGuideID uuid.UUID) (*models.ShiftSwapRequest, error) {
	if s.pendingSwap == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.pendingSwap, nil
}

func (s *stubSwapsRepo) CreateSwapRequest(ctx context.Context, row *models.ShiftSwapRequest) (*models.ShiftSwapRequest, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	s.created = row
	return row, nil
}

func (s *stubSwapsRepo) ListForGuide(ctx context.Context, guideID uuid.UUID, params pagination.Params, status *enums.SwapStatus) (*SwapList, error) {
	return &SwapList{}, nil
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func swapFixture() (*stubSwapsRepo, uuid.UUID, uuid.UUID, *models.Guide) {
	branchID := uuid.New()
	tripID := uuid.New()
	requesterGuide := uuid.New()
	target := &models.Guide{
		ID:       uuid.New(),
		BranchID: branchID,
		Name:     "Rosa Delgado",
		Email:    "rosa@wavecrest.test",
		Active:   true,
	}
	repo := &stubSwapsRepo{
		trip:   &models.Trip{ID: tripID, BranchID: branchID},
		guides: map[string]*models.Guide{target.Email: target},
		assignment: &models.TripAssignment{
			ID:      uuid.New(),
			TripID:  tripID,
			GuideID: requesterGuide,
			Status:  enums.AssignmentStatusConfirmed,
		},
	}
	return repo, tripID, requesterGuide, target
}

func TestCreateSwapRequest(t *testing.T) {
	repo, tripID, requesterGuide, target := swapFixture()
	branchID := repo.trip.BranchID
	ob := &stubOutboxPublisher{}
	svc, err := NewService(repo, stubTxRunner{}, ob, nil)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	reason := "off rotation that weekend"
	created, err := svc.Create(context.Background(), CreateSwapInput{
		TripID:        tripID,
		TargetEmail:   "rosa@wavecrest.test",
		Reason:        &reason,
		ActorUserID:   uuid.New(),
		ActorGuideID:  requesterGuide,
		ActorBranchID: &branchID,
		ActorRole:     enums.ActorRoleGuide,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if created.Status != enums.SwapStatusPending {
		t.Fatalf("unexpected status %s", created.Status)
	}
	if created.ToGuideID != target.ID || created.FromGuideID != requesterGuide {
		t.Fatalf("unexpected parties %+v", created)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventSwapRequested {
		t.Fatalf("unexpected events %+v", ob.events)
	}
	payload, ok := ob.events[0].Data.(payloads.SwapRequestedEvent)
	if !ok {
		t.Fatalf("unexpected payload %T", ob.events[0].Data)
	}
	if payload.SwapRequestID != created.ID || payload.Reason != reason {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestCreateSwapSelfTargetRejected(t *testing.T) {
	repo, tripID, requesterGuide, target := swapFixture()
	branchID := repo.trip.BranchID
	target.ID = requesterGuide
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{}, nil)

	_, err := svc.Create(context.Background(), CreateSwapInput{
		TripID:        tripID,
		TargetEmail:   "rosa@wavecrest.test",
		ActorUserID:   uuid.New(),
		ActorGuideID:  requesterGuide,
		ActorBranchID: &branchID,
		ActorRole:     enums.ActorRoleGuide,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestCreateSwapUnknownEmailIsNotFound(t *testing.T) {
	repo, tripID, requesterGuide, _ := swapFixture()
	branchID := repo.trip.BranchID
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{}, nil)

	_, err := svc.Create(context.Background(), CreateSwapInput{
		TripID:        tripID,
		TargetEmail:   "nobody@wavecrest.test",
		ActorUserID:   uuid.New(),
		ActorGuideID:  requesterGuide,
		ActorBranchID: &branchID,
		ActorRole:     enums.ActorRoleGuide,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestCreateSwapRequiresHeldAssignment(t *testing.T) {
	repo, tripID, _, _ := swapFixture()
	branchID := repo.trip.BranchID
	ob := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, ob, nil)

	_, err := svc.Create(context.Background(), CreateSwapInput{
		TripID:        tripID,
		TargetEmail:   "rosa@wavecrest.test",
		ActorUserID:   uuid.New(),
		ActorGuideID:  uuid.New(),
		ActorBranchID: &branchID,
		ActorRole:     enums.ActorRoleGuide,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error %v", err)
	}
	if len(ob.events) != 0 {
		t.Fatalf("unexpected outbox events")
	}
}

func TestCreateSwapDuplicatePendingIsConflict(t *testing.T) {
	repo, tripID, requesterGuide, _ := swapFixture()
	branchID := repo.trip.BranchID
	repo.pendingSwap = &models.ShiftSwapRequest{ID: uuid.New(), TripID: tripID, FromGuideID: requesterGuide}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{}, nil)

	_, err := svc.Create(context.Background(), CreateSwapInput{
		TripID:        tripID,
		TargetEmail:   "rosa@wavecrest.test",
		ActorUserID:   uuid.New(),
		ActorGuideID:  requesterGuide,
		ActorBranchID: &branchID,
		ActorRole:     enums.ActorRoleGuide,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestCreateSwapForeignBranchReadsAsNotFound(t *testing.T) {
	repo, tripID, requesterGuide, _ := swapFixture()
	otherBranch := uuid.New()
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{}, nil)

	_, err := svc.Create(context.Background(), CreateSwapInput{
		TripID:        tripID,
		TargetEmail:   "rosa@wavecrest.test",
		ActorUserID:   uuid.New(),
		ActorGuideID:  requesterGuide,
		ActorBranchID: &otherBranch,
		ActorRole:     enums.ActorRoleGuide,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error %v", err)
	}
}

type stubCreateLimiter struct {
	count int64
	keys  []string
	err   error
}

func (s *stubCreateLimiter) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.count++
	s.keys = append(s.keys, key)
	return s.count, s.err
}

func (s *stubCreateLimiter) CounterKey(name string) string {
	return "wc:counter:" + name
}

func TestCreateSwapRateLimited(t *testing.T) {
	repo, tripID, requesterGuide, _ := swapFixture()
	branchID := repo.trip.BranchID
	limiter := &stubCreateLimiter{count: createLimit}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{}, limiter)

	_, err := svc.Create(context.Background(), CreateSwapInput{
		TripID:        tripID,
		TargetEmail:   "rosa@wavecrest.test",
		ActorUserID:   uuid.New(),
		ActorGuideID:  requesterGuide,
		ActorBranchID: &branchID,
		ActorRole:     enums.ActorRoleGuide,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("unexpected error %v", err)
	}
	if len(limiter.keys) != 1 || limiter.keys[0] != "wc:counter:swap-create:"+requesterGuide.String() {
		t.Fatalf("unexpected counter keys %v", limiter.keys)
	}
	if repo.created != nil {
		t.Fatal("rate-limited request must not create a row")
	}
}

func TestCreateSwapLimiterOutageFailsOpen(t *testing.T) {
	repo, tripID, requesterGuide, _ := swapFixture()
	branchID := repo.trip.BranchID
	limiter := &stubCreateLimiter{err: errors.New("redis down")}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{}, limiter)

	created, err := svc.Create(context.Background(), CreateSwapInput{
		TripID:        tripID,
		TargetEmail:   "rosa@wavecrest.test",
		ActorUserID:   uuid.New(),
		ActorGuideID:  requesterGuide,
		ActorBranchID: &branchID,
		ActorRole:     enums.ActorRoleGuide,
	})
	if err != nil {
		t.Fatalf("limiter outage must not block creation: %v", err)
	}
	if created == nil {
		t.Fatal("expected a created swap request")
	}
}
