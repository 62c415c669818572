package assignments

import (
	"context"
	"testing"
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

type stubAssignmentsRepo struct {
	trip           *models.Trip
	guides         []models.Guide
	assignment     *models.TripAssignment
	tripRows       []models.TripAssignment
	staleRows      []models.TripAssignment
	created        []models.TripAssignment
	updateCalls    []map[string]any
	updateRows     int64
	updateStatusIf func(ctx context.Context, id uuid.UUID, expected enums.AssignmentStatus, updates map[string]any) (int64, error)
}

func (s *stubAssignmentsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubAssignmentsRepo) FindTrip(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	if s.trip == nil || s.trip.ID != tripID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.trip, nil
}

func (s *stubAssignmentsRepo) FindGuides(ctx context.Context, ids []uuid.UUID) ([]models.Guide, error) {
	found := make([]models.Guide, 0, len(ids))
	for _, id := range ids {
		for _, guide := range s.guides {
			if guide.ID == id {
				found = append(found, guide)
			}
		}
	}
	return found, nil
}

func (s *stubAssignmentsRepo) FindAssignment(ctx context.Context, id uuid.UUID) (*models.TripAssignment, error) {
	if s.assignment == nil || s.assignment.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.assignment, nil
}

func (s *stubAssignmentsRepo) FindAssignmentsByTrip(ctx context.Context, tripID uuid.UUID) ([]models.TripAssignment, error) {
	return s.tripRows, nil
}

func (s *stubAssignmentsRepo) FindConfirmedByTrip(ctx context.Context, tripID uuid.UUID) ([]models.TripAssignment, error) {
	confirmed := make([]models.TripAssignment, 0)
	for _, row := range s.tripRows {
		if row.Status == enums.AssignmentStatusConfirmed {
			confirmed = append(confirmed, row)
		}
	}
	return confirmed, nil
}

func (s *stubAssignmentsRepo) FindByGuide(ctx context.Context, guideID uuid.UUID, statuses []enums.AssignmentStatus) ([]models.TripAssignment, error) {
	panic("not implemented")
}

func (s *stubAssignmentsRepo) CreateAssignments(ctx context.Context, rows []models.TripAssignment) ([]models.TripAssignment, error) {
	for i := range rows {
		if rows[i].ID == uuid.Nil {
			rows[i].ID = uuid.New()
		}
	}
	s.created = append(s.created, rows...)
	return rows, nil
}

func (s *stubAssignmentsRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected enums.AssignmentStatus, updates map[string]any) (int64, error) {
	if s.updateStatusIf != nil {
		return s.updateStatusIf(ctx, id, expected, updates)
	}
	s.updateCalls = append(s.updateCalls, updates)
	return s.updateRows, nil
}

func (s *stubAssignmentsRepo) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.TripAssignment, error) {
	return s.staleRows, nil
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testAssignmentConfig() config.AssignmentConfig {
	return config.AssignmentConfig{
		ConfirmationTTL:       72 * time.Hour,
		MinRejectionReasonLen: 10,
	}
}

func fixedClock(at time.Time) Clock {
	return func() time.Time { return at }
}

func TestAssignGuidesCreatesOffersAndEmitsEvent(t *testing.T) {
	branchID := uuid.New()
	tripID := uuid.New()
	leadGuide := uuid.New()
	supportGuide := uuid.New()
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	repo := &stubAssignmentsRepo{
		trip: &models.Trip{ID: tripID, BranchID: branchID},
		guides: []models.Guide{
			{ID: leadGuide, BranchID: branchID, Active: true},
			{ID: supportGuide, BranchID: branchID, Active: true},
		},
	}
	ob := &stubOutboxPublisher{}
	svc, err := NewService(repo, stubTxRunner{}, ob, testAssignmentConfig(), fixedClock(now))
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	result, err := svc.AssignGuides(context.Background(), AssignGuidesInput{
		TripID:        tripID,
		GuideIDs:      []uuid.UUID{leadGuide, supportGuide},
		Roles:         []enums.CrewRole{enums.CrewRoleLead, enums.CrewRoleSupport},
		Fees:          []decimal.Decimal{decimal.NewFromInt(600000), decimal.NewFromInt(300000)},
		ActorUserID:   uuid.New(),
		ActorBranchID: &branchID,
		ActorRole:     enums.ActorRoleBranchAdmin,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(result.Assignments) != 2 {
		t.Fatalf("expected 2 assignments got %d", len(result.Assignments))
	}
	for _, row := range result.Assignments {
		if row.Status != enums.AssignmentStatusPendingConfirmation {
			t.Fatalf("unexpected status %s", row.Status)
		}
		if row.ConfirmationDeadline == nil || !row.ConfirmationDeadline.Equal(now.Add(72*time.Hour)) {
			t.Fatalf("unexpected deadline %v", row.ConfirmationDeadline)
		}
	}
	if len(ob.events) != 1 {
		t.Fatalf("expected 1 outbox event got %d", len(ob.events))
	}
	if ob.events[0].EventType != enums.EventAssignmentCreated {
		t.Fatalf("unexpected event type %s", ob.events[0].EventType)
	}
	payload, ok := ob.events[0].Data.(payloads.AssignmentCreatedEvent)
	if !ok {
		t.Fatalf("unexpected event payload %T", ob.events[0].Data)
	}
	if len(payload.AssignmentIDs) != 2 {
		t.Fatalf("unexpected assignment ids %v", payload.AssignmentIDs)
	}
}

func TestAssignGuidesSkipsActiveAssignments(t *testing.T) {
	branchID := uuid.New()
	tripID := uuid.New()
	busyGuide := uuid.New()
	freshGuide := uuid.New()
	repo := &stubAssignmentsRepo{
		trip: &models.Trip{ID: tripID, BranchID: branchID},
		guides: []models.Guide{
			{ID: busyGuide, BranchID: branchID, Active: true},
			{ID: freshGuide, BranchID: branchID, Active: true},
		},
		tripRows: []models.TripAssignment{
			{ID: uuid.New(), TripID: tripID, GuideID: busyGuide, Role: enums.CrewRoleSupport, Status: enums.AssignmentStatusConfirmed},
		},
	}
	ob := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, ob, testAssignmentConfig(), nil)

	result, err := svc.AssignGuides(context.Background(), AssignGuidesInput{
		TripID:        tripID,
		GuideIDs:      []uuid.UUID{busyGuide, freshGuide},
		Roles:         []enums.CrewRole{enums.CrewRoleSupport, enums.CrewRoleDriver},
		ActorUserID:   uuid.New(),
		ActorBranchID: &branchID,
		ActorRole:     enums.ActorRoleBranchAdmin,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if result.Skipped != 1 {
		t.Fatalf("expected 1 skipped got %d", result.Skipped)
	}
	if len(result.Assignments) != 1 || result.Assignments[0].GuideID != freshGuide {
		t.Fatalf("unexpected created rows %+v", result.Assignments)
	}
}

func TestAssignGuidesAllActiveIsConflict(t *testing.T) {
	branchID := uuid.New()
	tripID := uuid.New()
	guideID := uuid.New()
	repo := &stubAssignmentsRepo{
		trip:   &models.Trip{ID: tripID, BranchID: branchID},
		guides: []models.Guide{{ID: guideID, BranchID: branchID, Active: true}},
		tripRows: []models.TripAssignment{
			{ID: uuid.New(), TripID: tripID, GuideID: guideID, Status: enums.AssignmentStatusPendingConfirmation},
		},
	}
	ob := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, ob, testAssignmentConfig(), nil)

	_, err := svc.AssignGuides(context.Background(), AssignGuidesInput{
		TripID:        tripID,
		GuideIDs:      []uuid.UUID{guideID},
		Roles:         []enums.CrewRole{enums.CrewRoleSupport},
		ActorUserID:   uuid.New(),
		ActorBranchID: &branchID,
		ActorRole:     enums.ActorRoleBranchAdmin,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error %v", err)
	}
	if len(ob.events) != 0 {
		t.Fatalf("unexpected outbox events")
	}
}

func TestAssignGuidesSecondLeadRejected(t *testing.T) {
	branchID := uuid.New()
	tripID := uuid.New()
	guideID := uuid.New()
	repo := &stubAssignmentsRepo{
		trip:   &models.Trip{ID: tripID, BranchID: branchID},
		guides: []models.Guide{{ID: guideID, BranchID: branchID, Active: true}},
		tripRows: []models.TripAssignment{
			{ID: uuid.New(), TripID: tripID, GuideID: uuid.New(), Role: enums.CrewRoleLead, Status: enums.AssignmentStatusConfirmed},
		},
	}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{}, testAssignmentConfig(), nil)

	_, err := svc.AssignGuides(context.Background(), AssignGuidesInput{
		TripID:        tripID,
		GuideIDs:      []uuid.UUID{guideID},
		Roles:         []enums.CrewRole{enums.CrewRoleLead},
		ActorUserID:   uuid.New(),
		ActorBranchID: &branchID,
		ActorRole:     enums.ActorRoleBranchAdmin,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestAssignGuidesRejectedGuideCanBeReassigned(t *testing.T) {
	branchID := uuid.New()
	tripID := uuid.New()
	guideID := uuid.New()
	repo := &stubAssignmentsRepo{
		trip:   &models.Trip{ID: tripID, BranchID: branchID},
		guides: []models.Guide{{ID: guideID, BranchID: branchID, Active: true}},
		tripRows: []models.TripAssignment{
			{ID: uuid.New(), TripID: tripID, GuideID: guideID, Role: enums.CrewRoleSupport, Status: enums.AssignmentStatusRejected},
		},
	}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{}, testAssignmentConfig(), nil)

	result, err := svc.AssignGuides(context.Background(), AssignGuidesInput{
		TripID:        tripID,
		GuideIDs:      []uuid.UUID{guideID},
		Roles:         []enums.CrewRole{enums.CrewRoleSupport},
		ActorUserID:   uuid.New(),
		ActorBranchID: &branchID,
		ActorRole:     enums.ActorRoleBranchAdmin,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(result.Assignments) != 1 {
		t.Fatalf("expected reassignment got %+v", result)
	}
}

func TestAssignGuidesForeignBranchReadsAsNotFound(t *testing.T) {
	tripID := uuid.New()
	otherBranch := uuid.New()
	repo := &stubAssignmentsRepo{
		trip: &models.Trip{ID: tripID, BranchID: uuid.New()},
	}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{}, testAssignmentConfig(), nil)

	_, err := svc.AssignGuides(context.Background(), AssignGuidesInput{
		TripID:        tripID,
		GuideIDs:      []uuid.UUID{uuid.New()},
		ActorUserID:   uuid.New(),
		ActorBranchID: &otherBranch,
		ActorRole:     enums.ActorRoleBranchAdmin,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestAssignGuidesInactiveGuideRejected(t *testing.T) {
	branchID := uuid.New()
	tripID := uuid.New()
	guideID := uuid.New()
	repo := &stubAssignmentsRepo{
		trip:   &models.Trip{ID: tripID, BranchID: branchID},
		guides: []models.Guide{{ID: guideID, BranchID: branchID, Active: false}},
	}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{}, testAssignmentConfig(), nil)

	_, err := svc.AssignGuides(context.Background(), AssignGuidesInput{
		TripID:        tripID,
		GuideIDs:      []uuid.UUID{guideID},
		ActorUserID:   uuid.New(),
		ActorBranchID: &branchID,
		ActorRole:     enums.ActorRoleBranchAdmin,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDecideAcceptConfirmsAssignment(t *testing.T) {
	guideID := uuid.New()
	assignmentID := uuid.New()
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	deadline := now.Add(24 * time.Hour)
	repo := &stubAssignmentsRepo{
		assignment: &models.TripAssignment{
			ID:                   assignmentID,
			TripID:               uuid.New(),
			BranchID:             uuid.New(),
			GuideID:              guideID,
			Role:                 enums.CrewRoleLead,
			Status:               enums.AssignmentStatusPendingConfirmation,
			ConfirmationDeadline: &deadline,
		},
		updateRows: 1,
	}
	ob := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, ob, testAssignmentConfig(), fixedClock(now))

	updated, err := svc.Decide(context.Background(), DecideInput{
		AssignmentID: assignmentID,
		Decision:     DecisionAccept,
		ActorUserID:  uuid.New(),
		ActorGuideID: guideID,
		ActorRole:    enums.ActorRoleGuide,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if updated.Status != enums.AssignmentStatusConfirmed {
		t.Fatalf("unexpected status %s", updated.Status)
	}
	if updated.ConfirmedAt == nil || !updated.ConfirmedAt.Equal(now) {
		t.Fatalf("unexpected confirmed_at %v", updated.ConfirmedAt)
	}
	if len(repo.updateCalls) != 1 {
		t.Fatalf("expected conditional update got %d calls", len(repo.updateCalls))
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventAssignmentConfirmed {
		t.Fatalf("unexpected events %+v", ob.events)
	}
}

func TestDecideRejectRequiresReason(t *testing.T) {
	guideID := uuid.New()
	assignmentID := uuid.New()
	deadline := time.Now().Add(time.Hour)
	repo := &stubAssignmentsRepo{
		assignment: &models.TripAssignment{
			ID:                   assignmentID,
			GuideID:              guideID,
			Status:               enums.AssignmentStatusPendingConfirmation,
			ConfirmationDeadline: &deadline,
		},
		updateRows: 1,
	}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{}, testAssignmentConfig(), nil)

	_, err := svc.Decide(context.Background(), DecideInput{
		AssignmentID: assignmentID,
		Decision:     DecisionReject,
		Reason:       "too short",
		ActorUserID:  uuid.New(),
		ActorGuideID: guideID,
		ActorRole:    enums.ActorRoleGuide,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error %v", err)
	}

	updated, err := svc.Decide(context.Background(), DecideInput{
		AssignmentID: assignmentID,
		Decision:     DecisionReject,
		Reason:       "family emergency that week",
		ActorUserID:  uuid.New(),
		ActorGuideID: guideID,
		ActorRole:    enums.ActorRoleGuide,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if updated.Status != enums.AssignmentStatusRejected {
		t.Fatalf("unexpected status %s", updated.Status)
	}
	if updated.RejectionReason == nil || *updated.RejectionReason != "family emergency that week" {
		t.Fatalf("unexpected reason %v", updated.RejectionReason)
	}
}

func TestDecideWrongGuideForbidden(t *testing.T) {
	assignmentID := uuid.New()
	deadline := time.Now().Add(time.Hour)
	repo := &stubAssignmentsRepo{
		assignment: &models.TripAssignment{
			ID:                   assignmentID,
			GuideID:              uuid.New(),
			Status:               enums.AssignmentStatusPendingConfirmation,
			ConfirmationDeadline: &deadline,
		},
	}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{}, testAssignmentConfig(), nil)

	_, err := svc.Decide(context.Background(), DecideInput{
		AssignmentID: assignmentID,
		Decision:     DecisionAccept,
		ActorUserID:  uuid.New(),
		ActorGuideID: uuid.New(),
		ActorRole:    enums.ActorRoleGuide,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDecideAfterDeadlineLeavesRowPending(t *testing.T) {
	guideID := uuid.New()
	assignmentID := uuid.New()
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	deadline := now.Add(-time.Minute)
	repo := &stubAssignmentsRepo{
		assignment: &models.TripAssignment{
			ID:                   assignmentID,
			GuideID:              guideID,
			Status:               enums.AssignmentStatusPendingConfirmation,
			ConfirmationDeadline: &deadline,
		},
	}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{}, testAssignmentConfig(), fixedClock(now))

	_, err := svc.Decide(context.Background(), DecideInput{
		AssignmentID: assignmentID,
		Decision:     DecisionAccept,
		ActorUserID:  uuid.New(),
		ActorGuideID: guideID,
		ActorRole:    enums.ActorRoleGuide,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error %v", err)
	}
	if len(repo.updateCalls) != 0 {
		t.Fatalf("unexpected status write after deadline")
	}
	if repo.assignment.Status != enums.AssignmentStatusPendingConfirmation {
		t.Fatalf("row should stay pending got %s", repo.assignment.Status)
	}
}

func TestDecideConcurrentLoserGetsStateConflict(t *testing.T) {
	guideID := uuid.New()
	assignmentID := uuid.New()
	deadline := time.Now().Add(time.Hour)
	repo := &stubAssignmentsRepo{
		assignment: &models.TripAssignment{
			ID:                   assignmentID,
			GuideID:              guideID,
			Status:               enums.AssignmentStatusPendingConfirmation,
			ConfirmationDeadline: &deadline,
		},
		updateRows: 0,
	}
	ob := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, ob, testAssignmentConfig(), nil)

	_, err := svc.Decide(context.Background(), DecideInput{
		AssignmentID: assignmentID,
		Decision:     DecisionAccept,
		ActorUserID:  uuid.New(),
		ActorGuideID: guideID,
		ActorRole:    enums.ActorRoleGuide,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error %v", err)
	}
	if len(ob.events) != 0 {
		t.Fatalf("unexpected outbox events")
	}
}

func TestExpireStaleSkipsRowsDecidedMidSweep(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	winner := uuid.New()
	loser := uuid.New()
	repo := &stubAssignmentsRepo{
		staleRows: []models.TripAssignment{
			{ID: winner, TripID: uuid.New(), BranchID: uuid.New(), GuideID: uuid.New(), ConfirmationDeadline: &past, Status: enums.AssignmentStatusPendingConfirmation},
			{ID: loser, TripID: uuid.New(), BranchID: uuid.New(), GuideID: uuid.New(), ConfirmationDeadline: &past, Status: enums.AssignmentStatusPendingConfirmation},
		},
	}
	repo.updateStatusIf = func(ctx context.Context, id uuid.UUID, expected enums.AssignmentStatus, updates map[string]any) (int64, error) {
		if id == loser {
			// A guide confirmed this row between the scan and the write.
			return 0, nil
		}
		return 1, nil
	}
	ob := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, ob, testAssignmentConfig(), fixedClock(now))

	count, err := svc.ExpireStale(context.Background(), 100)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 expired got %d", count)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventAssignmentExpired {
		t.Fatalf("unexpected events %+v", ob.events)
	}
	payload, ok := ob.events[0].Data.(payloads.AssignmentExpiredEvent)
	if !ok {
		t.Fatalf("unexpected payload %T", ob.events[0].Data)
	}
	if payload.AssignmentID != winner {
		t.Fatalf("unexpected expired id %s", payload.AssignmentID)
	}
}

func TestExpireStaleEmptyIsNoop(t *testing.T) {
	repo := &stubAssignmentsRepo{}
	ob := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, ob, testAssignmentConfig(), nil)

	count, err := svc.ExpireStale(context.Background(), 100)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if count != 0 || len(ob.events) != 0 {
		t.Fatalf("expected noop got count=%d events=%d", count, len(ob.events))
	}
}
