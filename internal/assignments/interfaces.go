package assignments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasfarrell/wavecrest-backend/pkg/db/models"
	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
)

// Repository defines persistence operations for trip crew assignments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindTrip(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
	FindGuides(ctx context.Context, ids []uuid.UUID) ([]models.Guide, error)
	FindAssignment(ctx context.Context, id uuid.UUID) (*models.TripAssignment, error)
	FindAssignmentsByTrip(ctx context.Context, tripID uuid.UUID) ([]models.TripAssignment, error)
	FindConfirmedByTrip(ctx context.Context, tripID uuid.UUID) ([]models.TripAssignment, error)
	FindByGuide(ctx context.Context, guideID uuid.UUID, statuses []enums.AssignmentStatus) ([]models.TripAssignment, error)
	CreateAssignments(ctx context.Context, rows []models.TripAssignment) ([]models.TripAssignment, error)
	// UpdateStatusIf performs a conditional write guarded on the expected
	// current status and reports how many rows actually changed. Zero means
	// the caller lost the race.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, expected enums.AssignmentStatus, updates map[string]any) (int64, error)
	FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.TripAssignment, error)
}
