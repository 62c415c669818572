package trips

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasfarrell/wavecrest-backend/pkg/db/models"
	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
)

// Repository defines persistence operations for trip departures.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindTrip(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
	FindConfirmedLead(ctx context.Context, tripID uuid.UUID) (*models.TripAssignment, error)
	// UpdateStatusIf performs a conditional write guarded on the expected
	// current status and reports how many rows actually changed.
	UpdateStatusIf(ctx context.Context, tripID uuid.UUID, expected enums.TripStatus, updates map[string]any) (int64, error)
}
