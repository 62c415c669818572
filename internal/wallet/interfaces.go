package wallet

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasfarrell/wavecrest-backend/pkg/db/models"
	"github.com/lucasfarrell/wavecrest-backend/pkg/pagination"
)

// Repository defines persistence operations for guide fee ledger rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindTrip(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
	FindConfirmedAssignments(ctx context.Context, tripID uuid.UUID) ([]models.TripAssignment, error)
	CountPayouts(ctx context.Context, tripID uuid.UUID) (int64, error)
	CreateLedgerEvents(ctx context.Context, rows []models.LedgerEvent) ([]models.LedgerEvent, error)
	ListGuideLedger(ctx context.Context, guideID uuid.UUID, params pagination.Params) (*LedgerList, error)
}
