package swaps

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasfarrell/wavecrest-backend/pkg/db/models"
	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
	"github.com/lucasfarrell/wavecrest-backend/pkg/pagination"
)

// Repository defines persistence operations for shift swap requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindTrip(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
	FindGuideByEmail(ctx context.Context, branchID uuid.UUID, email string) (*models.Guide, error)
	FindActiveAssignment(ctx context.Context, tripID, guideID uuid.UUID) (*models.TripAssignment, error)
	FindPendingSwap(ctx context.Context, tripID, fromGuideID uuid.UUID) (*models.ShiftSwapRequest, error)
	CreateSwapRequest(ctx context.Context, row *models.ShiftSwapRequest) (*models.ShiftSwapRequest, error)
	ListForGuide(ctx context.Context, guideID uuid.UUID, params pagination.Params, status *enums.SwapStatus) (*SwapList, error)
}
