package trips

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasfarrell/wavecrest-backend/pkg/db/models"
	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a trips repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindTrip(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.WithContext(ctx).
		Where("id = ?", tripID).
		First(&trip).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *repository) FindConfirmedLead(ctx context.Context, tripID uuid.UUID) (*models.TripAssignment, error) {
	var row models.TripAssignment
	err := r.db.WithContext(ctx).
		Where("trip_id = ? AND role = ? AND status = ?", tripID, enums.CrewRoleLead, enums.AssignmentStatusConfirmed).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) UpdateStatusIf(ctx context.Context, tripID uuid.UUID, expected enums.TripStatus, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Trip{}).
		Where("id = ? AND status = ?", tripID, expected).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
