package assignments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasfarrell/wavecrest-backend/pkg/db/models"
	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an assignments repository bound to the provided DB.
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

func (r *repository) FindGuides(ctx context.Context, ids []uuid.UUID) ([]models.Guide, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var guides []models.Guide
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&guides).Error
	if err != nil {
		return nil, err
	}
	return guides, nil
}

func (r *repository) FindAssignment(ctx context.Context, id uuid.UUID) (*models.TripAssignment, error) {
	var assignment models.TripAssignment
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *repository) FindAssignmentsByTrip(ctx context.Context, tripID uuid.UUID) ([]models.TripAssignment, error) {
	var rows []models.TripAssignment
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindConfirmedByTrip(ctx context.Context, tripID uuid.UUID) ([]models.TripAssignment, error) {
	var rows []models.TripAssignment
	err := r.db.WithContext(ctx).
		Where("trip_id = ? AND status = ?", tripID, enums.AssignmentStatusConfirmed).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByGuide(ctx context.Context, guideID uuid.UUID, statuses []enums.AssignmentStatus) ([]models.TripAssignment, error) {
	query := r.db.WithContext(ctx).Where("guide_id = ?", guideID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var rows []models.TripAssignment
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreateAssignments(ctx context.Context, rows []models.TripAssignment) ([]models.TripAssignment, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected enums.AssignmentStatus, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.TripAssignment{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.TripAssignment, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.TripAssignment
	err := r.db.WithContext(ctx).
		Where("status = ? AND confirmation_deadline IS NOT NULL AND confirmation_deadline < ?",
			enums.AssignmentStatusPendingConfirmation, cutoff).
		Order("confirmation_deadline ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
