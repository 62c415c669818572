package swaps

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasfarrell/wavecrest-backend/pkg/db/models"
	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
	"github.com/lucasfarrell/wavecrest-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a swaps repository bound to the provided DB.
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

func (r *repository) FindGuideByEmail(ctx context.Context, branchID uuid.UUID, email string) (*models.Guide, error) {
	var guide models.Guide
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND LOWER(email) = ?", branchID, strings.ToLower(strings.TrimSpace(email))).
		First(&guide).Error
	if err != nil {
		return nil, err
	}
	return &guide, nil
}

func (r *repository) FindActiveAssignment(ctx context.Context, tripID, guideID uuid.UUID) (*models.TripAssignment, error) {
	var row models.TripAssignment
	err := r.db.WithContext(ctx).
		Where("trip_id = ? AND guide_id = ? AND status IN ?", tripID, guideID, []enums.AssignmentStatus{
			enums.AssignmentStatusPendingConfirmation,
			enums.AssignmentStatusConfirmed,
		}).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindPendingSwap(ctx context.Context, tripID, fromGuideID uuid.UUID) (*models.ShiftSwapRequest, error) {
	var row models.ShiftSwapRequest
	err := r.db.WithContext(ctx).
		Where("trip_id = ? AND from_guide_id = ? AND status = ?", tripID, fromGuideID, enums.SwapStatusPending).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) CreateSwapRequest(ctx context.Context, row *models.ShiftSwapRequest) (*models.ShiftSwapRequest, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repository) ListForGuide(ctx context.Context, guideID uuid.UUID, params pagination.Params, status *enums.SwapStatus) (*SwapList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.ShiftSwapRequest{}).
		Select(`shift_swap_requests.*,
			trips.title AS trip_title,
			trips.departs_at AS trip_departs_at,
			guides.name AS to_guide_name,
			guides.email AS to_guide_email`).
		Joins("JOIN trips ON trips.id = shift_swap_requests.trip_id").
		Joins("JOIN guides ON guides.id = shift_swap_requests.to_guide_id").
		Where("shift_swap_requests.from_guide_id = ?", guideID)
	if status != nil {
		query = query.Where("shift_swap_requests.status = ?", *status)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(shift_swap_requests.created_at, shift_swap_requests.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []SwapListItem
	if err := query.
		Order("shift_swap_requests.created_at DESC, shift_swap_requests.id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &SwapList{Swaps: rows}
	if len(rows) > normalized {
		next := rows[normalized]
		list.Swaps = rows[:normalized]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
	}
	return list, nil
}
