package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medsuite/pharmacare-api/internal/domain/entity"
	"github.com/medsuite/pharmacare-api/internal/domain/enum"
	domainRepo "github.com/medsuite/pharmacare-api/internal/domain/repository"
	"github.com/medsuite/pharmacare-api/pkg/pagination"
)

type stockAdjustmentRepository struct {
	db *gorm.DB
}

// NewStockAdjustmentRepository creates a new stock adjustment repository
func NewStockAdjustmentRepository(db *gorm.DB) domainRepo.StockAdjustmentRepository {
	return &stockAdjustmentRepository{db: db}
}

func (r *stockAdjustmentRepository) Create(ctx context.Context, adjustment *entity.StockAdjustment) error {
	return r.db.WithContext(ctx).Create(adjustment).Error
}

func (r *stockAdjustmentRepository) CreateBatch(ctx context.Context, adjustments []entity.StockAdjustment) error {
	if len(adjustments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&adjustments).Error
}

func (r *stockAdjustmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.StockAdjustment, error) {
	var adjustment entity.StockAdjustment
	err := r.db.WithContext(ctx).
		Preload("InventoryItem").
		First(&adjustment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &adjustment, nil
}

func (r *stockAdjustmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.AdjustmentStatus) error {
	return r.db.WithContext(ctx).Model(&entity.StockAdjustment{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *stockAdjustmentRepository) ListPending(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams) ([]entity.StockAdjustment, int64, error) {
	var adjustments []entity.StockAdjustment
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.StockAdjustment{}).
		Where("user_id = ? AND status = ?", userID, enum.AdjustmentStatusPending)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("InventoryItem").
		Order("created_at ASC").
		Find(&adjustments).Error

	return adjustments, total, err
}

func (r *stockAdjustmentRepository) CountPending(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.StockAdjustment{}).
		Where("user_id = ? AND status = ?", userID, enum.AdjustmentStatusPending).
		Count(&count).Error
	return count, err
}
