package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/medsuite/pharmacare-api/internal/domain/entity"
	"github.com/medsuite/pharmacare-api/internal/domain/enum"
	"github.com/medsuite/pharmacare-api/pkg/pagination"
)

// StockAdjustmentRepository defines the interface for stock adjustment data operations
type StockAdjustmentRepository interface {
	Create(ctx context.Context, adjustment *entity.StockAdjustment) error
	CreateBatch(ctx context.Context, adjustments []entity.StockAdjustment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.StockAdjustment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.AdjustmentStatus) error
	ListPending(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams) ([]entity.StockAdjustment, int64, error)
	CountPending(ctx context.Context, userID uuid.UUID) (int64, error)
}
