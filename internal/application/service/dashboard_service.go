package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/medsuite/pharmacare-api/internal/domain/repository"
)

// DashboardService provides dashboard statistics
type DashboardService struct {
	billRepo       repository.BillRepository
	inventoryRepo  repository.InventoryRepository
	adjustmentRepo repository.StockAdjustmentRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	billRepo repository.BillRepository,
	inventoryRepo repository.InventoryRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
) *DashboardService {
	return &DashboardService{
		billRepo:       billRepo,
		inventoryRepo:  inventoryRepo,
		adjustmentRepo: adjustmentRepo,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TodaySalesTotal    int64 `json:"today_sales_total"`
	TodayBillCount     int64 `json:"today_bill_count"`
	LowStockCount      int64 `json:"low_stock_count"`
	PendingAdjustments int64 `json:"pending_adjustments"`
}

// GetDashboardStats returns dashboard statistics
func (s *DashboardService) GetDashboardStats(ctx context.Context, userID uuid.UUID) (*DashboardStats, error) {
	stats := &DashboardStats{}

	total, count, err := s.billRepo.TodayStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.TodaySalesTotal = total
	stats.TodayBillCount = count

	lowStock, err := s.inventoryRepo.CountLowStock(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.LowStockCount = lowStock

	pending, err := s.adjustmentRepo.CountPending(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.PendingAdjustments = pending

	return stats, nil
}
