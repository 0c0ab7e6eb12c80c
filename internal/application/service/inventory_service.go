package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medsuite/pharmacare-api/internal/domain/entity"
	"github.com/medsuite/pharmacare-api/internal/domain/enum"
	"github.com/medsuite/pharmacare-api/internal/domain/repository"
	"github.com/medsuite/pharmacare-api/pkg/apperror"
	"github.com/medsuite/pharmacare-api/pkg/pagination"
	"github.com/medsuite/pharmacare-api/pkg/utils"
)

// InventoryService handles inventory-related operations
type InventoryService struct {
	inventoryRepo  repository.InventoryRepository
	categoryRepo   repository.CategoryRepository
	adjustmentRepo repository.StockAdjustmentRepository
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	inventoryRepo repository.InventoryRepository,
	categoryRepo repository.CategoryRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
) *InventoryService {
	return &InventoryService{
		inventoryRepo:  inventoryRepo,
		categoryRepo:   categoryRepo,
		adjustmentRepo: adjustmentRepo,
	}
}

// InventoryItemInput represents create/update input for an inventory item
type InventoryItemInput struct {
	Name          string
	CategoryID    *uuid.UUID
	BatchNumber   *string
	Quantity      int
	QuantityAlert int
	UnitCost      int64
	SellingPrice  int64
	ExpiresAt     *time.Time
}

// CreateItem creates a new inventory item
func (s *InventoryService) CreateItem(ctx context.Context, userID uuid.UUID, input *InventoryItemInput) (*entity.InventoryItem, error) {
	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil || category.UserID != userID {
			return nil, apperror.NewNotFoundError("Category")
		}
	}

	if input.Quantity < 0 {
		return nil, apperror.NewBadRequestError("Quantity cannot be negative")
	}

	item := &entity.InventoryItem{
		UserID:        userID,
		CategoryID:    input.CategoryID,
		Name:          input.Name,
		Code:          utils.GenerateItemCode(),
		BatchNumber:   input.BatchNumber,
		Quantity:      input.Quantity,
		QuantityAlert: input.QuantityAlert,
		UnitCost:      input.UnitCost,
		SellingPrice:  input.SellingPrice,
		ExpiresAt:     input.ExpiresAt,
	}

	if err := s.inventoryRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem retrieves an inventory item by ID
func (s *InventoryService) GetItem(ctx context.Context, userID, id uuid.UUID) (*entity.InventoryItem, error) {
	item, err := s.inventoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.UserID != userID {
		return nil, apperror.NewNotFoundError("Inventory item")
	}
	return item, nil
}

// UpdateItem updates an item's metadata. Stock levels change only through
// adjustments and settlements.
func (s *InventoryService) UpdateItem(ctx context.Context, userID, id uuid.UUID, input *InventoryItemInput) (*entity.InventoryItem, error) {
	item, err := s.GetItem(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	item.Name = input.Name
	item.CategoryID = input.CategoryID
	item.BatchNumber = input.BatchNumber
	item.QuantityAlert = input.QuantityAlert
	item.UnitCost = input.UnitCost
	item.SellingPrice = input.SellingPrice
	item.ExpiresAt = input.ExpiresAt

	if err := s.inventoryRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return s.GetItem(ctx, userID, id)
}

// DeleteItem deletes an inventory item
func (s *InventoryService) DeleteItem(ctx context.Context, userID, id uuid.UUID) error {
	item, err := s.GetItem(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.inventoryRepo.Delete(ctx, item.ID)
}

// ListItems lists inventory items with filtering
func (s *InventoryService) ListItems(ctx context.Context, userID uuid.UUID, params *repository.InventoryFilterParams) (*pagination.PaginatedResult[entity.InventoryItem], error) {
	items, total, err := s.inventoryRepo.List(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(items, pag), nil
}

// GetLowStock returns items at or below their alert threshold
func (s *InventoryService) GetLowStock(ctx context.Context, userID uuid.UUID) ([]entity.InventoryItem, error) {
	return s.inventoryRepo.GetLowStock(ctx, userID)
}

// CreateAdjustmentInput represents a manual stock adjustment request
type CreateAdjustmentInput struct {
	InventoryItemID uuid.UUID
	Delta           int
	Reason          string
}

// CreateAdjustment queues a manual stock correction for later resolution
func (s *InventoryService) CreateAdjustment(ctx context.Context, userID uuid.UUID, input *CreateAdjustmentInput) (*entity.StockAdjustment, error) {
	if input.Delta == 0 {
		return nil, apperror.NewBadRequestError("Adjustment delta cannot be zero")
	}
	if input.Reason == "" {
		return nil, apperror.NewBadRequestError("Adjustment reason is required")
	}

	item, err := s.GetItem(ctx, userID, input.InventoryItemID)
	if err != nil {
		return nil, err
	}

	adjustment := &entity.StockAdjustment{
		UserID:          userID,
		InventoryItemID: item.ID,
		Delta:           input.Delta,
		Reason:          input.Reason,
		Status:          enum.AdjustmentStatusPending,
	}

	if err := s.adjustmentRepo.Create(ctx, adjustment); err != nil {
		return nil, err
	}
	return adjustment, nil
}

// ResolveAdjustment applies or dismisses a pending adjustment. Applying runs
// the delta through the same atomic quantity path the settlement uses.
func (s *InventoryService) ResolveAdjustment(ctx context.Context, userID, id uuid.UUID, apply bool) error {
	adjustment, err := s.adjustmentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if adjustment == nil || adjustment.UserID != userID {
		return apperror.NewNotFoundError("Stock adjustment")
	}
	if adjustment.Status != enum.AdjustmentStatusPending {
		return apperror.NewBadRequestError("Adjustment has already been resolved")
	}

	if !apply {
		return s.adjustmentRepo.UpdateStatus(ctx, adjustment.ID, enum.AdjustmentStatusDismissed)
	}

	if err := s.inventoryRepo.AdjustQuantity(ctx, adjustment.InventoryItemID, userID, adjustment.Delta); err != nil {
		return err
	}
	return s.adjustmentRepo.UpdateStatus(ctx, adjustment.ID, enum.AdjustmentStatusApplied)
}

// ListPendingAdjustments lists unresolved adjustments
func (s *InventoryService) ListPendingAdjustments(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.StockAdjustment], error) {
	adjustments, total, err := s.adjustmentRepo.ListPending(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(adjustments, pag), nil
}

// CreateCategory creates a new medicine category
func (s *InventoryService) CreateCategory(ctx context.Context, userID uuid.UUID, name string) (*entity.Category, error) {
	if name == "" {
		return nil, apperror.NewBadRequestError("Category name is required")
	}
	category := &entity.Category{UserID: userID, Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories lists the owner's categories
func (s *InventoryService) ListCategories(ctx context.Context, userID uuid.UUID) ([]entity.Category, error) {
	return s.categoryRepo.List(ctx, userID)
}

// DeleteCategory deletes a category
func (s *InventoryService) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil || category.UserID != userID {
		return apperror.NewNotFoundError("Category")
	}
	return s.categoryRepo.Delete(ctx, id)
}
