package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/medsuite/pharmacare-api/internal/domain/entity"
	"github.com/medsuite/pharmacare-api/internal/domain/enum"
	"github.com/medsuite/pharmacare-api/internal/domain/repository"
	"github.com/medsuite/pharmacare-api/pkg/apperror"
	"github.com/medsuite/pharmacare-api/pkg/pagination"
)

// BillService handles read and lifecycle operations on committed bills.
// Creation goes through the SettlementService only.
type BillService struct {
	billRepo      repository.BillRepository
	billItemRepo  repository.BillItemRepository
	inventoryRepo repository.InventoryRepository
}

// NewBillService creates a new bill service
func NewBillService(
	billRepo repository.BillRepository,
	billItemRepo repository.BillItemRepository,
	inventoryRepo repository.InventoryRepository,
) *BillService {
	return &BillService{
		billRepo:      billRepo,
		billItemRepo:  billItemRepo,
		inventoryRepo: inventoryRepo,
	}
}

// GetBill retrieves a bill with its items
func (s *BillService) GetBill(ctx context.Context, userID, id uuid.UUID) (*entity.Bill, error) {
	bill, err := s.billRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil || bill.UserID != userID {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return bill, nil
}

// GetBillByNumber retrieves a bill by the number printed on the receipt
func (s *BillService) GetBillByNumber(ctx context.Context, userID uuid.UUID, billNumber string) (*entity.Bill, error) {
	bill, err := s.billRepo.GetByBillNumber(ctx, billNumber)
	if err != nil {
		return nil, err
	}
	if bill == nil || bill.UserID != userID {
		return nil, apperror.NewNotFoundError("Bill")
	}

	items, err := s.billItemRepo.GetByBillID(ctx, bill.ID)
	if err != nil {
		return nil, err
	}
	bill.Items = items
	return bill, nil
}

// ListBills lists bills with filtering
func (s *BillService) ListBills(ctx context.Context, userID uuid.UUID, params *repository.BillFilterParams) (*pagination.PaginatedResult[entity.Bill], error) {
	bills, total, err := s.billRepo.List(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(bills, pag), nil
}

// VoidBill marks a paid bill as void and restores its stock. The bill row
// itself is never deleted; voiding is the only sanctioned reversal of a
// committed financial record.
func (s *BillService) VoidBill(ctx context.Context, userID, id uuid.UUID) error {
	bill, err := s.GetBill(ctx, userID, id)
	if err != nil {
		return err
	}

	if bill.Status == enum.BillStatusVoid {
		return apperror.NewBadRequestError("Bill is already void")
	}
	if bill.Status == enum.BillStatusReconciliationFailed {
		return apperror.NewBadRequestError("Bill has unresolved stock adjustments and cannot be voided")
	}

	for _, item := range bill.Items {
		if err := s.inventoryRepo.AdjustQuantity(ctx, item.InventoryItemID, userID, item.Quantity); err != nil {
			return err
		}
	}

	return s.billRepo.UpdateStatus(ctx, bill.ID, enum.BillStatusVoid)
}
