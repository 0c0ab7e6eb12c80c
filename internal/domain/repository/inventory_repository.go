package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/medsuite/pharmacare-api/internal/domain/entity"
	"github.com/medsuite/pharmacare-api/pkg/pagination"
)

// InventoryRepository defines the interface for inventory data operations.
// Quantity mutations during settlement go exclusively through
// CompareAndSwapQuantity; plain Update must not touch the quantity column.
type InventoryRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.InventoryItem, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.InventoryItem, error)
	// GetQuantity reads the current stock level for (itemID, userID).
	// Returns found=false when the item does not exist for that owner.
	GetQuantity(ctx context.Context, itemID, userID uuid.UUID) (quantity int, found bool, err error)
	// CompareAndSwapQuantity writes newQty only if the row's quantity still
	// equals expectedQty, bumping the version column. Returns false when a
	// concurrent writer got there first.
	CompareAndSwapQuantity(ctx context.Context, itemID, userID uuid.UUID, expectedQty, newQty int) (bool, error)
	// AdjustQuantity applies a signed delta atomically, flooring at zero.
	AdjustQuantity(ctx context.Context, itemID, userID uuid.UUID, delta int) error
	Update(ctx context.Context, item *entity.InventoryItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, params *InventoryFilterParams) ([]entity.InventoryItem, int64, error)
	GetLowStock(ctx context.Context, userID uuid.UUID) ([]entity.InventoryItem, error)
	// AllLowStock scans every owner's inventory, used by scheduled reports.
	AllLowStock(ctx context.Context) ([]entity.InventoryItem, error)
	CountLowStock(ctx context.Context, userID uuid.UUID) (int64, error)
}

// InventoryFilterParams contains filtering parameters for inventory queries
type InventoryFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	CategoryID *uuid.UUID
	LowStock   bool
	SortBy     string
	SortOrder  string
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	List(ctx context.Context, userID uuid.UUID) ([]entity.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
