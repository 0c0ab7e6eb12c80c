package request

// InventoryItemRequest represents create/update input for an inventory item
type InventoryItemRequest struct {
	Name          string  `json:"name" binding:"required,min=2,max=255"`
	CategoryID    *string `json:"category_id" binding:"omitempty,uuid"`
	BatchNumber   *string `json:"batch_number"`
	Quantity      int     `json:"quantity" binding:"gte=0"`
	QuantityAlert int     `json:"quantity_alert" binding:"gte=0"`
	UnitCost      int64   `json:"unit_cost" binding:"gte=0"`
	SellingPrice  int64   `json:"selling_price" binding:"gte=0"`
	ExpiresAt     *string `json:"expires_at"` // YYYY-MM-DD
}

// CategoryRequest represents a new category
type CategoryRequest struct {
	Name string `json:"name" binding:"required,min=2,max=255"`
}

// AdjustmentRequest represents a manual stock adjustment
type AdjustmentRequest struct {
	InventoryItemID string `json:"inventory_item_id" binding:"required,uuid"`
	Delta           int    `json:"delta" binding:"required"`
	Reason          string `json:"reason" binding:"required,min=3,max=255"`
}

// ResolveAdjustmentRequest applies or dismisses a pending adjustment
type ResolveAdjustmentRequest struct {
	Apply bool `json:"apply"`
}
