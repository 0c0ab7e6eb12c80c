package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medsuite/pharmacare-api/internal/domain/enum"
)

// StockAdjustment records a pending manual stock correction. The settlement
// saga writes one per line item it could not decrement after a bill was
// already committed; operators also create them for counts, damage and
// expiry. Resolving a pending adjustment applies Delta to the item's
// quantity.
type StockAdjustment struct {
	ID              uuid.UUID             `gorm:"type:uuid;primary_key" json:"id"`
	UserID          uuid.UUID             `gorm:"type:uuid;not null;index" json:"user_id"`
	InventoryItemID uuid.UUID             `gorm:"type:uuid;not null;index" json:"inventory_item_id"`
	BillID          *uuid.UUID            `gorm:"type:uuid;index" json:"bill_id,omitempty"`
	Delta           int                   `gorm:"not null" json:"delta"`
	Reason          string                `gorm:"size:255;not null" json:"reason"`
	Status          enum.AdjustmentStatus `gorm:"default:0" json:"status"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`

	// Relationships
	User          User          `gorm:"foreignKey:UserID" json:"-"`
	InventoryItem InventoryItem `gorm:"foreignKey:InventoryItemID" json:"item,omitempty"`
	Bill          *Bill         `gorm:"foreignKey:BillID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new stock adjustment
func (a *StockAdjustment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StockAdjustment model
func (StockAdjustment) TableName() string {
	return "stock_adjustments"
}
