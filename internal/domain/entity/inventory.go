package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryItem represents a stock-keeping unit in the pharmacy inventory.
// Quantity is shared mutable state across concurrent settlements; writes go
// through the compare-and-swap repository method, never a plain save, and the
// version column advances on every successful swap.
type InventoryItem struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID    *uuid.UUID     `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	Code          string         `gorm:"size:100;unique;not null" json:"code"`
	BatchNumber   *string        `gorm:"size:100" json:"batch_number,omitempty"`
	Quantity      int            `gorm:"default:0;check:quantity >= 0" json:"quantity"`
	QuantityAlert int            `gorm:"default:0" json:"quantity_alert"`
	Version       int64          `gorm:"default:0" json:"-"`
	UnitCost      int64          `gorm:"default:0" json:"unit_cost"`
	SellingPrice  int64          `gorm:"default:0" json:"selling_price"`
	ExpiresAt     *time.Time     `gorm:"type:date" json:"expires_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User     User      `gorm:"foreignKey:UserID" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// BeforeCreate generates a UUID before creating a new inventory item
func (i *InventoryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InventoryItem model
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// LowStock reports whether the item is at or below its alert threshold
func (i *InventoryItem) LowStock() bool {
	return i.Quantity <= i.QuantityAlert
}

// Category represents a medicine category (tablet, syrup, injection, ...)
type Category struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User  User            `gorm:"foreignKey:UserID" json:"-"`
	Items []InventoryItem `gorm:"foreignKey:CategoryID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}
