package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medsuite/pharmacare-api/internal/domain/enum"
)

// Bill is the durable financial record produced by a settlement. Created
// exactly once per successful settlement and immutable afterwards except for
// the status transition (void, reconciliation-failed). Amounts are whole
// currency units. totalAmount = subtotal + taxAmount - discountAmount and is
// always positive.
type Bill struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	UserID         uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	PatientID      *uuid.UUID         `gorm:"type:uuid;index" json:"patient_id,omitempty"`
	PrescriptionID uuid.UUID          `gorm:"type:uuid;not null;index" json:"prescription_id"`
	BillNumber     string             `gorm:"size:100;unique;not null" json:"bill_number"`
	Subtotal       int64              `gorm:"not null" json:"subtotal"`
	TaxPercent     float64            `gorm:"not null" json:"tax_percent"`
	TaxAmount      int64              `gorm:"not null" json:"tax_amount"`
	DiscountAmount int64              `gorm:"default:0" json:"discount_amount"`
	TotalAmount    int64              `gorm:"not null" json:"total_amount"`
	Status         enum.BillStatus    `gorm:"default:0" json:"status"`
	PaymentMethod  enum.PaymentMethod `gorm:"size:50" json:"payment_method"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	DeletedAt      gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	User         User         `gorm:"foreignKey:UserID" json:"-"`
	Patient      *Patient     `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Prescription Prescription `gorm:"foreignKey:PrescriptionID" json:"-"`
	Items        []BillItem   `gorm:"foreignKey:BillID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new bill
func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Bill model
func (Bill) TableName() string {
	return "bills"
}

// BillItem is one line of a bill, converted 1:1 from a cart line item at
// settlement time. Never mutated independently of its bill.
type BillItem struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	BillID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"bill_id"`
	InventoryItemID uuid.UUID      `gorm:"type:uuid;not null;index" json:"inventory_item_id"`
	Name            string         `gorm:"size:255;not null" json:"name"`
	Quantity        int            `gorm:"not null" json:"quantity"`
	UnitPrice       int64          `gorm:"not null" json:"unit_price"`
	TotalPrice      int64          `gorm:"not null" json:"total_price"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Bill          Bill          `gorm:"foreignKey:BillID" json:"-"`
	InventoryItem InventoryItem `gorm:"foreignKey:InventoryItemID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new bill item
func (bi *BillItem) BeforeCreate(tx *gorm.DB) error {
	if bi.ID == uuid.Nil {
		bi.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillItem model
func (BillItem) TableName() string {
	return "bill_items"
}
