package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medsuite/pharmacare-api/internal/domain/enum"
)

// Prescription represents a doctor's prescription. Read-only to the
// settlement workflow apart from the Active -> Dispensed transition after a
// successful bill.
type Prescription struct {
	ID                 uuid.UUID               `gorm:"type:uuid;primary_key" json:"id"`
	UserID             uuid.UUID               `gorm:"type:uuid;not null;index" json:"user_id"`
	PatientID          *uuid.UUID              `gorm:"type:uuid;index" json:"patient_id,omitempty"`
	DoctorName         string                  `gorm:"size:255;not null" json:"doctor_name"`
	PrescriptionNumber string                  `gorm:"size:100;unique;not null" json:"prescription_number"`
	Status             enum.PrescriptionStatus `gorm:"default:0" json:"status"`
	Notes              *string                 `gorm:"type:text" json:"notes,omitempty"`
	IssuedAt           time.Time               `gorm:"type:date" json:"issued_at"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
	DeletedAt          gorm.DeletedAt          `gorm:"index" json:"-"`

	// Relationships
	User    User     `gorm:"foreignKey:UserID" json:"-"`
	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Bills   []Bill   `gorm:"foreignKey:PrescriptionID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new prescription
func (p *Prescription) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Prescription model
func (Prescription) TableName() string {
	return "prescriptions"
}
