package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medsuite/pharmacare-api/internal/domain/entity"
	"github.com/medsuite/pharmacare-api/internal/domain/enum"
	domainRepo "github.com/medsuite/pharmacare-api/internal/domain/repository"
)

type prescriptionRepository struct {
	db *gorm.DB
}

// NewPrescriptionRepository creates a new prescription repository
func NewPrescriptionRepository(db *gorm.DB) domainRepo.PrescriptionRepository {
	return &prescriptionRepository{db: db}
}

func (r *prescriptionRepository) Create(ctx context.Context, prescription *entity.Prescription) error {
	return r.db.WithContext(ctx).Create(prescription).Error
}

// GetByIDForOwner filters by both id and user_id so an owner mismatch is
// indistinguishable from a missing row.
func (r *prescriptionRepository) GetByIDForOwner(ctx context.Context, id, userID uuid.UUID) (*entity.Prescription, error) {
	var prescription entity.Prescription
	err := r.db.WithContext(ctx).
		Preload("Patient").
		First(&prescription, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prescription, nil
}

func (r *prescriptionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.PrescriptionStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Prescription{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *prescriptionRepository) List(ctx context.Context, userID uuid.UUID, params *domainRepo.PrescriptionFilterParams) ([]entity.Prescription, int64, error) {
	var prescriptions []entity.Prescription
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Prescription{}).Where("user_id = ?", userID)

	if params.Search != "" {
		query = query.Where("prescription_number ILIKE ? OR doctor_name ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.PatientID != nil {
		query = query.Where("patient_id = ?", *params.PatientID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Patient").
		Order("created_at DESC").
		Find(&prescriptions).Error

	return prescriptions, total, err
}
