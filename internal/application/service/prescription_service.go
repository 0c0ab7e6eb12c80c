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

// PrescriptionService handles prescription-related operations
type PrescriptionService struct {
	prescriptionRepo repository.PrescriptionRepository
	patientRepo      repository.PatientRepository
}

// NewPrescriptionService creates a new prescription service
func NewPrescriptionService(
	prescriptionRepo repository.PrescriptionRepository,
	patientRepo repository.PatientRepository,
) *PrescriptionService {
	return &PrescriptionService{
		prescriptionRepo: prescriptionRepo,
		patientRepo:      patientRepo,
	}
}

// CreatePrescriptionInput represents the create prescription input
type CreatePrescriptionInput struct {
	PatientID  *uuid.UUID
	DoctorName string
	Notes      *string
	IssuedAt   time.Time
}

// CreatePrescription registers a new prescription
func (s *PrescriptionService) CreatePrescription(ctx context.Context, userID uuid.UUID, input *CreatePrescriptionInput) (*entity.Prescription, error) {
	if input.PatientID != nil {
		patient, err := s.patientRepo.GetByID(ctx, *input.PatientID)
		if err != nil {
			return nil, err
		}
		if patient == nil || patient.UserID != userID {
			return nil, apperror.NewNotFoundError("Patient")
		}
	}

	issuedAt := input.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	prescription := &entity.Prescription{
		UserID:             userID,
		PatientID:          input.PatientID,
		DoctorName:         input.DoctorName,
		PrescriptionNumber: utils.GeneratePrescriptionNumber(),
		Status:             enum.PrescriptionStatusActive,
		Notes:              input.Notes,
		IssuedAt:           issuedAt,
	}

	if err := s.prescriptionRepo.Create(ctx, prescription); err != nil {
		return nil, err
	}
	return prescription, nil
}

// GetPrescription retrieves a prescription scoped to the owner
func (s *PrescriptionService) GetPrescription(ctx context.Context, userID, id uuid.UUID) (*entity.Prescription, error) {
	prescription, err := s.prescriptionRepo.GetByIDForOwner(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if prescription == nil {
		return nil, apperror.NewPrescriptionNotFoundError(id)
	}
	return prescription, nil
}

// VoidPrescription marks a prescription as voided so it can no longer be billed
func (s *PrescriptionService) VoidPrescription(ctx context.Context, userID, id uuid.UUID) error {
	prescription, err := s.GetPrescription(ctx, userID, id)
	if err != nil {
		return err
	}
	if prescription.Status == enum.PrescriptionStatusVoided {
		return apperror.NewBadRequestError("Prescription is already voided")
	}
	return s.prescriptionRepo.UpdateStatus(ctx, prescription.ID, enum.PrescriptionStatusVoided)
}

// ListPrescriptions lists prescriptions with filtering
func (s *PrescriptionService) ListPrescriptions(ctx context.Context, userID uuid.UUID, params *repository.PrescriptionFilterParams) (*pagination.PaginatedResult[entity.Prescription], error) {
	prescriptions, total, err := s.prescriptionRepo.List(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(prescriptions, pag), nil
}
