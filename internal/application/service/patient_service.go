package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medsuite/pharmacare-api/internal/domain/entity"
	"github.com/medsuite/pharmacare-api/internal/domain/repository"
	"github.com/medsuite/pharmacare-api/pkg/apperror"
	"github.com/medsuite/pharmacare-api/pkg/pagination"
)

// PatientService handles patient-related operations
type PatientService struct {
	patientRepo repository.PatientRepository
}

// NewPatientService creates a new patient service
func NewPatientService(patientRepo repository.PatientRepository) *PatientService {
	return &PatientService{patientRepo: patientRepo}
}

// PatientInput represents create/update input for a patient
type PatientInput struct {
	Name        string
	PhoneNumber *string
	Email       *string
	Address     *string
}

// CreatePatient creates a new patient record
func (s *PatientService) CreatePatient(ctx context.Context, userID uuid.UUID, input *PatientInput) (*entity.Patient, error) {
	if input.PhoneNumber != nil && *input.PhoneNumber != "" {
		existing, err := s.patientRepo.GetByPhone(ctx, userID, *input.PhoneNumber)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperror.NewConflictError("A patient with this phone number already exists")
		}
	}

	patient := &entity.Patient{
		UserID:      userID,
		Name:        input.Name,
		PhoneNumber: input.PhoneNumber,
		Email:       input.Email,
		Address:     input.Address,
	}

	err := s.patientRepo.Create(ctx, patient)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperror.NewConflictError("A patient with this phone number already exists")
	}
	if err != nil {
		return nil, err
	}
	return patient, nil
}

// GetPatient retrieves a patient by ID
func (s *PatientService) GetPatient(ctx context.Context, userID, id uuid.UUID) (*entity.Patient, error) {
	patient, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patient == nil || patient.UserID != userID {
		return nil, apperror.NewNotFoundError("Patient")
	}
	return patient, nil
}

// UpdatePatient updates a patient record
func (s *PatientService) UpdatePatient(ctx context.Context, userID, id uuid.UUID, input *PatientInput) (*entity.Patient, error) {
	patient, err := s.GetPatient(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	patient.Name = input.Name
	patient.PhoneNumber = input.PhoneNumber
	patient.Email = input.Email
	patient.Address = input.Address

	err = s.patientRepo.Update(ctx, patient)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperror.NewConflictError("A patient with this phone number already exists")
	}
	if err != nil {
		return nil, err
	}
	return patient, nil
}

// DeletePatient deletes a patient record
func (s *PatientService) DeletePatient(ctx context.Context, userID, id uuid.UUID) error {
	patient, err := s.GetPatient(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.patientRepo.Delete(ctx, patient.ID)
}

// ListPatients lists patients with pagination and search
func (s *PatientService) ListPatients(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Patient], error) {
	patients, total, err := s.patientRepo.List(ctx, userID, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(patients, pag), nil
}
