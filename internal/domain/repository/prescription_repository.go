package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/medsuite/pharmacare-api/internal/domain/entity"
	"github.com/medsuite/pharmacare-api/internal/domain/enum"
	"github.com/medsuite/pharmacare-api/pkg/pagination"
)

// PrescriptionRepository defines the interface for prescription data operations
type PrescriptionRepository interface {
	Create(ctx context.Context, prescription *entity.Prescription) error
	// GetByIDForOwner returns nil, nil when the prescription is absent OR
	// belongs to a different owner; callers cannot distinguish the two.
	GetByIDForOwner(ctx context.Context, id, userID uuid.UUID) (*entity.Prescription, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.PrescriptionStatus) error
	List(ctx context.Context, userID uuid.UUID, params *PrescriptionFilterParams) ([]entity.Prescription, int64, error)
}

// PrescriptionFilterParams contains filtering parameters for prescription queries
type PrescriptionFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.PrescriptionStatus
	PatientID  *uuid.UUID
}
