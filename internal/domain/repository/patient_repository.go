package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/medsuite/pharmacare-api/internal/domain/entity"
	"github.com/medsuite/pharmacare-api/pkg/pagination"
)

// PatientRepository defines the interface for patient data operations.
// GetByPhone and Create together back the reconciler's dedup-by-phone
// algorithm; Create surfaces gorm.ErrDuplicatedKey on a phone collision so
// the caller can re-fetch and reuse instead of failing.
type PatientRepository interface {
	Create(ctx context.Context, patient *entity.Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error)
	GetByPhone(ctx context.Context, userID uuid.UUID, phone string) (*entity.Patient, error)
	Update(ctx context.Context, patient *entity.Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, search string) ([]entity.Patient, int64, error)
}
