package repository

import (
	"context"

	"clinic-frontdesk/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientRepository interface {
	Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error
	FindByID(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID) (*entity.Patient, error)
	FindByPhoneAndName(ctx context.Context, db *gorm.DB, clinicID uuid.UUID, phone, name string) (*entity.Patient, error)
	FindByFamily(ctx context.Context, db *gorm.DB, clinicID uuid.UUID, familyID string) ([]entity.Patient, error)
	UpdatePhone(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, phone, familyID string) (int64, error)
}
