package repository

import (
	"context"
	"errors"

	"clinic-frontdesk/internal/domain/entity"
	domainRepo "clinic-frontdesk/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type patientRepository struct{}

func NewPatientRepository() domainRepo.PatientRepository {
	return &patientRepository{}
}

func (r *patientRepository) Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error {
	return db.WithContext(ctx).Create(patient).Error
}

func (r *patientRepository) FindByID(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID) (*entity.Patient, error) {
	var patient entity.Patient
	err := db.WithContext(ctx).Where("id = ? AND clinic_id = ?", id, clinicID).First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) FindByPhoneAndName(ctx context.Context, db *gorm.DB, clinicID uuid.UUID, phone, name string) (*entity.Patient, error) {
	var patient entity.Patient
	err := db.WithContext(ctx).
		Where("clinic_id = ? AND phone = ? AND LOWER(name) = LOWER(?)", clinicID, phone, name).
		First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) FindByFamily(ctx context.Context, db *gorm.DB, clinicID uuid.UUID, familyID string) ([]entity.Patient, error) {
	var patients []entity.Patient
	err := db.WithContext(ctx).
		Where("clinic_id = ? AND family_id = ?", clinicID, familyID).
		Order("created_at ASC").
		Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

// UpdatePhone writes phone and family key together so they never diverge
func (r *patientRepository) UpdatePhone(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, phone, familyID string) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Patient{}).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		Updates(map[string]interface{}{
			"phone":     phone,
			"family_id": familyID,
		})
	return result.RowsAffected, result.Error
}
