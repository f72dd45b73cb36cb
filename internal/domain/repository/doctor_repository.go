package repository

import (
	"context"
	"time"

	"clinic-frontdesk/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DoctorRepository mutations are conditional updates. They return the number
// of affected rows so callers can detect a lost race (0 rows).
type DoctorRepository interface {
	Create(ctx context.Context, db *gorm.DB, doctor *entity.Doctor) error
	FindByID(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID) (*entity.Doctor, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID) (*entity.Doctor, error)
	FindAll(ctx context.Context, db *gorm.DB, clinicID uuid.UUID) ([]entity.Doctor, error)
	FindWithActiveSession(ctx context.Context, db *gorm.DB) ([]entity.Doctor, error)
	StartSession(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, sessionName string, startedAt time.Time) (int64, error)
	EndSession(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, sessionName string) (int64, error)
	SwapCurrentEntry(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, expected, next *uuid.UUID, status entity.DoctorStatus) (int64, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, expected, next entity.DoctorStatus) (int64, error)
	AddTokenLimit(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, amount int) (int64, error)
	IssueToken(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, sessionName string) (int, error)
	Deactivate(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID) (int64, error)
}
