package repository

import (
	"context"
	"time"

	"clinic-frontdesk/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QueueEntryRepository is the per-clinic queue entry store. Every query and
// write is scoped by clinic id.
type QueueEntryRepository interface {
	Create(ctx context.Context, db *gorm.DB, entry *entity.QueueEntry) error
	FindByID(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID) (*entity.QueueEntry, error)
	FindLiveByClinic(ctx context.Context, db *gorm.DB, clinicID uuid.UUID) ([]entity.QueueEntry, error)
	FindWaitingByDoctor(ctx context.Context, db *gorm.DB, clinicID, doctorID uuid.UUID, sessionName string) ([]entity.QueueEntry, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, from []entity.QueueStatus, to entity.QueueStatus) (int64, error)
	Rejoin(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, from []entity.QueueStatus, checkInAt time.Time) (int64, error)
	CloseLiveForSession(ctx context.Context, db *gorm.DB, clinicID, doctorID uuid.UUID, sessionName string, to entity.QueueStatus) (int64, error)
}
