package repository

import (
	"context"
	"errors"
	"time"

	"clinic-frontdesk/internal/domain/entity"
	domainRepo "clinic-frontdesk/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type queueEntryRepository struct{}

func NewQueueEntryRepository() domainRepo.QueueEntryRepository {
	return &queueEntryRepository{}
}

func (r *queueEntryRepository) Create(ctx context.Context, db *gorm.DB, entry *entity.QueueEntry) error {
	return translateError(db.WithContext(ctx).Omit("Doctor", "Visit").Create(entry).Error)
}

func (r *queueEntryRepository) FindByID(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID) (*entity.QueueEntry, error) {
	var entry entity.QueueEntry
	err := db.WithContext(ctx).Preload("Visit").
		Where("id = ? AND clinic_id = ?", id, clinicID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// FindLiveByClinic returns waiting and called entries, called first, then by
// check-in time with id as the tie-break.
func (r *queueEntryRepository) FindLiveByClinic(ctx context.Context, db *gorm.DB, clinicID uuid.UUID) ([]entity.QueueEntry, error) {
	var entries []entity.QueueEntry
	err := db.WithContext(ctx).
		Preload("Doctor").Preload("Visit.Patient").
		Where("clinic_id = ? AND status IN ?", clinicID, []entity.QueueStatus{entity.QueueStatusWaiting, entity.QueueStatusCalled}).
		Order("CASE WHEN status = 'called' THEN 0 ELSE 1 END, check_in_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *queueEntryRepository) FindWaitingByDoctor(ctx context.Context, db *gorm.DB, clinicID, doctorID uuid.UUID, sessionName string) ([]entity.QueueEntry, error) {
	var entries []entity.QueueEntry
	err := db.WithContext(ctx).
		Where("clinic_id = ? AND doctor_id = ? AND session_name = ? AND status = ?", clinicID, doctorID, sessionName, entity.QueueStatusWaiting).
		Order("check_in_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// UpdateStatus moves an entry to `to` only while its status is one of `from`
func (r *queueEntryRepository) UpdateStatus(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, from []entity.QueueStatus, to entity.QueueStatus) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.QueueEntry{}).
		Where("id = ? AND clinic_id = ? AND status IN ?", id, clinicID, from).
		Update("status", to)
	return result.RowsAffected, translateError(result.Error)
}

// Rejoin puts the entry back to waiting at the end of the line
func (r *queueEntryRepository) Rejoin(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, from []entity.QueueStatus, checkInAt time.Time) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.QueueEntry{}).
		Where("id = ? AND clinic_id = ? AND status IN ?", id, clinicID, from).
		Updates(map[string]interface{}{
			"status":      entity.QueueStatusWaiting,
			"check_in_at": checkInAt,
		})
	return result.RowsAffected, result.Error
}

func (r *queueEntryRepository) CloseLiveForSession(ctx context.Context, db *gorm.DB, clinicID, doctorID uuid.UUID, sessionName string, to entity.QueueStatus) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.QueueEntry{}).
		Where("clinic_id = ? AND doctor_id = ? AND session_name = ? AND status IN ?",
			clinicID, doctorID, sessionName, []entity.QueueStatus{entity.QueueStatusWaiting, entity.QueueStatusCalled}).
		Update("status", to)
	return result.RowsAffected, result.Error
}
