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

type visitRepository struct{}

func NewVisitRepository() domainRepo.VisitRepository {
	return &visitRepository{}
}

func (r *visitRepository) Create(ctx context.Context, db *gorm.DB, visit *entity.Visit) error {
	return translateError(db.WithContext(ctx).Omit("Patient").Create(visit).Error)
}

func (r *visitRepository) FindByID(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID) (*entity.Visit, error) {
	var visit entity.Visit
	err := db.WithContext(ctx).Preload("Patient").
		Where("id = ? AND clinic_id = ?", id, clinicID).
		First(&visit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &visit, nil
}

func (r *visitRepository) FindByPatientAndSession(ctx context.Context, db *gorm.DB, clinicID, patientID, doctorID uuid.UUID, sessionName string, since time.Time) (*entity.Visit, error) {
	var visit entity.Visit
	err := db.WithContext(ctx).
		Where("clinic_id = ? AND patient_id = ? AND doctor_id = ? AND session_name = ? AND check_in_at >= ?", clinicID, patientID, doctorID, sessionName, since).
		First(&visit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &visit, nil
}

func (r *visitRepository) FindBySession(ctx context.Context, db *gorm.DB, clinicID, doctorID uuid.UUID, sessionName string, since, until time.Time) ([]entity.Visit, error) {
	var visits []entity.Visit
	query := db.WithContext(ctx).
		Where("clinic_id = ? AND doctor_id = ? AND session_name = ? AND check_in_at >= ?", clinicID, doctorID, sessionName, since)
	if !until.IsZero() {
		query = query.Where("check_in_at < ?", until)
	}
	err := query.Order("check_in_at ASC, id ASC").Find(&visits).Error
	if err != nil {
		return nil, err
	}
	return visits, nil
}

func (r *visitRepository) ApplyTransition(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, t domainRepo.VisitTransition) error {
	values := map[string]interface{}{
		"status": t.Status,
	}
	if t.CalledAt != nil {
		values["called_at"] = *t.CalledAt
	}
	if t.CompletedAt != nil {
		values["completed_at"] = *t.CompletedAt
	}
	if t.SkippedAt != nil {
		values["skipped_at"] = *t.SkippedAt
	}
	if t.OutOfTurn != nil {
		values["out_of_turn"] = *t.OutOfTurn
	}
	if t.OutOfTurnReason != nil {
		values["out_of_turn_reason"] = *t.OutOfTurnReason
	}

	return db.WithContext(ctx).Model(&entity.Visit{}).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		Updates(values).Error
}

func (r *visitRepository) Extend(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, minutes int, reason *string) error {
	values := map[string]interface{}{
		"extension_minutes": gorm.Expr("extension_minutes + ?", minutes),
	}
	if reason != nil {
		values["extension_reason"] = *reason
	}
	return db.WithContext(ctx).Model(&entity.Visit{}).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		Updates(values).Error
}
