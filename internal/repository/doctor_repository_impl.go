package repository

import (
	"context"
	"errors"
	"time"

	"clinic-frontdesk/internal/domain/entity"
	domainRepo "clinic-frontdesk/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type doctorRepository struct{}

func NewDoctorRepository() domainRepo.DoctorRepository {
	return &doctorRepository{}
}

// keepLeave leaves an on-leave doctor on leave and otherwise sets next
func keepLeave(next entity.DoctorStatus) clause.Expr {
	return gorm.Expr("CASE WHEN status = ? THEN status ELSE ? END", entity.DoctorStatusOnLeave, next)
}

func (r *doctorRepository) Create(ctx context.Context, db *gorm.DB, doctor *entity.Doctor) error {
	return db.WithContext(ctx).Create(doctor).Error
}

func (r *doctorRepository) FindByID(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := db.WithContext(ctx).Where("id = ? AND clinic_id = ?", id, clinicID).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

// FindByIDForUpdate locks the doctor row for the rest of the transaction.
// All call transitions for one doctor serialize on this lock.
func (r *doctorRepository) FindByIDForUpdate(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) FindAll(ctx context.Context, db *gorm.DB, clinicID uuid.UUID) ([]entity.Doctor, error) {
	var doctors []entity.Doctor
	err := db.WithContext(ctx).Where("clinic_id = ?", clinicID).Order("name ASC").Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

// FindWithActiveSession is used by the token gate re-sync and spans clinics
func (r *doctorRepository) FindWithActiveSession(ctx context.Context, db *gorm.DB) ([]entity.Doctor, error) {
	var doctors []entity.Doctor
	err := db.WithContext(ctx).
		Where("session_active = ? AND is_active = ?", true, true).
		Order("id").
		Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

// StartSession opens a session only when none is active
func (r *doctorRepository) StartSession(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, sessionName string, startedAt time.Time) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Doctor{}).
		Where("id = ? AND clinic_id = ? AND is_active = ? AND session_active = ?", id, clinicID, true, false).
		Updates(map[string]interface{}{
			"current_session":  sessionName,
			"session_active":   true,
			"session_started":  startedAt,
			"tokens_issued":    0,
			"current_entry_id": nil,
			"status":           keepLeave(entity.DoctorStatusAvailable),
		})
	return result.RowsAffected, result.Error
}

// EndSession closes the named session. 0 rows means it was not the active one.
func (r *doctorRepository) EndSession(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, sessionName string) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Doctor{}).
		Where("id = ? AND clinic_id = ? AND session_active = ? AND current_session = ?", id, clinicID, true, sessionName).
		Updates(map[string]interface{}{
			"session_active":   false,
			"current_entry_id": nil,
			"status":           keepLeave(entity.DoctorStatusAvailable),
		})
	return result.RowsAffected, result.Error
}

// SwapCurrentEntry moves the in-consultation pointer from expected to next.
// A nil expected matches only a doctor with no current entry.
func (r *doctorRepository) SwapCurrentEntry(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, expected, next *uuid.UUID, status entity.DoctorStatus) (int64, error) {
	query := db.WithContext(ctx).Model(&entity.Doctor{}).
		Where("id = ? AND clinic_id = ?", id, clinicID)
	if expected == nil {
		query = query.Where("current_entry_id IS NULL")
	} else {
		query = query.Where("current_entry_id = ?", *expected)
	}

	result := query.Updates(map[string]interface{}{
		"current_entry_id": next,
		"status":           keepLeave(status),
	})
	return result.RowsAffected, result.Error
}

func (r *doctorRepository) UpdateStatus(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, expected, next entity.DoctorStatus) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Doctor{}).
		Where("id = ? AND clinic_id = ? AND status = ?", id, clinicID, expected).
		Update("status", next)
	return result.RowsAffected, result.Error
}

func (r *doctorRepository) AddTokenLimit(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, amount int) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Doctor{}).
		Where("id = ? AND clinic_id = ? AND is_active = ?", id, clinicID, true).
		Update("daily_token_limit", gorm.Expr("daily_token_limit + ?", amount))
	return result.RowsAffected, result.Error
}

// IssueToken atomically takes the next token of the active session.
// Returns 0 when the session is not active or the limit is reached.
func (r *doctorRepository) IssueToken(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, sessionName string) (int, error) {
	var issued []int
	err := db.WithContext(ctx).Raw(`
		UPDATE doctors
		SET tokens_issued = tokens_issued + 1, updated_at = NOW()
		WHERE id = ? AND clinic_id = ? AND session_active = TRUE AND current_session = ?
		  AND tokens_issued < daily_token_limit
		RETURNING tokens_issued`, id, clinicID, sessionName).
		Scan(&issued).Error
	if err != nil {
		return 0, err
	}
	if len(issued) == 0 {
		return 0, nil
	}
	return issued[0], nil
}

// Deactivate only matches an active doctor with no open session
func (r *doctorRepository) Deactivate(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Doctor{}).
		Where("id = ? AND clinic_id = ? AND is_active = ? AND session_active = ?", id, clinicID, true, false).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
