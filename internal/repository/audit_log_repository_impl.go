package repository

import (
	"context"
	"errors"

	"clinic-frontdesk/internal/domain/entity"
	domainRepo "clinic-frontdesk/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxAuditPage = 500

type auditLogRepository struct{}

func NewAuditLogRepository() domainRepo.AuditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(ctx context.Context, db *gorm.DB, log *entity.AuditLog) error {
	return translateError(db.WithContext(ctx).Create(log).Error)
}

// Find returns the newest entries first, capped at maxAuditPage
func (r *auditLogRepository) Find(ctx context.Context, db *gorm.DB, clinicID uuid.UUID, filter domainRepo.AuditLogFilter) ([]entity.AuditLog, error) {
	query := db.WithContext(ctx).Where("clinic_id = ?", clinicID)
	if filter.Entity != "" {
		query = query.Where("entity = ?", filter.Entity)
	}
	if filter.EntityID != "" {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since)
	}

	limit := filter.Limit
	if limit <= 0 || limit > maxAuditPage {
		limit = maxAuditPage
	}

	var logs []entity.AuditLog
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *auditLogRepository) FindByID(ctx context.Context, db *gorm.DB, clinicID uuid.UUID, id int64) (*entity.AuditLog, error) {
	var log entity.AuditLog
	err := db.WithContext(ctx).Where("id = ? AND clinic_id = ?", id, clinicID).First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}
