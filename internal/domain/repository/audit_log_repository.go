package repository

import (
	"context"
	"time"

	"clinic-frontdesk/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLogFilter narrows a clinic's audit trail. Zero fields match everything.
type AuditLogFilter struct {
	Entity   string
	EntityID string
	Action   string
	Since    time.Time
	Limit    int
}

type AuditLogRepository interface {
	Create(ctx context.Context, db *gorm.DB, log *entity.AuditLog) error
	Find(ctx context.Context, db *gorm.DB, clinicID uuid.UUID, filter AuditLogFilter) ([]entity.AuditLog, error)
	FindByID(ctx context.Context, db *gorm.DB, clinicID uuid.UUID, id int64) (*entity.AuditLog, error)
}
