package usecase

import (
	"context"

	"clinic-frontdesk/internal/converter"
	"clinic-frontdesk/internal/delivery/dto"
	"clinic-frontdesk/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditLogUsecase reads a clinic's audit trail. Writes go through
// service.AuditService as a side effect of each transition.
type AuditLogUsecase interface {
	ListAuditLogs(ctx context.Context, clinicID uuid.UUID, query dto.AuditLogQuery) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, clinicID uuid.UUID, id int64) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(db *gorm.DB, log *logrus.Logger, auditLogRepo repository.AuditLogRepository) AuditLogUsecase {
	return &auditLogUsecase{db: db, log: log, auditLogRepo: auditLogRepo}
}

func (u *auditLogUsecase) ListAuditLogs(ctx context.Context, clinicID uuid.UUID, query dto.AuditLogQuery) (*dto.AuditLogListResponse, error) {
	filter := repository.AuditLogFilter{
		Entity:   query.Entity,
		EntityID: query.EntityID,
		Action:   query.Action,
		Limit:    query.Limit,
	}
	if query.Since != nil {
		filter.Since = *query.Since
	}

	logs, err := u.auditLogRepo.Find(ctx, u.db, clinicID, filter)
	if err != nil {
		u.log.Warnf("Failed to list audit logs for clinic %s: %+v", clinicID, err)
		return nil, storeError(err)
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, clinicID uuid.UUID, id int64) (*dto.AuditLogResponse, error) {
	auditLog, err := u.auditLogRepo.FindByID(ctx, u.db, clinicID, id)
	if err != nil {
		u.log.Warnf("Failed to find audit log %d: %+v", id, err)
		return nil, storeError(err)
	}
	if auditLog == nil {
		return nil, ErrAuditLogNotFound
	}

	return converter.AuditLogToResponse(auditLog), nil
}
