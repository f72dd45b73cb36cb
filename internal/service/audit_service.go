package service

import (
	"context"
	"encoding/json"

	"clinic-frontdesk/internal/domain/entity"
	"clinic-frontdesk/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditRecord describes one transition to append to the audit trail
type AuditRecord struct {
	ClinicID uuid.UUID
	ActorID  *uuid.UUID
	Action   string
	Entity   string
	EntityID string
	OldValue interface{}
	NewValue interface{}
}

type AuditService interface {
	Log(ctx context.Context, db *gorm.DB, record AuditRecord) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

// Log writes the record with db, which may be a transaction handle
func (s *auditService) Log(ctx context.Context, db *gorm.DB, record AuditRecord) error {
	metadata, err := json.Marshal(map[string]interface{}{
		"old_value": record.OldValue,
		"new_value": record.NewValue,
	})
	if err != nil {
		s.log.Warnf("Failed to encode audit metadata for %s: %+v", record.Action, err)
		return err
	}

	auditLog := &entity.AuditLog{
		ClinicID: record.ClinicID,
		ActorID:  record.ActorID,
		Action:   record.Action,
		Entity:   record.Entity,
		EntityID: record.EntityID,
		Metadata: datatypes.JSON(metadata),
	}

	if err := s.auditRepo.Create(ctx, db, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}
