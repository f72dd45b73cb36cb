package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog is an append-only trail of front-desk transitions
type AuditLog struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ClinicID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"clinic_id"`
	ActorID   *uuid.UUID     `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	Action    string         `gorm:"type:varchar(100);not null;index" json:"action"`
	Entity    string         `gorm:"type:varchar(50);not null" json:"entity"`
	EntityID  string         `gorm:"type:varchar(64);not null;index" json:"entity_id"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Common audit actions
const (
	AuditActionPatientCheckIn   = "queue.checkin"
	AuditActionPatientCall      = "queue.call"
	AuditActionPatientSkip      = "queue.skip"
	AuditActionPatientRejoin    = "queue.rejoin"
	AuditActionPatientComplete  = "queue.complete"
	AuditActionPatientNoShow    = "queue.no_show"
	AuditActionConsultExtend    = "queue.extend"
	AuditActionSessionStart     = "session.start"
	AuditActionSessionEnd       = "session.end"
	AuditActionTokensAdd        = "doctor.tokens_add"
	AuditActionDoctorStatus     = "doctor.status"
	AuditActionDoctorCreate     = "doctor.create"
	AuditActionDoctorDeactivate = "doctor.deactivate"
	AuditActionPatientPhoneEdit = "patient.phone_update"
)
