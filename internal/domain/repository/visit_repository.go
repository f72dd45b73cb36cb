package repository

import (
	"context"
	"time"

	"clinic-frontdesk/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VisitTransition lists the visit columns a queue transition touches.
// Nil fields are left as they are.
type VisitTransition struct {
	Status          entity.QueueStatus
	CalledAt        *time.Time
	CompletedAt     *time.Time
	SkippedAt       *time.Time
	OutOfTurn       *bool
	OutOfTurnReason *string
}

// VisitRepository lookups by session take the session start time, since
// session names such as "morning" repeat every day. A zero until is open-ended.
type VisitRepository interface {
	Create(ctx context.Context, db *gorm.DB, visit *entity.Visit) error
	FindByID(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID) (*entity.Visit, error)
	FindByPatientAndSession(ctx context.Context, db *gorm.DB, clinicID, patientID, doctorID uuid.UUID, sessionName string, since time.Time) (*entity.Visit, error)
	FindBySession(ctx context.Context, db *gorm.DB, clinicID, doctorID uuid.UUID, sessionName string, since, until time.Time) ([]entity.Visit, error)
	ApplyTransition(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, t VisitTransition) error
	Extend(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, minutes int, reason *string) error
}
