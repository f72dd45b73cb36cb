package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Visit is one patient encounter inside a doctor's session.
// A patient has at most one visit per session occurrence.
type Visit struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"clinic_id"`
	PatientID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"doctor_id"`
	SessionName      string           `gorm:"type:varchar(100);not null;index" json:"session_name"`
	Status           QueueStatus      `gorm:"type:varchar(20);not null;default:'waiting'" json:"status"`
	CheckInAt        time.Time        `gorm:"not null" json:"check_in_at"`
	CalledAt         *time.Time       `json:"called_at,omitempty"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
	SkippedAt        *time.Time       `json:"skipped_at,omitempty"`
	OutOfTurn        bool             `gorm:"not null;default:false" json:"out_of_turn"`
	OutOfTurnReason  *string          `gorm:"type:text" json:"out_of_turn_reason,omitempty"`
	ExtensionMinutes int              `gorm:"not null;default:0" json:"extension_minutes"`
	ExtensionReason  *string          `gorm:"type:text" json:"extension_reason,omitempty"`
	Fee              *decimal.Decimal `gorm:"type:decimal(12,2)" json:"fee,omitempty"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime" json:"updated_at"`

	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Visit) TableName() string {
	return "visits"
}

// WaitDuration is called - check-in; false when the patient was never called
func (v *Visit) WaitDuration() (time.Duration, bool) {
	if v.CalledAt == nil {
		return 0, false
	}
	return v.CalledAt.Sub(v.CheckInAt), true
}

// ConsultationDuration is completion - called; false unless both are stamped
func (v *Visit) ConsultationDuration() (time.Duration, bool) {
	if v.CalledAt == nil || v.CompletedAt == nil {
		return 0, false
	}
	return v.CompletedAt.Sub(*v.CalledAt), true
}

// FeeOrZero treats a missing fee as zero revenue
func (v *Visit) FeeOrZero() decimal.Decimal {
	if v.Fee == nil {
		return decimal.Zero
	}
	return *v.Fee
}
