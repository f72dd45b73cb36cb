package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CallPatientRequest struct {
	DoctorID *uuid.UUID `json:"doctor_id" validate:"omitempty"`
	Reason   *string    `json:"reason" validate:"omitempty,max=500"`
}

type ExtendConsultationRequest struct {
	Minutes int     `json:"minutes" validate:"required,min=1,max=120"`
	Reason  *string `json:"reason" validate:"omitempty,max=500"`
}

// CheckInRequest either links an existing patient or registers a new one
type CheckInRequest struct {
	DoctorID  uuid.UUID        `json:"doctor_id" validate:"required"`
	PatientID *uuid.UUID       `json:"patient_id" validate:"omitempty"`
	Name      string           `json:"name" validate:"required_without=PatientID,omitempty,min=2,max=255"`
	Phone     string           `json:"phone" validate:"omitempty,max=20"`
	Fee       *decimal.Decimal `json:"fee" validate:"omitempty"`
}

// Response DTOs

type QueueEntryResponse struct {
	ID          uuid.UUID  `json:"id"`
	Position    int        `json:"position"`
	TokenNumber int        `json:"token_number"`
	Status      string     `json:"status"`
	DoctorID    uuid.UUID  `json:"doctor_id"`
	DoctorName  string     `json:"doctor_name,omitempty"`
	VisitID     uuid.UUID  `json:"visit_id"`
	PatientID   *uuid.UUID `json:"patient_id,omitempty"`
	PatientName string     `json:"patient_name,omitempty"`
	SessionName string     `json:"session_name"`
	CheckInAt   time.Time  `json:"check_in_at"`
	CalledAt    *time.Time `json:"called_at,omitempty"`
	OutOfTurn   bool       `json:"out_of_turn"`
}

type QueueResponse struct {
	ClinicID uuid.UUID            `json:"clinic_id"`
	Entries  []QueueEntryResponse `json:"entries"`
	Total    int                  `json:"total"`
	Advice   string               `json:"advice,omitempty"`
}

type CheckInResponse struct {
	Entry    QueueEntryResponse `json:"entry"`
	FamilyID string             `json:"family_id,omitempty"`
}

type ExtendConsultationResponse struct {
	EntryID          uuid.UUID `json:"entry_id"`
	ExtensionMinutes int       `json:"extension_minutes"`
	Reason           string    `json:"reason,omitempty"`
	SuggestedReason  string    `json:"suggested_reason,omitempty"`
}
