package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateDoctorRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=255"`
	Specialty       string `json:"specialty" validate:"omitempty,max=100"`
	DailyTokenLimit int    `json:"daily_token_limit" validate:"min=0"`
}

type SetDoctorStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available busy on_leave"`
}

// AddTokensRequest is range-checked by the usecase, not the validator
type AddTokensRequest struct {
	Amount int `json:"amount"`
}

// Response DTOs

type DoctorResponse struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Specialty       string     `json:"specialty,omitempty"`
	Status          string     `json:"status"`
	CurrentSession  string     `json:"current_session,omitempty"`
	SessionActive   bool       `json:"session_active"`
	SessionStarted  *time.Time `json:"session_started,omitempty"`
	DailyTokenLimit int        `json:"daily_token_limit"`
	TokensIssued    int        `json:"tokens_issued"`
	CurrentEntryID  *uuid.UUID `json:"current_entry_id,omitempty"`
	IsActive        bool       `json:"is_active"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
