package dto

import "github.com/google/uuid"

// Request DTOs

type UpdatePatientPhoneRequest struct {
	Phone string `json:"phone" validate:"required,min=3,max=20"`
}

// Response DTOs

type PatientResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone,omitempty"`
	FamilyID string    `json:"family_id,omitempty"`
}

type FamilyResponse struct {
	FamilyID string            `json:"family_id"`
	Members  []PatientResponse `json:"members"`
	Total    int               `json:"total"`
}
