package converter

import (
	"clinic-frontdesk/internal/delivery/dto"
	"clinic-frontdesk/internal/domain/entity"
)

// DoctorToResponse converts a Doctor entity to DoctorResponse DTO
func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:              doctor.ID,
		Name:            doctor.Name,
		Specialty:       doctor.Specialty,
		Status:          string(doctor.Status),
		CurrentSession:  doctor.CurrentSession,
		SessionActive:   doctor.SessionActive,
		SessionStarted:  doctor.SessionStarted,
		DailyTokenLimit: doctor.DailyTokenLimit,
		TokensIssued:    doctor.TokensIssued,
		CurrentEntryID:  doctor.CurrentEntryID,
		IsActive:        doctor.IsActive,
	}
}

func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i := range doctors {
		responses[i] = *DoctorToResponse(&doctors[i])
	}
	return responses
}
