package converter

import (
	"clinic-frontdesk/internal/delivery/dto"
	"clinic-frontdesk/internal/domain/entity"

	"github.com/samber/lo"
)

// PatientToResponse converts a Patient entity to PatientResponse DTO
func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	return &dto.PatientResponse{
		ID:       patient.ID,
		Name:     patient.Name,
		Phone:    patient.Phone,
		FamilyID: patient.FamilyID,
	}
}

func PatientsToResponses(patients []entity.Patient) []dto.PatientResponse {
	return lo.Map(patients, func(p entity.Patient, _ int) dto.PatientResponse {
		return *PatientToResponse(&p)
	})
}
