package converter

import (
	"clinic-frontdesk/internal/delivery/dto"
	"clinic-frontdesk/internal/domain/entity"

	"github.com/google/uuid"
)

// QueueEntryToResponse converts a QueueEntry entity to QueueEntryResponse DTO.
// Position is 1-based and only meaningful inside a queue snapshot.
func QueueEntryToResponse(entry *entity.QueueEntry, position int) *dto.QueueEntryResponse {
	if entry == nil {
		return nil
	}

	resp := &dto.QueueEntryResponse{
		ID:          entry.ID,
		Position:    position,
		TokenNumber: entry.TokenNumber,
		Status:      string(entry.Status),
		DoctorID:    entry.DoctorID,
		VisitID:     entry.VisitID,
		SessionName: entry.SessionName,
		CheckInAt:   entry.CheckInAt,
	}
	if entry.Doctor != nil {
		resp.DoctorName = entry.Doctor.Name
	}
	if entry.Visit != nil {
		patientID := entry.Visit.PatientID
		resp.PatientID = &patientID
		resp.CalledAt = entry.Visit.CalledAt
		resp.OutOfTurn = entry.Visit.OutOfTurn
		if entry.Visit.Patient != nil {
			resp.PatientName = entry.Visit.Patient.Name
		}
	}
	return resp
}

// QueueToResponse expects entries already in display order
func QueueToResponse(clinicID uuid.UUID, entries []entity.QueueEntry) *dto.QueueResponse {
	responses := make([]dto.QueueEntryResponse, len(entries))
	for i := range entries {
		responses[i] = *QueueEntryToResponse(&entries[i], i+1)
	}
	return &dto.QueueResponse{
		ClinicID: clinicID,
		Entries:  responses,
		Total:    len(entries),
	}
}
