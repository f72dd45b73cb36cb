package handler

import (
	"net/http"

	"clinic-frontdesk/internal/delivery/dto"
	"clinic-frontdesk/internal/usecase"
	"clinic-frontdesk/pkg/response"
	"clinic-frontdesk/pkg/validator"
)

type PatientHandler struct {
	patientUsecase usecase.PatientUsecase
	validator      *validator.CustomValidator
}

func NewPatientHandler(patientUsecase usecase.PatientUsecase, validator *validator.CustomValidator) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
		validator:      validator,
	}
}

func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := clinicFromRequest(w, r)
	if !ok {
		return
	}
	patientID, ok := pathUUID(w, r, "id", "patient")
	if !ok {
		return
	}

	patient, err := h.patientUsecase.GetPatient(r.Context(), clinicID, patientID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Patient retrieved successfully", patient)
}

func (h *PatientHandler) UpdatePhone(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := clinicFromRequest(w, r)
	if !ok {
		return
	}
	patientID, ok := pathUUID(w, r, "id", "patient")
	if !ok {
		return
	}

	var req dto.UpdatePatientPhoneRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	patient, err := h.patientUsecase.UpdatePatientPhone(r.Context(), clinicID, patientID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Phone updated successfully", patient)
}

func (h *PatientHandler) GetFamily(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := clinicFromRequest(w, r)
	if !ok {
		return
	}
	patientID, ok := pathUUID(w, r, "id", "patient")
	if !ok {
		return
	}

	family, err := h.patientUsecase.GetFamily(r.Context(), clinicID, patientID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Family retrieved successfully", family)
}
