package handler

import (
	"context"
	"net/http"
	"strconv"

	"clinic-frontdesk/internal/delivery/dto"
	"clinic-frontdesk/internal/usecase"
	"clinic-frontdesk/pkg/response"
	"clinic-frontdesk/pkg/validator"

	"github.com/google/uuid"
)

type QueueHandler struct {
	queueUsecase usecase.QueueUsecase
	validator    *validator.CustomValidator
}

func NewQueueHandler(queueUsecase usecase.QueueUsecase, validator *validator.CustomValidator) *QueueHandler {
	return &QueueHandler{
		queueUsecase: queueUsecase,
		validator:    validator,
	}
}

// GetQueue accepts ?advice=true to attach a priority suggestion
func (h *QueueHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := clinicFromRequest(w, r)
	if !ok {
		return
	}

	withAdvice, _ := strconv.ParseBool(r.URL.Query().Get("advice"))
	queue, err := h.queueUsecase.GetQueue(r.Context(), clinicID, withAdvice)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Queue retrieved successfully", queue)
}

func (h *QueueHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := clinicFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.CheckInRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	resp, err := h.queueUsecase.CheckInPatient(r.Context(), clinicID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Patient checked in successfully", resp)
}

// CallPatient takes an optional body with the expected doctor and an
// out-of-turn reason.
func (h *QueueHandler) CallPatient(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := clinicFromRequest(w, r)
	if !ok {
		return
	}
	entryID, ok := pathUUID(w, r, "id", "queue entry")
	if !ok {
		return
	}

	var req dto.CallPatientRequest
	if !decodeOptionalAndValidate(w, r, h.validator, &req) {
		return
	}

	queue, err := h.queueUsecase.CallPatient(r.Context(), clinicID, entryID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Patient called successfully", queue)
}

func (h *QueueHandler) SkipPatient(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.queueUsecase.SkipPatient, "Patient skipped successfully")
}

func (h *QueueHandler) RejoinPatient(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.queueUsecase.RejoinPatient, "Patient rejoined the queue")
}

func (h *QueueHandler) CompletePatient(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.queueUsecase.CompletePatient, "Consultation completed")
}

func (h *QueueHandler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.queueUsecase.MarkNoShow, "Patient marked as no-show")
}

func (h *QueueHandler) ExtendConsultation(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := clinicFromRequest(w, r)
	if !ok {
		return
	}
	entryID, ok := pathUUID(w, r, "id", "queue entry")
	if !ok {
		return
	}

	var req dto.ExtendConsultationRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	resp, err := h.queueUsecase.ExtendConsultation(r.Context(), clinicID, entryID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Consultation extended", resp)
}

type queueTransition func(ctx context.Context, clinicID, entryID uuid.UUID) (*dto.QueueResponse, error)

func (h *QueueHandler) transition(w http.ResponseWriter, r *http.Request, apply queueTransition, message string) {
	clinicID, ok := clinicFromRequest(w, r)
	if !ok {
		return
	}
	entryID, ok := pathUUID(w, r, "id", "queue entry")
	if !ok {
		return
	}

	queue, err := apply(r.Context(), clinicID, entryID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, message, queue)
}
