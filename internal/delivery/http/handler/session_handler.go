package handler

import (
	"net/http"
	"time"

	"clinic-frontdesk/internal/delivery/dto"
	"clinic-frontdesk/internal/usecase"
	"clinic-frontdesk/pkg/response"
	"clinic-frontdesk/pkg/validator"

	"github.com/gorilla/mux"
)

type SessionHandler struct {
	sessionUsecase usecase.DoctorSessionUsecase
	validator      *validator.CustomValidator
}

func NewSessionHandler(sessionUsecase usecase.DoctorSessionUsecase, validator *validator.CustomValidator) *SessionHandler {
	return &SessionHandler{
		sessionUsecase: sessionUsecase,
		validator:      validator,
	}
}

func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := clinicFromRequest(w, r)
	if !ok {
		return
	}
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	var req dto.SessionRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	doctor, err := h.sessionUsecase.StartSession(r.Context(), clinicID, doctorID, req.SessionName)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Session started", doctor)
}

func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := clinicFromRequest(w, r)
	if !ok {
		return
	}
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	var req dto.SessionRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	resp, err := h.sessionUsecase.EndSession(r.Context(), clinicID, doctorID, req.SessionName)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Session ended", resp)
}

// GetSessionStats accepts ?date=YYYY-MM-DD to pick a past occurrence
func (h *SessionHandler) GetSessionStats(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := clinicFromRequest(w, r)
	if !ok {
		return
	}
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	var on *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		day, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			response.BadRequest(w, "Invalid date format, use YYYY-MM-DD")
			return
		}
		on = &day
	}

	stats, err := h.sessionUsecase.GetSessionStats(r.Context(), clinicID, doctorID, mux.Vars(r)["name"], on)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Session statistics retrieved successfully", stats)
}

func (h *SessionHandler) SetDoctorStatus(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := clinicFromRequest(w, r)
	if !ok {
		return
	}
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	var req dto.SetDoctorStatusRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	doctor, err := h.sessionUsecase.SetDoctorStatus(r.Context(), clinicID, doctorID, req.Status)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Doctor status updated", doctor)
}

func (h *SessionHandler) EndLeave(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := clinicFromRequest(w, r)
	if !ok {
		return
	}
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	doctor, err := h.sessionUsecase.EndLeave(r.Context(), clinicID, doctorID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Leave ended", doctor)
}

func (h *SessionHandler) AddTokens(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := clinicFromRequest(w, r)
	if !ok {
		return
	}
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	var req dto.AddTokensRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	doctor, err := h.sessionUsecase.AddTokens(r.Context(), clinicID, doctorID, req.Amount)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Tokens added", doctor)
}
