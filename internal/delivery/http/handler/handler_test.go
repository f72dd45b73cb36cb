package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clinic-frontdesk/internal/delivery/dto"
	"clinic-frontdesk/internal/delivery/http/middleware"
	"clinic-frontdesk/internal/usecase"
	"clinic-frontdesk/pkg/apperror"
	"clinic-frontdesk/pkg/response"
	"clinic-frontdesk/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type stubQueueUsecase struct {
	err        error
	withAdvice bool
	clinicID   uuid.UUID
	entryID    uuid.UUID
	callReq    *dto.CallPatientRequest
}

func (s *stubQueueUsecase) queue() (*dto.QueueResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.QueueResponse{ClinicID: s.clinicID, Entries: []dto.QueueEntryResponse{}}, nil
}

func (s *stubQueueUsecase) GetQueue(ctx context.Context, clinicID uuid.UUID, withAdvice bool) (*dto.QueueResponse, error) {
	s.clinicID, s.withAdvice = clinicID, withAdvice
	return s.queue()
}

func (s *stubQueueUsecase) CheckInPatient(ctx context.Context, clinicID uuid.UUID, req *dto.CheckInRequest) (*dto.CheckInResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.CheckInResponse{Entry: dto.QueueEntryResponse{DoctorID: req.DoctorID, TokenNumber: 1}}, nil
}

func (s *stubQueueUsecase) CallPatient(ctx context.Context, clinicID, entryID uuid.UUID, req *dto.CallPatientRequest) (*dto.QueueResponse, error) {
	s.clinicID, s.entryID, s.callReq = clinicID, entryID, req
	return s.queue()
}

func (s *stubQueueUsecase) SkipPatient(ctx context.Context, clinicID, entryID uuid.UUID) (*dto.QueueResponse, error) {
	s.clinicID, s.entryID = clinicID, entryID
	return s.queue()
}

func (s *stubQueueUsecase) RejoinPatient(ctx context.Context, clinicID, entryID uuid.UUID) (*dto.QueueResponse, error) {
	s.clinicID, s.entryID = clinicID, entryID
	return s.queue()
}

func (s *stubQueueUsecase) CompletePatient(ctx context.Context, clinicID, entryID uuid.UUID) (*dto.QueueResponse, error) {
	s.clinicID, s.entryID = clinicID, entryID
	return s.queue()
}

func (s *stubQueueUsecase) MarkNoShow(ctx context.Context, clinicID, entryID uuid.UUID) (*dto.QueueResponse, error) {
	s.clinicID, s.entryID = clinicID, entryID
	return s.queue()
}

func (s *stubQueueUsecase) ExtendConsultation(ctx context.Context, clinicID, entryID uuid.UUID, req *dto.ExtendConsultationRequest) (*dto.ExtendConsultationResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ExtendConsultationResponse{EntryID: entryID, ExtensionMinutes: req.Minutes}, nil
}

type stubSessionUsecase struct {
	err    error
	on     *time.Time
	name   string
	amount int
}

func (s *stubSessionUsecase) doctor() (*dto.DoctorResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.DoctorResponse{}, nil
}

func (s *stubSessionUsecase) StartSession(ctx context.Context, clinicID, doctorID uuid.UUID, sessionName string) (*dto.DoctorResponse, error) {
	s.name = sessionName
	return s.doctor()
}

func (s *stubSessionUsecase) EndSession(ctx context.Context, clinicID, doctorID uuid.UUID, sessionName string) (*dto.EndSessionResponse, error) {
	s.name = sessionName
	if s.err != nil {
		return nil, s.err
	}
	return &dto.EndSessionResponse{}, nil
}

func (s *stubSessionUsecase) GetSessionStats(ctx context.Context, clinicID, doctorID uuid.UUID, sessionName string, on *time.Time) (*dto.SessionStatsResponse, error) {
	s.name, s.on = sessionName, on
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SessionStatsResponse{SessionName: sessionName}, nil
}

func (s *stubSessionUsecase) SetDoctorStatus(ctx context.Context, clinicID, doctorID uuid.UUID, status string) (*dto.DoctorResponse, error) {
	return s.doctor()
}

func (s *stubSessionUsecase) EndLeave(ctx context.Context, clinicID, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	return s.doctor()
}

func (s *stubSessionUsecase) AddTokens(ctx context.Context, clinicID, doctorID uuid.UUID, amount int) (*dto.DoctorResponse, error) {
	s.amount = amount
	return s.doctor()
}

func newQueueRouter(uc usecase.QueueUsecase) *mux.Router {
	h := NewQueueHandler(uc, validator.NewValidator())
	r := mux.NewRouter()
	r.HandleFunc("/queue", h.GetQueue).Methods(http.MethodGet)
	r.HandleFunc("/queue/checkin", h.CheckIn).Methods(http.MethodPost)
	r.HandleFunc("/queue/{id}/call", h.CallPatient).Methods(http.MethodPost)
	r.HandleFunc("/queue/{id}/skip", h.SkipPatient).Methods(http.MethodPost)
	r.HandleFunc("/queue/{id}/extend", h.ExtendConsultation).Methods(http.MethodPost)
	return r
}

func newSessionRouter(uc usecase.DoctorSessionUsecase) *mux.Router {
	h := NewSessionHandler(uc, validator.NewValidator())
	r := mux.NewRouter()
	r.HandleFunc("/doctors/{id}/sessions/end", h.EndSession).Methods(http.MethodPost)
	r.HandleFunc("/doctors/{id}/sessions/{name}/stats", h.GetSessionStats).Methods(http.MethodGet)
	r.HandleFunc("/doctors/{id}/tokens", h.AddTokens).Methods(http.MethodPost)
	return r
}

func serve(router http.Handler, method, path, body string, clinicID uuid.UUID) (*httptest.ResponseRecorder, response.Response) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if clinicID != uuid.Nil {
		req = req.WithContext(middleware.WithClinicID(req.Context(), clinicID))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp response.Response
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func TestQueueHandler_GetQueue(t *testing.T) {
	uc := &stubQueueUsecase{}
	router := newQueueRouter(uc)
	clinicID := uuid.New()

	rec, _ := serve(router, http.MethodGet, "/queue", "", uuid.Nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without clinic, got %d", rec.Code)
	}

	rec, resp := serve(router, http.MethodGet, "/queue?advice=true", "", clinicID)
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if uc.clinicID != clinicID || !uc.withAdvice {
		t.Errorf("usecase got clinic=%s advice=%t", uc.clinicID, uc.withAdvice)
	}
}

func TestQueueHandler_CallPatient(t *testing.T) {
	clinicID, entryID, doctorID := uuid.New(), uuid.New(), uuid.New()

	t.Run("without body", func(t *testing.T) {
		uc := &stubQueueUsecase{}
		rec, _ := serve(newQueueRouter(uc), http.MethodPost, "/queue/"+entryID.String()+"/call", "", clinicID)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if uc.entryID != entryID || uc.callReq == nil || uc.callReq.DoctorID != nil {
			t.Errorf("unexpected call %s %+v", uc.entryID, uc.callReq)
		}
	})

	t.Run("with doctor and reason", func(t *testing.T) {
		uc := &stubQueueUsecase{}
		body := `{"doctor_id":"` + doctorID.String() + `","reason":"fever"}`
		rec, _ := serve(newQueueRouter(uc), http.MethodPost, "/queue/"+entryID.String()+"/call", body, clinicID)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if uc.callReq.DoctorID == nil || *uc.callReq.DoctorID != doctorID || *uc.callReq.Reason != "fever" {
			t.Errorf("unexpected request %+v", uc.callReq)
		}
	})

	t.Run("empty body of unknown length", func(t *testing.T) {
		uc := &stubQueueUsecase{}
		req := httptest.NewRequest(http.MethodPost, "/queue/"+entryID.String()+"/call", io.MultiReader(strings.NewReader("")))
		if req.ContentLength != -1 {
			t.Fatalf("expected unknown content length, got %d", req.ContentLength)
		}
		req = req.WithContext(middleware.WithClinicID(req.Context(), clinicID))

		rec := httptest.NewRecorder()
		newQueueRouter(uc).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if uc.callReq == nil || uc.callReq.DoctorID != nil {
			t.Errorf("expected empty call request, got %+v", uc.callReq)
		}
	})

	t.Run("malformed body of unknown length", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/queue/"+entryID.String()+"/call", io.MultiReader(strings.NewReader("{")))
		req = req.WithContext(middleware.WithClinicID(req.Context(), clinicID))

		rec := httptest.NewRecorder()
		newQueueRouter(&stubQueueUsecase{}).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		rec, _ := serve(newQueueRouter(&stubQueueUsecase{}), http.MethodPost, "/queue/not-a-uuid/call", "", clinicID)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestQueueHandler_MapsErrors(t *testing.T) {
	clinicID, entryID := uuid.New(), uuid.New()

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{name: "lost race", err: usecase.ErrCallRaced, status: http.StatusConflict, code: "conflict", message: "patient already called by another session - refresh queue"},
		{name: "wrong state", err: usecase.ErrEntryNotSkippable, status: http.StatusConflict, code: "invalid_state"},
		{name: "missing entry", err: usecase.ErrQueueEntryNotFound, status: http.StatusNotFound, code: "not_found"},
		{name: "store down", err: apperror.Wrap(apperror.KindUnavailable, "clinic store unavailable", errors.New("dial tcp")), status: http.StatusServiceUnavailable, code: "unavailable", message: "Service temporarily unavailable, please retry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubQueueUsecase{err: tt.err}
			rec, resp := serve(newQueueRouter(uc), http.MethodPost, "/queue/"+entryID.String()+"/skip", "", clinicID)
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
			if resp.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, resp.Code)
			}
			if tt.message != "" && resp.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, resp.Message)
			}
			if strings.Contains(rec.Body.String(), "dial tcp") {
				t.Error("infrastructure details leaked to the client")
			}
		})
	}
}

func TestQueueHandler_CheckInValidation(t *testing.T) {
	router := newQueueRouter(&stubQueueUsecase{})
	clinicID := uuid.New()

	rec, resp := serve(router, http.MethodPost, "/queue/checkin", `{"doctor_id":"`+uuid.New().String()+`"}`, clinicID)
	if rec.Code != http.StatusBadRequest || resp.Message != "Validation failed" {
		t.Errorf("expected validation failure, got %d %q", rec.Code, resp.Message)
	}

	rec, _ = serve(router, http.MethodPost, "/queue/checkin", `{"doctor_id":"`+uuid.New().String()+`","name":"Asha"}`, clinicID)
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec, _ = serve(router, http.MethodPost, "/queue/checkin", `{bad json`, clinicID)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestQueueHandler_ExtendValidation(t *testing.T) {
	router := newQueueRouter(&stubQueueUsecase{})
	path := "/queue/" + uuid.New().String() + "/extend"

	rec, _ := serve(router, http.MethodPost, path, `{"minutes":0}`, uuid.New())
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for zero minutes, got %d", rec.Code)
	}
	rec, _ = serve(router, http.MethodPost, path, `{"minutes":10}`, uuid.New())
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestSessionHandler_GetSessionStats(t *testing.T) {
	uc := &stubSessionUsecase{}
	router := newSessionRouter(uc)
	base := "/doctors/" + uuid.New().String() + "/sessions/Morning/stats"

	rec, _ := serve(router, http.MethodGet, base+"?date=2026-03-02", "", uuid.New())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if uc.name != "Morning" || uc.on == nil || uc.on.Day() != 2 {
		t.Errorf("unexpected stats request name=%q on=%v", uc.name, uc.on)
	}

	rec, _ = serve(router, http.MethodGet, base+"?date=02/03/2026", "", uuid.New())
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad date, got %d", rec.Code)
	}
}

func TestSessionHandler_EndSessionAndTokens(t *testing.T) {
	doctorPath := "/doctors/" + uuid.New().String()

	uc := &stubSessionUsecase{err: usecase.ErrSessionMismatch}
	rec, resp := serve(newSessionRouter(uc), http.MethodPost, doctorPath+"/sessions/end", `{"session_name":"Morning"}`, uuid.New())
	if rec.Code != http.StatusConflict || resp.Code != "invalid_state" {
		t.Errorf("expected 409 invalid_state, got %d %s", rec.Code, resp.Code)
	}

	rec, _ = serve(newSessionRouter(&stubSessionUsecase{}), http.MethodPost, doctorPath+"/sessions/end", `{}`, uuid.New())
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without session name, got %d", rec.Code)
	}

	uc = &stubSessionUsecase{err: usecase.ErrInvalidTokenAmount}
	rec, resp = serve(newSessionRouter(uc), http.MethodPost, doctorPath+"/tokens", `{"amount":0}`, uuid.New())
	if rec.Code != http.StatusBadRequest || resp.Code != "invalid_argument" {
		t.Errorf("expected 400 invalid_argument, got %d %s", rec.Code, resp.Code)
	}
	if uc.amount != 0 {
		t.Errorf("expected amount passed through, got %d", uc.amount)
	}
}

type stubAuditLogUsecase struct {
	query dto.AuditLogQuery
	err   error
}

func (s *stubAuditLogUsecase) ListAuditLogs(ctx context.Context, clinicID uuid.UUID, query dto.AuditLogQuery) (*dto.AuditLogListResponse, error) {
	s.query = query
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AuditLogListResponse{Logs: []dto.AuditLogResponse{}}, nil
}

func (s *stubAuditLogUsecase) GetAuditLog(ctx context.Context, clinicID uuid.UUID, id int64) (*dto.AuditLogResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AuditLogResponse{ID: id}, nil
}

func TestAuditLogHandler_ListAuditLogs(t *testing.T) {
	clinicID, entryID := uuid.New(), uuid.New()
	newRouter := func(uc *stubAuditLogUsecase) *mux.Router {
		h := NewAuditLogHandler(uc, validator.NewValidator())
		r := mux.NewRouter()
		r.HandleFunc("/audit-logs", h.ListAuditLogs).Methods(http.MethodGet)
		r.HandleFunc("/audit-logs/{id}", h.GetAuditLog).Methods(http.MethodGet)
		return r
	}

	uc := &stubAuditLogUsecase{}
	path := "/audit-logs?entity=queue_entry&entity_id=" + entryID.String() + "&since=2026-03-02T08:00:00Z&limit=20"
	rec, _ := serve(newRouter(uc), http.MethodGet, path, "", clinicID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if uc.query.Entity != "queue_entry" || uc.query.EntityID != entryID.String() || uc.query.Limit != 20 {
		t.Errorf("unexpected query %+v", uc.query)
	}
	if uc.query.Since == nil || !uc.query.Since.Equal(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected since %v", uc.query.Since)
	}

	tests := []struct {
		name string
		path string
		want int
	}{
		{"unknown entity", "/audit-logs?entity=invoice", http.StatusBadRequest},
		{"bad since", "/audit-logs?since=yesterday", http.StatusBadRequest},
		{"limit too large", "/audit-logs?limit=10000", http.StatusBadRequest},
		{"non numeric id", "/audit-logs/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := serve(newRouter(&stubAuditLogUsecase{}), http.MethodGet, tt.path, "", clinicID)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}

	missing := &stubAuditLogUsecase{err: usecase.ErrAuditLogNotFound}
	rec, _ = serve(newRouter(missing), http.MethodGet, "/audit-logs/42", "", clinicID)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
