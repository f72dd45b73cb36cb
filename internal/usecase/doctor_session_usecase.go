package usecase

import (
	"context"
	"strings"
	"time"

	"clinic-frontdesk/internal/converter"
	"clinic-frontdesk/internal/delivery/dto"
	"clinic-frontdesk/internal/domain/entity"
	"clinic-frontdesk/internal/domain/repository"
	"clinic-frontdesk/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DoctorSessionUsecase owns the doctor's working session, availability and
// token capacity.
type DoctorSessionUsecase interface {
	StartSession(ctx context.Context, clinicID, doctorID uuid.UUID, sessionName string) (*dto.DoctorResponse, error)
	EndSession(ctx context.Context, clinicID, doctorID uuid.UUID, sessionName string) (*dto.EndSessionResponse, error)
	GetSessionStats(ctx context.Context, clinicID, doctorID uuid.UUID, sessionName string, on *time.Time) (*dto.SessionStatsResponse, error)
	SetDoctorStatus(ctx context.Context, clinicID, doctorID uuid.UUID, status string) (*dto.DoctorResponse, error)
	EndLeave(ctx context.Context, clinicID, doctorID uuid.UUID) (*dto.DoctorResponse, error)
	AddTokens(ctx context.Context, clinicID, doctorID uuid.UUID, amount int) (*dto.DoctorResponse, error)
}

type doctorSessionUsecase struct {
	db         *gorm.DB
	log        *logrus.Logger
	tx         repository.Transactor
	doctorRepo repository.DoctorRepository
	entryRepo  repository.QueueEntryRepository
	visitRepo  repository.VisitRepository
	integ      Integrations
	effects    sideEffects
	now        func() time.Time
}

func NewDoctorSessionUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	tx repository.Transactor,
	doctorRepo repository.DoctorRepository,
	entryRepo repository.QueueEntryRepository,
	visitRepo repository.VisitRepository,
	integ Integrations,
) DoctorSessionUsecase {
	return &doctorSessionUsecase{
		db:         db,
		log:        log,
		tx:         tx,
		doctorRepo: doctorRepo,
		entryRepo:  entryRepo,
		visitRepo:  visitRepo,
		integ:      integ,
		effects:    newSideEffects(log),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// StartSession opens a named session and resets the token counter. Starting
// the session that is already open is a no-op.
func (u *doctorSessionUsecase) StartSession(ctx context.Context, clinicID, doctorID uuid.UUID, sessionName string) (*dto.DoctorResponse, error) {
	sessionName = strings.TrimSpace(sessionName)
	if sessionName == "" {
		return nil, ErrSessionNameRequired
	}

	doctor, err := u.findDoctor(ctx, clinicID, doctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.IsActive {
		return nil, ErrDoctorInactive
	}
	if doctor.SessionActive {
		if doctor.CurrentSession == sessionName {
			return converter.DoctorToResponse(doctor), nil
		}
		return nil, ErrSessionActive
	}

	rows, err := u.doctorRepo.StartSession(ctx, u.db, clinicID, doctorID, sessionName, u.now())
	if err != nil {
		u.log.Warnf("Failed to start session %q for doctor %s: %+v", sessionName, doctorID, err)
		return nil, storeError(err)
	}

	doctor, err = u.findDoctor(ctx, clinicID, doctorID)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		switch {
		case doctor.HasActiveSession(sessionName):
			return converter.DoctorToResponse(doctor), nil
		case doctor.SessionActive:
			return nil, ErrSessionActive
		default:
			return nil, ErrSessionRaced
		}
	}

	u.effects.run(ctx,
		sideEffect{name: "prime token gate", run: func(ctx context.Context) error {
			return u.integ.Tokens.Prime(ctx, doctor)
		}},
		auditEffect(ctx, u.integ, u.db, clinicID, entity.AuditActionSessionStart, "doctor", doctorID.String(), nil,
			map[string]interface{}{"session_name": sessionName, "daily_token_limit": doctor.DailyTokenLimit}),
		eventEffect(u.integ, service.QueueEvent{
			Type: service.EventSessionStarted, ClinicID: clinicID, DoctorID: doctorID,
			SessionName: sessionName, Status: string(doctor.Status),
		}),
	)

	u.log.Infof("Session started: doctor=%s, session=%q", doctorID, sessionName)
	return converter.DoctorToResponse(doctor), nil
}

// EndSession aggregates the session's visits, closes whatever is still live
// and clears the active-session marker in one transaction. Report archiving
// and the summary run afterwards and never fail the call.
func (u *doctorSessionUsecase) EndSession(ctx context.Context, clinicID, doctorID uuid.UUID, sessionName string) (*dto.EndSessionResponse, error) {
	sessionName = strings.TrimSpace(sessionName)
	if sessionName == "" {
		return nil, ErrSessionNameRequired
	}

	var (
		stats  entity.SessionStats
		closed int64
	)
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		doctor, err := u.doctorRepo.FindByIDForUpdate(ctx, tx, clinicID, doctorID)
		if err != nil {
			return err
		}
		if doctor == nil {
			return ErrDoctorNotFound
		}
		if !doctor.HasActiveSession(sessionName) {
			return ErrSessionMismatch
		}

		visits, err := u.visitRepo.FindBySession(ctx, tx, clinicID, doctorID, sessionName, sessionSince(doctor, u.now()), time.Time{})
		if err != nil {
			return err
		}
		stats = service.AggregateSessionStats(clinicID, doctorID, sessionName, visits)

		closed, err = u.entryRepo.CloseLiveForSession(ctx, tx, clinicID, doctorID, sessionName, entity.QueueStatusNoShow)
		if err != nil {
			return err
		}

		rows, err := u.doctorRepo.EndSession(ctx, tx, clinicID, doctorID, sessionName)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrSessionMismatch
		}
		return nil
	})
	if err != nil {
		return nil, logFailure(u.log, "end session of doctor", doctorID, err)
	}

	doctor, err := u.findDoctor(ctx, clinicID, doctorID)
	if err != nil {
		return nil, err
	}

	var summary, reportKey string
	closedAt := u.now()
	u.effects.run(ctx,
		sideEffect{name: "archive session report", run: func(ctx context.Context) error {
			key, err := u.integ.Archiver.Archive(ctx, service.NewSessionReport(stats, closedAt))
			reportKey = key
			return err
		}},
		sideEffect{name: "summarize session", run: func(ctx context.Context) error {
			summary = u.integ.Advisory.SummarizeSession(ctx, stats)
			return nil
		}},
		sideEffect{name: "clear token gate", run: func(ctx context.Context) error {
			return u.integ.Tokens.Clear(ctx, doctorID)
		}},
		auditEffect(ctx, u.integ, u.db, clinicID, entity.AuditActionSessionEnd, "doctor", doctorID.String(),
			map[string]interface{}{"session_name": sessionName},
			converter.SessionStatsToResponse(stats)),
		eventEffect(u.integ, service.QueueEvent{
			Type: service.EventSessionEnded, ClinicID: clinicID, DoctorID: doctorID,
			SessionName: sessionName, Status: string(doctor.Status),
		}),
	)

	u.log.Infof("Session ended: doctor=%s, session=%q, patients=%d, closed=%d", doctorID, sessionName, stats.TotalPatients, closed)
	return &dto.EndSessionResponse{
		Doctor:        *converter.DoctorToResponse(doctor),
		Stats:         converter.SessionStatsToResponse(stats),
		ClosedEntries: closed,
		Summary:       summary,
		ReportKey:     reportKey,
	}, nil
}

// GetSessionStats recomputes statistics from stored visits. Without a date it
// covers the open session, or today's occurrence of a closed one.
func (u *doctorSessionUsecase) GetSessionStats(ctx context.Context, clinicID, doctorID uuid.UUID, sessionName string, on *time.Time) (*dto.SessionStatsResponse, error) {
	sessionName = strings.TrimSpace(sessionName)
	if sessionName == "" {
		return nil, ErrSessionNameRequired
	}

	doctor, err := u.findDoctor(ctx, clinicID, doctorID)
	if err != nil {
		return nil, err
	}

	var since, until time.Time
	switch {
	case on != nil:
		y, m, d := on.Date()
		since = time.Date(y, m, d, 0, 0, 0, 0, on.Location())
		until = since.Add(24 * time.Hour)
	case doctor.HasActiveSession(sessionName):
		since = sessionSince(doctor, u.now())
	default:
		now := u.now()
		y, m, d := now.Date()
		since = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	}

	visits, err := u.visitRepo.FindBySession(ctx, u.db, clinicID, doctorID, sessionName, since, until)
	if err != nil {
		u.log.Warnf("Failed to load visits for doctor %s session %q: %+v", doctorID, sessionName, err)
		return nil, storeError(err)
	}

	resp := converter.SessionStatsToResponse(service.AggregateSessionStats(clinicID, doctorID, sessionName, visits))
	return &resp, nil
}

// SetDoctorStatus changes availability. Leaving on_leave for available goes
// through EndLeave.
func (u *doctorSessionUsecase) SetDoctorStatus(ctx context.Context, clinicID, doctorID uuid.UUID, status string) (*dto.DoctorResponse, error) {
	next := entity.DoctorStatus(status)
	if !next.IsValid() {
		return nil, ErrInvalidDoctorStatus
	}

	doctor, err := u.findDoctor(ctx, clinicID, doctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.CanTransitionTo(next) {
		return nil, ErrLeaveNotEnded
	}
	return u.changeStatus(ctx, clinicID, doctor, next)
}

func (u *doctorSessionUsecase) EndLeave(ctx context.Context, clinicID, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	doctor, err := u.findDoctor(ctx, clinicID, doctorID)
	if err != nil {
		return nil, err
	}
	if doctor.Status != entity.DoctorStatusOnLeave {
		return nil, ErrNotOnLeave
	}
	return u.changeStatus(ctx, clinicID, doctor, entity.DoctorStatusAvailable)
}

func (u *doctorSessionUsecase) changeStatus(ctx context.Context, clinicID uuid.UUID, doctor *entity.Doctor, next entity.DoctorStatus) (*dto.DoctorResponse, error) {
	previous := doctor.Status
	if previous == next {
		return converter.DoctorToResponse(doctor), nil
	}

	rows, err := u.doctorRepo.UpdateStatus(ctx, u.db, clinicID, doctor.ID, previous, next)
	if err != nil {
		u.log.Warnf("Failed to update status of doctor %s: %+v", doctor.ID, err)
		return nil, storeError(err)
	}
	if rows == 0 {
		current, err := u.findDoctor(ctx, clinicID, doctor.ID)
		if err != nil {
			return nil, err
		}
		if current.Status == next {
			return converter.DoctorToResponse(current), nil
		}
		return nil, ErrStatusRaced
	}
	doctor.Status = next

	u.effects.run(ctx,
		auditEffect(ctx, u.integ, u.db, clinicID, entity.AuditActionDoctorStatus, "doctor", doctor.ID.String(),
			map[string]interface{}{"status": previous},
			map[string]interface{}{"status": next}),
		eventEffect(u.integ, service.QueueEvent{
			Type: service.EventDoctorStatus, ClinicID: clinicID, DoctorID: doctor.ID,
			SessionName: doctor.CurrentSession, Status: string(next),
		}),
	)

	u.log.Infof("Doctor status changed: doctor=%s, %s -> %s", doctor.ID, previous, next)
	return converter.DoctorToResponse(doctor), nil
}

// AddTokens raises the doctor's token ceiling. It never creates queue entries.
func (u *doctorSessionUsecase) AddTokens(ctx context.Context, clinicID, doctorID uuid.UUID, amount int) (*dto.DoctorResponse, error) {
	if amount <= 0 {
		return nil, ErrInvalidTokenAmount
	}

	rows, err := u.doctorRepo.AddTokenLimit(ctx, u.db, clinicID, doctorID, amount)
	if err != nil {
		u.log.Warnf("Failed to add tokens for doctor %s: %+v", doctorID, err)
		return nil, storeError(err)
	}
	if rows == 0 {
		return nil, ErrDoctorNotFound
	}

	doctor, err := u.findDoctor(ctx, clinicID, doctorID)
	if err != nil {
		return nil, err
	}

	effects := []sideEffect{
		auditEffect(ctx, u.integ, u.db, clinicID, entity.AuditActionTokensAdd, "doctor", doctorID.String(), nil,
			map[string]interface{}{"amount": amount, "daily_token_limit": doctor.DailyTokenLimit}),
	}
	if doctor.SessionActive {
		effects = append(effects, sideEffect{name: "extend token gate", run: func(ctx context.Context) error {
			return u.integ.Tokens.AddDelta(ctx, doctorID, amount)
		}})
	}
	u.effects.run(ctx, effects...)

	u.log.Infof("Tokens added: doctor=%s, amount=%d, limit=%d", doctorID, amount, doctor.DailyTokenLimit)
	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorSessionUsecase) findDoctor(ctx context.Context, clinicID, doctorID uuid.UUID) (*entity.Doctor, error) {
	doctor, err := u.doctorRepo.FindByID(ctx, u.db, clinicID, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, storeError(err)
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	return doctor, nil
}
