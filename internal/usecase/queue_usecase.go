package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-frontdesk/internal/converter"
	"clinic-frontdesk/internal/delivery/dto"
	"clinic-frontdesk/internal/domain/entity"
	"clinic-frontdesk/internal/domain/repository"
	"clinic-frontdesk/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// QueueUsecase moves patients through waiting, called and the terminal
// states. Every method is scoped by the caller's clinic.
type QueueUsecase interface {
	GetQueue(ctx context.Context, clinicID uuid.UUID, withAdvice bool) (*dto.QueueResponse, error)
	CheckInPatient(ctx context.Context, clinicID uuid.UUID, req *dto.CheckInRequest) (*dto.CheckInResponse, error)
	CallPatient(ctx context.Context, clinicID, entryID uuid.UUID, req *dto.CallPatientRequest) (*dto.QueueResponse, error)
	SkipPatient(ctx context.Context, clinicID, entryID uuid.UUID) (*dto.QueueResponse, error)
	RejoinPatient(ctx context.Context, clinicID, entryID uuid.UUID) (*dto.QueueResponse, error)
	CompletePatient(ctx context.Context, clinicID, entryID uuid.UUID) (*dto.QueueResponse, error)
	MarkNoShow(ctx context.Context, clinicID, entryID uuid.UUID) (*dto.QueueResponse, error)
	ExtendConsultation(ctx context.Context, clinicID, entryID uuid.UUID, req *dto.ExtendConsultationRequest) (*dto.ExtendConsultationResponse, error)
}

type queueUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	tx          repository.Transactor
	doctorRepo  repository.DoctorRepository
	entryRepo   repository.QueueEntryRepository
	visitRepo   repository.VisitRepository
	patientRepo repository.PatientRepository
	integ       Integrations
	effects     sideEffects
	now         func() time.Time
}

func NewQueueUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	tx repository.Transactor,
	doctorRepo repository.DoctorRepository,
	entryRepo repository.QueueEntryRepository,
	visitRepo repository.VisitRepository,
	patientRepo repository.PatientRepository,
	integ Integrations,
) QueueUsecase {
	return &queueUsecase{
		db:          db,
		log:         log,
		tx:          tx,
		doctorRepo:  doctorRepo,
		entryRepo:   entryRepo,
		visitRepo:   visitRepo,
		patientRepo: patientRepo,
		integ:       integ,
		effects:     newSideEffects(log),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GetQueue returns the live entries, called first, then by check-in time.
// Advice never reorders the snapshot.
func (u *queueUsecase) GetQueue(ctx context.Context, clinicID uuid.UUID, withAdvice bool) (*dto.QueueResponse, error) {
	entries, err := u.entryRepo.FindLiveByClinic(ctx, u.db, clinicID)
	if err != nil {
		u.log.Warnf("Failed to load queue for clinic %s: %+v", clinicID, err)
		return nil, storeError(err)
	}
	entity.SortQueue(entries)

	resp := converter.QueueToResponse(clinicID, entries)
	if withAdvice {
		resp.Advice = u.integ.Advisory.SuggestPriority(ctx, clinicID, entries)
	}
	return resp, nil
}

// CheckInPatient issues the next token of the doctor's active session.
//
// Flow:
// 1. Redis reserves a token (fast rejection when the session is full)
// 2. The doctor row issues the authoritative token number
// 3. Patient is linked or registered, then visit and queue entry are created
// 4. If the transaction fails the Redis reservation is given back
func (u *queueUsecase) CheckInPatient(ctx context.Context, clinicID uuid.UUID, req *dto.CheckInRequest) (*dto.CheckInResponse, error) {
	if req.PatientID == nil && req.Name == "" {
		return nil, ErrPatientRequired
	}
	if req.Fee != nil && req.Fee.IsNegative() {
		return nil, ErrNegativeFee
	}

	doctor, err := u.doctorRepo.FindByID(ctx, u.db, clinicID, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, storeError(err)
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	if !doctor.IsActive {
		return nil, ErrDoctorInactive
	}
	if doctor.Status == entity.DoctorStatusOnLeave {
		return nil, ErrDoctorOnLeave
	}
	if !doctor.SessionActive {
		return nil, ErrSessionNotActive
	}

	reserved := false
	if err := u.integ.Tokens.Reserve(ctx, doctor.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrTokensExhausted):
			return nil, ErrTokensExhausted
		case errors.Is(err, service.ErrGateCold):
		default:
			u.log.Warnf("Token gate unavailable for doctor %s, using database only: %+v", doctor.ID, err)
		}
	} else {
		reserved = true
	}

	var (
		entry   *entity.QueueEntry
		visit   *entity.Visit
		patient *entity.Patient
		locked  *entity.Doctor
	)
	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		tokenNumber, err := u.doctorRepo.IssueToken(ctx, tx, clinicID, doctor.ID, doctor.CurrentSession)
		if err != nil {
			return err
		}

		locked, err = u.doctorRepo.FindByID(ctx, tx, clinicID, doctor.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrDoctorNotFound
		}
		if tokenNumber == 0 {
			if !locked.HasActiveSession(doctor.CurrentSession) {
				return ErrSessionNotActive
			}
			return ErrTokensExhausted
		}

		patient, err = u.resolvePatient(ctx, tx, clinicID, req)
		if err != nil {
			return err
		}

		now := u.now()
		since := sessionSince(locked, now)
		existing, err := u.visitRepo.FindByPatientAndSession(ctx, tx, clinicID, patient.ID, locked.ID, locked.CurrentSession, since)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyCheckedIn
		}

		visit = &entity.Visit{
			ClinicID:    clinicID,
			PatientID:   patient.ID,
			DoctorID:    locked.ID,
			SessionName: locked.CurrentSession,
			Status:      entity.QueueStatusWaiting,
			CheckInAt:   now,
			Fee:         req.Fee,
		}
		if err := u.visitRepo.Create(ctx, tx, visit); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyCheckedIn
			}
			return err
		}

		entry = &entity.QueueEntry{
			ClinicID:       clinicID,
			DoctorID:       locked.ID,
			VisitID:        visit.ID,
			SessionName:    locked.CurrentSession,
			SessionStarted: since,
			TokenNumber:    tokenNumber,
			Status:         entity.QueueStatusWaiting,
			CheckInAt:      now,
		}
		return u.entryRepo.Create(ctx, tx, entry)
	})
	if err != nil {
		if reserved {
			u.restoreToken(ctx, doctor.ID)
		}
		return nil, logFailure(u.log, "check in patient for doctor", doctor.ID, err)
	}

	visit.Patient = patient
	entry.Visit = visit
	entry.Doctor = locked

	u.effects.run(ctx,
		auditEffect(ctx, u.integ, u.db, clinicID, entity.AuditActionPatientCheckIn, "queue_entry", entry.ID.String(), nil, entry),
		eventEffect(u.integ, service.QueueEvent{
			Type: service.EventPatientCheckedIn, ClinicID: clinicID, DoctorID: entry.DoctorID,
			EntryID: &entry.ID, SessionName: entry.SessionName, TokenNumber: entry.TokenNumber, Status: string(entry.Status),
		}),
	)

	u.log.Infof("Patient checked in: entry=%s, doctor=%s, token=%d", entry.ID, entry.DoctorID, entry.TokenNumber)
	return &dto.CheckInResponse{
		Entry:    *converter.QueueEntryToResponse(entry, 0),
		FamilyID: patient.FamilyID,
	}, nil
}

// CallPatient moves a waiting entry to called. Whoever the doctor had in
// consultation is completed first. Both steps run under the doctor row lock,
// and the doctor's current entry pointer is swapped with a compare-and-swap.
func (u *queueUsecase) CallPatient(ctx context.Context, clinicID, entryID uuid.UUID, req *dto.CallPatientRequest) (*dto.QueueResponse, error) {
	if req == nil {
		req = &dto.CallPatientRequest{}
	}

	var (
		called    *entity.QueueEntry
		doctor    *entity.Doctor
		completed *uuid.UUID
		outOfTurn bool
	)
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		entry, locked, err := u.lockEntry(ctx, tx, clinicID, entryID)
		if err != nil {
			return err
		}
		doctor = locked

		if req.DoctorID != nil && *req.DoctorID != entry.DoctorID {
			return ErrDoctorMismatch
		}
		if !entry.IsWaiting() {
			return ErrEntryNotWaiting
		}
		if !doctor.IsActive {
			return ErrDoctorInactive
		}
		if doctor.Status == entity.DoctorStatusOnLeave {
			return ErrDoctorOnLeave
		}
		if !doctor.HoldsEntry(entry) {
			return ErrSessionNotActive
		}

		now := u.now()

		waiting, err := u.entryRepo.FindWaitingByDoctor(ctx, tx, clinicID, doctor.ID, entry.SessionName)
		if err != nil {
			return err
		}
		entity.SortQueue(waiting)
		outOfTurn = len(waiting) > 0 && waiting[0].ID != entry.ID

		if doctor.CurrentEntryID != nil {
			ok, err := u.completePrevious(ctx, tx, clinicID, *doctor.CurrentEntryID, now)
			if err != nil {
				return err
			}
			if ok {
				completed = doctor.CurrentEntryID
			}
		}

		rows, err := u.entryRepo.UpdateStatus(ctx, tx, clinicID, entry.ID, []entity.QueueStatus{entity.QueueStatusWaiting}, entity.QueueStatusCalled)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrCallRaced
			}
			return err
		}
		if rows == 0 {
			return ErrCallRaced
		}

		transition := repository.VisitTransition{
			Status:    entity.QueueStatusCalled,
			CalledAt:  &now,
			OutOfTurn: &outOfTurn,
		}
		if outOfTurn && req.Reason != nil && *req.Reason != "" {
			transition.OutOfTurnReason = req.Reason
		}
		if err := u.visitRepo.ApplyTransition(ctx, tx, clinicID, entry.VisitID, transition); err != nil {
			return err
		}

		rows, err = u.doctorRepo.SwapCurrentEntry(ctx, tx, clinicID, doctor.ID, doctor.CurrentEntryID, &entry.ID, entity.DoctorStatusBusy)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrCallRaced
		}

		entry.Status = entity.QueueStatusCalled
		called = entry
		return nil
	})
	if err != nil {
		return nil, u.transitionError("call", entryID, err)
	}

	effects := []sideEffect{
		auditEffect(ctx, u.integ, u.db, clinicID, entity.AuditActionPatientCall, "queue_entry", called.ID.String(),
			map[string]interface{}{"status": entity.QueueStatusWaiting},
			map[string]interface{}{"status": entity.QueueStatusCalled, "out_of_turn": outOfTurn, "completed_entry_id": completed}),
		eventEffect(u.integ, service.QueueEvent{
			Type: service.EventPatientCalled, ClinicID: clinicID, DoctorID: called.DoctorID,
			EntryID: &called.ID, SessionName: called.SessionName, TokenNumber: called.TokenNumber, Status: string(entity.QueueStatusCalled),
		}),
		u.notifyEffect(clinicID, called, doctor),
	}
	if completed != nil {
		effects = append(effects, eventEffect(u.integ, service.QueueEvent{
			Type: service.EventPatientCompleted, ClinicID: clinicID, DoctorID: called.DoctorID,
			EntryID: completed, SessionName: called.SessionName, Status: string(entity.QueueStatusCompleted),
		}))
	}
	u.effects.run(ctx, effects...)

	u.log.Infof("Patient called: entry=%s, doctor=%s, token=%d, out_of_turn=%t", called.ID, called.DoctorID, called.TokenNumber, outOfTurn)
	return u.GetQueue(ctx, clinicID, false)
}

// SkipPatient takes a waiting or called patient out of the live queue
func (u *queueUsecase) SkipPatient(ctx context.Context, clinicID, entryID uuid.UUID) (*dto.QueueResponse, error) {
	var skipped *entity.QueueEntry
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		entry, doctor, err := u.lockEntry(ctx, tx, clinicID, entryID)
		if err != nil {
			return err
		}
		if !entry.CanSkip() {
			return ErrEntryNotSkippable
		}

		now := u.now()
		if err := u.moveEntry(ctx, tx, clinicID, entry, doctor,
			[]entity.QueueStatus{entity.QueueStatusWaiting, entity.QueueStatusCalled}, entity.QueueStatusSkipped,
			repository.VisitTransition{Status: entity.QueueStatusSkipped, SkippedAt: &now}); err != nil {
			return err
		}
		skipped = entry
		return nil
	})
	if err != nil {
		return nil, u.transitionError("skip", entryID, err)
	}

	u.announce(ctx, clinicID, skipped, entity.AuditActionPatientSkip, service.EventPatientSkipped)
	u.log.Infof("Patient skipped: entry=%s, doctor=%s", skipped.ID, skipped.DoctorID)
	return u.GetQueue(ctx, clinicID, false)
}

// RejoinPatient puts a skipped or no-show patient at the back of the line
func (u *queueUsecase) RejoinPatient(ctx context.Context, clinicID, entryID uuid.UUID) (*dto.QueueResponse, error) {
	var rejoined *entity.QueueEntry
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		entry, doctor, err := u.lockEntry(ctx, tx, clinicID, entryID)
		if err != nil {
			return err
		}
		if !entry.CanRejoin() {
			return ErrEntryNotRejoinable
		}
		if !doctor.HoldsEntry(entry) {
			return ErrSessionNotActive
		}

		rows, err := u.entryRepo.Rejoin(ctx, tx, clinicID, entry.ID,
			[]entity.QueueStatus{entity.QueueStatusSkipped, entity.QueueStatusNoShow}, u.now())
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrQueueChanged
		}
		if err := u.visitRepo.ApplyTransition(ctx, tx, clinicID, entry.VisitID,
			repository.VisitTransition{Status: entity.QueueStatusWaiting}); err != nil {
			return err
		}

		entry.Status = entity.QueueStatusWaiting
		rejoined = entry
		return nil
	})
	if err != nil {
		return nil, u.transitionError("rejoin", entryID, err)
	}

	u.announce(ctx, clinicID, rejoined, entity.AuditActionPatientRejoin, service.EventPatientRejoined)
	u.log.Infof("Patient rejoined: entry=%s, doctor=%s", rejoined.ID, rejoined.DoctorID)
	return u.GetQueue(ctx, clinicID, false)
}

// CompletePatient ends the consultation of the called patient
func (u *queueUsecase) CompletePatient(ctx context.Context, clinicID, entryID uuid.UUID) (*dto.QueueResponse, error) {
	var done *entity.QueueEntry
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		entry, doctor, err := u.lockEntry(ctx, tx, clinicID, entryID)
		if err != nil {
			return err
		}
		if !entry.IsCalled() {
			return ErrEntryNotCalled
		}

		now := u.now()
		if err := u.moveEntry(ctx, tx, clinicID, entry, doctor,
			[]entity.QueueStatus{entity.QueueStatusCalled}, entity.QueueStatusCompleted,
			repository.VisitTransition{Status: entity.QueueStatusCompleted, CompletedAt: &now}); err != nil {
			return err
		}
		done = entry
		return nil
	})
	if err != nil {
		return nil, u.transitionError("complete", entryID, err)
	}

	u.announce(ctx, clinicID, done, entity.AuditActionPatientComplete, service.EventPatientCompleted)
	u.log.Infof("Patient completed: entry=%s, doctor=%s", done.ID, done.DoctorID)
	return u.GetQueue(ctx, clinicID, false)
}

// MarkNoShow records that a waiting or called patient did not turn up
func (u *queueUsecase) MarkNoShow(ctx context.Context, clinicID, entryID uuid.UUID) (*dto.QueueResponse, error) {
	var missed *entity.QueueEntry
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		entry, doctor, err := u.lockEntry(ctx, tx, clinicID, entryID)
		if err != nil {
			return err
		}
		if !entry.CanSkip() {
			return ErrEntryNotWaiting
		}

		if err := u.moveEntry(ctx, tx, clinicID, entry, doctor,
			[]entity.QueueStatus{entity.QueueStatusWaiting, entity.QueueStatusCalled}, entity.QueueStatusNoShow,
			repository.VisitTransition{Status: entity.QueueStatusNoShow}); err != nil {
			return err
		}
		missed = entry
		return nil
	})
	if err != nil {
		return nil, u.transitionError("mark no-show", entryID, err)
	}

	u.announce(ctx, clinicID, missed, entity.AuditActionPatientNoShow, service.EventPatientNoShow)
	u.log.Infof("Patient marked no-show: entry=%s, doctor=%s", missed.ID, missed.DoctorID)
	return u.GetQueue(ctx, clinicID, false)
}

// ExtendConsultation adds minutes to the running consultation. Without a
// reason, a suggestion is requested in parallel and attached if it arrives
// within the advisory deadline.
func (u *queueUsecase) ExtendConsultation(ctx context.Context, clinicID, entryID uuid.UUID, req *dto.ExtendConsultationRequest) (*dto.ExtendConsultationResponse, error) {
	if req.Minutes <= 0 {
		return nil, ErrInvalidExtension
	}

	current, err := u.entryRepo.FindByID(ctx, u.db, clinicID, entryID)
	if err != nil {
		u.log.Warnf("Failed to find queue entry %s: %+v", entryID, err)
		return nil, storeError(err)
	}
	if current == nil {
		return nil, ErrQueueEntryNotFound
	}
	if !current.IsCalled() {
		return nil, ErrEntryNotCalled
	}

	var suggestion string
	var g errgroup.Group
	if req.Reason == nil || *req.Reason == "" {
		g.Go(func() error {
			suggestion = u.integ.Advisory.SuggestExtensionReason(ctx, current, req.Minutes)
			return nil
		})
	}

	var total int
	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		entry, _, err := u.lockEntry(ctx, tx, clinicID, entryID)
		if err != nil {
			return err
		}
		if !entry.IsCalled() {
			return ErrEntryNotCalled
		}
		if err := u.visitRepo.Extend(ctx, tx, clinicID, entry.VisitID, req.Minutes, req.Reason); err != nil {
			return err
		}
		total = req.Minutes
		if entry.Visit != nil {
			total += entry.Visit.ExtensionMinutes
		}
		return nil
	})
	_ = g.Wait()
	if err != nil {
		return nil, u.transitionError("extend", entryID, err)
	}

	resp := &dto.ExtendConsultationResponse{
		EntryID:          entryID,
		ExtensionMinutes: total,
		SuggestedReason:  suggestion,
	}
	if req.Reason != nil {
		resp.Reason = *req.Reason
	}

	u.effects.run(ctx,
		auditEffect(ctx, u.integ, u.db, clinicID, entity.AuditActionConsultExtend, "queue_entry", entryID.String(), nil,
			map[string]interface{}{"minutes": req.Minutes, "total_minutes": total, "reason": resp.Reason}),
		eventEffect(u.integ, service.QueueEvent{
			Type: service.EventConsultExtended, ClinicID: clinicID, DoctorID: current.DoctorID,
			EntryID: &entryID, SessionName: current.SessionName, TokenNumber: current.TokenNumber, Status: string(entity.QueueStatusCalled),
		}),
	)

	u.log.Infof("Consultation extended: entry=%s, minutes=%d, total=%d", entryID, req.Minutes, total)
	return resp, nil
}

// lockEntry locks the entry's doctor row and re-reads the entry under the lock
func (u *queueUsecase) lockEntry(ctx context.Context, tx *gorm.DB, clinicID, entryID uuid.UUID) (*entity.QueueEntry, *entity.Doctor, error) {
	entry, err := u.entryRepo.FindByID(ctx, tx, clinicID, entryID)
	if err != nil {
		return nil, nil, err
	}
	if entry == nil {
		return nil, nil, ErrQueueEntryNotFound
	}

	doctor, err := u.doctorRepo.FindByIDForUpdate(ctx, tx, clinicID, entry.DoctorID)
	if err != nil {
		return nil, nil, err
	}
	if doctor == nil {
		return nil, nil, ErrDoctorNotFound
	}

	entry, err = u.entryRepo.FindByID(ctx, tx, clinicID, entryID)
	if err != nil {
		return nil, nil, err
	}
	if entry == nil {
		return nil, nil, ErrQueueEntryNotFound
	}
	return entry, doctor, nil
}

// moveEntry applies a status change and frees the doctor when the entry was
// the one in consultation.
func (u *queueUsecase) moveEntry(ctx context.Context, tx *gorm.DB, clinicID uuid.UUID, entry *entity.QueueEntry, doctor *entity.Doctor, from []entity.QueueStatus, to entity.QueueStatus, visit repository.VisitTransition) error {
	rows, err := u.entryRepo.UpdateStatus(ctx, tx, clinicID, entry.ID, from, to)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrQueueChanged
	}

	if err := u.visitRepo.ApplyTransition(ctx, tx, clinicID, entry.VisitID, visit); err != nil {
		return err
	}

	if doctor.CurrentEntryID != nil && *doctor.CurrentEntryID == entry.ID {
		rows, err := u.doctorRepo.SwapCurrentEntry(ctx, tx, clinicID, doctor.ID, &entry.ID, nil, entity.DoctorStatusAvailable)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrQueueChanged
		}
	}

	entry.Status = to
	return nil
}

// completePrevious completes the doctor's current entry. A pointer to an
// entry that is no longer called is left for the swap to overwrite.
func (u *queueUsecase) completePrevious(ctx context.Context, tx *gorm.DB, clinicID, prevID uuid.UUID, now time.Time) (bool, error) {
	prev, err := u.entryRepo.FindByID(ctx, tx, clinicID, prevID)
	if err != nil {
		return false, err
	}
	if prev == nil || !prev.IsCalled() {
		return false, nil
	}

	rows, err := u.entryRepo.UpdateStatus(ctx, tx, clinicID, prevID, []entity.QueueStatus{entity.QueueStatusCalled}, entity.QueueStatusCompleted)
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, ErrCallRaced
	}

	err = u.visitRepo.ApplyTransition(ctx, tx, clinicID, prev.VisitID, repository.VisitTransition{
		Status:      entity.QueueStatusCompleted,
		CompletedAt: &now,
	})
	return err == nil, err
}

func (u *queueUsecase) resolvePatient(ctx context.Context, tx *gorm.DB, clinicID uuid.UUID, req *dto.CheckInRequest) (*entity.Patient, error) {
	if req.PatientID != nil {
		patient, err := u.patientRepo.FindByID(ctx, tx, clinicID, *req.PatientID)
		if err != nil {
			return nil, err
		}
		if patient == nil {
			return nil, ErrPatientNotFound
		}
		return patient, nil
	}

	if req.Phone != "" {
		existing, err := u.patientRepo.FindByPhoneAndName(ctx, tx, clinicID, req.Phone, req.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	patient := &entity.Patient{ClinicID: clinicID, Name: req.Name}
	patient.SetPhone(req.Phone)
	if err := u.patientRepo.Create(ctx, tx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (u *queueUsecase) restoreToken(ctx context.Context, doctorID uuid.UUID) {
	restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := u.integ.Tokens.Restore(restoreCtx, doctorID); err != nil {
		u.log.Errorf("CRITICAL: Failed to restore Redis token after DB failure for doctor %s: %+v", doctorID, err)
	}
}

func (u *queueUsecase) transitionError(action string, entryID uuid.UUID, err error) error {
	return logFailure(u.log, action+" queue entry", entryID, err)
}

func (u *queueUsecase) announce(ctx context.Context, clinicID uuid.UUID, entry *entity.QueueEntry, action, eventType string) {
	u.effects.run(ctx,
		auditEffect(ctx, u.integ, u.db, clinicID, action, "queue_entry", entry.ID.String(), nil,
			map[string]interface{}{"status": entry.Status}),
		eventEffect(u.integ, service.QueueEvent{
			Type: eventType, ClinicID: clinicID, DoctorID: entry.DoctorID,
			EntryID: &entry.ID, SessionName: entry.SessionName, TokenNumber: entry.TokenNumber, Status: string(entry.Status),
		}),
	)
}

func (u *queueUsecase) notifyEffect(clinicID uuid.UUID, entry *entity.QueueEntry, doctor *entity.Doctor) sideEffect {
	return sideEffect{name: "notify patient", run: func(ctx context.Context) error {
		if entry.Visit == nil {
			return nil
		}
		patient, err := u.patientRepo.FindByID(ctx, u.db, clinicID, entry.Visit.PatientID)
		if err != nil || patient == nil {
			return err
		}
		return u.integ.Notifier.NotifyTurn(ctx, service.TurnNotice{
			ClinicID:    clinicID,
			EntryID:     entry.ID,
			PatientName: patient.Name,
			Phone:       patient.Phone,
			DoctorName:  doctor.Name,
			TokenNumber: entry.TokenNumber,
		})
	}}
}

// sessionSince is the lower bound for visits of the doctor's current session
func sessionSince(doctor *entity.Doctor, now time.Time) time.Time {
	if doctor.SessionStarted != nil {
		return *doctor.SessionStarted
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
