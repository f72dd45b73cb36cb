package usecase

import (
	"context"
	"io"
	"sync"
	"time"

	"clinic-frontdesk/internal/domain/entity"
	"clinic-frontdesk/internal/domain/repository"
	"clinic-frontdesk/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// memStore backs every fake repository. failWith makes all calls fail the way
// an unreachable database would.
type memStore struct {
	mu       sync.Mutex
	doctors  map[uuid.UUID]entity.Doctor
	entries  map[uuid.UUID]entity.QueueEntry
	visits   map[uuid.UUID]entity.Visit
	patients map[uuid.UUID]entity.Patient
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		doctors:  map[uuid.UUID]entity.Doctor{},
		entries:  map[uuid.UUID]entity.QueueEntry{},
		visits:   map[uuid.UUID]entity.Visit{},
		patients: map[uuid.UUID]entity.Patient{},
	}
}

type memSnapshot struct {
	doctors  map[uuid.UUID]entity.Doctor
	entries  map[uuid.UUID]entity.QueueEntry
	visits   map[uuid.UUID]entity.Visit
	patients map[uuid.UUID]entity.Patient
}

func copyMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{copyMap(s.doctors), copyMap(s.entries), copyMap(s.visits), copyMap(s.patients)}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doctors, s.entries, s.visits, s.patients = snap.doctors, snap.entries, snap.visits, snap.patients
}

// serialTx runs one transaction at a time and rolls the store back on error
type serialTx struct {
	mu    sync.Mutex
	store *memStore
}

func (t *serialTx) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := t.store.snapshot()
	if err := fn(nil); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

type fakeDoctorRepo struct{ s *memStore }

func keepLeave(current, next entity.DoctorStatus) entity.DoctorStatus {
	if current == entity.DoctorStatusOnLeave {
		return current
	}
	return next
}

func (r fakeDoctorRepo) Create(ctx context.Context, db *gorm.DB, doctor *entity.Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return r.s.failWith
	}
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	r.s.doctors[doctor.ID] = *doctor
	return nil
}

func (r fakeDoctorRepo) FindByID(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID) (*entity.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	d, ok := r.s.doctors[id]
	if !ok || d.ClinicID != clinicID {
		return nil, nil
	}
	return &d, nil
}

func (r fakeDoctorRepo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID) (*entity.Doctor, error) {
	return r.FindByID(ctx, db, clinicID, id)
}

func (r fakeDoctorRepo) FindAll(ctx context.Context, db *gorm.DB, clinicID uuid.UUID) ([]entity.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Doctor
	for _, d := range r.s.doctors {
		if d.ClinicID == clinicID {
			out = append(out, d)
		}
	}
	return out, r.s.failWith
}

func (r fakeDoctorRepo) FindWithActiveSession(ctx context.Context, db *gorm.DB) ([]entity.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Doctor
	for _, d := range r.s.doctors {
		if d.SessionActive {
			out = append(out, d)
		}
	}
	return out, nil
}

// update applies fn to a doctor of the clinic when match accepts it
func (r fakeDoctorRepo) update(clinicID, id uuid.UUID, match func(d entity.Doctor) bool, fn func(d *entity.Doctor)) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return 0, r.s.failWith
	}
	d, ok := r.s.doctors[id]
	if !ok || d.ClinicID != clinicID || !match(d) {
		return 0, nil
	}
	fn(&d)
	r.s.doctors[id] = d
	return 1, nil
}

func (r fakeDoctorRepo) StartSession(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, sessionName string, startedAt time.Time) (int64, error) {
	return r.update(clinicID, id,
		func(d entity.Doctor) bool { return d.IsActive && !d.SessionActive },
		func(d *entity.Doctor) {
			d.CurrentSession = sessionName
			d.SessionActive = true
			d.SessionStarted = &startedAt
			d.TokensIssued = 0
			d.CurrentEntryID = nil
			d.Status = keepLeave(d.Status, entity.DoctorStatusAvailable)
		})
}

func (r fakeDoctorRepo) EndSession(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, sessionName string) (int64, error) {
	return r.update(clinicID, id,
		func(d entity.Doctor) bool { return d.HasActiveSession(sessionName) },
		func(d *entity.Doctor) {
			d.SessionActive = false
			d.CurrentEntryID = nil
			d.Status = keepLeave(d.Status, entity.DoctorStatusAvailable)
		})
}

func (r fakeDoctorRepo) SwapCurrentEntry(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, expected, next *uuid.UUID, status entity.DoctorStatus) (int64, error) {
	return r.update(clinicID, id,
		func(d entity.Doctor) bool {
			if expected == nil {
				return d.CurrentEntryID == nil
			}
			return d.CurrentEntryID != nil && *d.CurrentEntryID == *expected
		},
		func(d *entity.Doctor) {
			d.CurrentEntryID = next
			d.Status = keepLeave(d.Status, status)
		})
}

func (r fakeDoctorRepo) UpdateStatus(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, expected, next entity.DoctorStatus) (int64, error) {
	return r.update(clinicID, id,
		func(d entity.Doctor) bool { return d.Status == expected },
		func(d *entity.Doctor) { d.Status = next })
}

func (r fakeDoctorRepo) AddTokenLimit(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, amount int) (int64, error) {
	return r.update(clinicID, id,
		func(d entity.Doctor) bool { return d.IsActive },
		func(d *entity.Doctor) { d.DailyTokenLimit += amount })
}

func (r fakeDoctorRepo) IssueToken(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, sessionName string) (int, error) {
	var token int
	_, err := r.update(clinicID, id,
		func(d entity.Doctor) bool {
			return d.IsActive && d.HasActiveSession(sessionName) && d.TokensIssued < d.DailyTokenLimit
		},
		func(d *entity.Doctor) {
			d.TokensIssued++
			token = d.TokensIssued
		})
	return token, err
}

func (r fakeDoctorRepo) Deactivate(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID) (int64, error) {
	return r.update(clinicID, id,
		func(d entity.Doctor) bool { return d.IsActive && !d.SessionActive },
		func(d *entity.Doctor) { d.IsActive = false })
}

type fakeEntryRepo struct{ s *memStore }

func (r fakeEntryRepo) Create(ctx context.Context, db *gorm.DB, entry *entity.QueueEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return r.s.failWith
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	stored := *entry
	stored.Doctor, stored.Visit = nil, nil
	r.s.entries[entry.ID] = stored
	return nil
}

// withVisit mimics Preload("Visit.Patient"); callers hold the lock
func (r fakeEntryRepo) withVisit(e entity.QueueEntry) entity.QueueEntry {
	if v, ok := r.s.visits[e.VisitID]; ok {
		if p, ok := r.s.patients[v.PatientID]; ok {
			v.Patient = &p
		}
		e.Visit = &v
	}
	if d, ok := r.s.doctors[e.DoctorID]; ok {
		e.Doctor = &d
	}
	return e
}

func (r fakeEntryRepo) FindByID(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID) (*entity.QueueEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	e, ok := r.s.entries[id]
	if !ok || e.ClinicID != clinicID {
		return nil, nil
	}
	e = r.withVisit(e)
	return &e, nil
}

func (r fakeEntryRepo) FindLiveByClinic(ctx context.Context, db *gorm.DB, clinicID uuid.UUID) ([]entity.QueueEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	var out []entity.QueueEntry
	for _, e := range r.s.entries {
		if e.ClinicID == clinicID && e.Status.IsLive() {
			out = append(out, r.withVisit(e))
		}
	}
	return out, nil
}

func (r fakeEntryRepo) FindWaitingByDoctor(ctx context.Context, db *gorm.DB, clinicID, doctorID uuid.UUID, sessionName string) ([]entity.QueueEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.QueueEntry
	for _, e := range r.s.entries {
		if e.ClinicID == clinicID && e.DoctorID == doctorID && e.SessionName == sessionName && e.IsWaiting() {
			out = append(out, e)
		}
	}
	return out, r.s.failWith
}

func statusIn(s entity.QueueStatus, from []entity.QueueStatus) bool {
	for _, f := range from {
		if s == f {
			return true
		}
	}
	return false
}

func (r fakeEntryRepo) UpdateStatus(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, from []entity.QueueStatus, to entity.QueueStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return 0, r.s.failWith
	}
	e, ok := r.s.entries[id]
	if !ok || e.ClinicID != clinicID || !statusIn(e.Status, from) {
		return 0, nil
	}
	if to == entity.QueueStatusCalled {
		for _, other := range r.s.entries {
			if other.ID != id && other.DoctorID == e.DoctorID && other.IsCalled() {
				return 0, repository.ErrDuplicate
			}
		}
	}
	e.Status = to
	r.s.entries[id] = e
	return 1, nil
}

func (r fakeEntryRepo) Rejoin(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, from []entity.QueueStatus, checkInAt time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.entries[id]
	if !ok || e.ClinicID != clinicID || !statusIn(e.Status, from) {
		return 0, r.s.failWith
	}
	e.Status = entity.QueueStatusWaiting
	e.CheckInAt = checkInAt
	r.s.entries[id] = e
	return 1, nil
}

func (r fakeEntryRepo) CloseLiveForSession(ctx context.Context, db *gorm.DB, clinicID, doctorID uuid.UUID, sessionName string, to entity.QueueStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, e := range r.s.entries {
		if e.ClinicID == clinicID && e.DoctorID == doctorID && e.SessionName == sessionName && e.Status.IsLive() {
			e.Status = to
			r.s.entries[id] = e
			n++
		}
	}
	return n, r.s.failWith
}

type fakeVisitRepo struct{ s *memStore }

func (r fakeVisitRepo) Create(ctx context.Context, db *gorm.DB, visit *entity.Visit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return r.s.failWith
	}
	if visit.ID == uuid.Nil {
		visit.ID = uuid.New()
	}
	stored := *visit
	stored.Patient = nil
	r.s.visits[visit.ID] = stored
	return nil
}

func (r fakeVisitRepo) FindByID(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID) (*entity.Visit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.visits[id]
	if !ok || v.ClinicID != clinicID {
		return nil, r.s.failWith
	}
	return &v, r.s.failWith
}

func (r fakeVisitRepo) FindByPatientAndSession(ctx context.Context, db *gorm.DB, clinicID, patientID, doctorID uuid.UUID, sessionName string, since time.Time) (*entity.Visit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.visits {
		if v.ClinicID == clinicID && v.PatientID == patientID && v.DoctorID == doctorID &&
			v.SessionName == sessionName && !v.CheckInAt.Before(since) {
			return &v, nil
		}
	}
	return nil, r.s.failWith
}

func (r fakeVisitRepo) FindBySession(ctx context.Context, db *gorm.DB, clinicID, doctorID uuid.UUID, sessionName string, since, until time.Time) ([]entity.Visit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	var out []entity.Visit
	for _, v := range r.s.visits {
		if v.ClinicID != clinicID || v.DoctorID != doctorID || v.SessionName != sessionName || v.CheckInAt.Before(since) {
			continue
		}
		if !until.IsZero() && !v.CheckInAt.Before(until) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (r fakeVisitRepo) ApplyTransition(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, t repository.VisitTransition) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return r.s.failWith
	}
	v, ok := r.s.visits[id]
	if !ok || v.ClinicID != clinicID {
		return nil
	}
	v.Status = t.Status
	if t.CalledAt != nil {
		v.CalledAt = t.CalledAt
	}
	if t.CompletedAt != nil {
		v.CompletedAt = t.CompletedAt
	}
	if t.SkippedAt != nil {
		v.SkippedAt = t.SkippedAt
	}
	if t.OutOfTurn != nil {
		v.OutOfTurn = *t.OutOfTurn
	}
	if t.OutOfTurnReason != nil {
		v.OutOfTurnReason = t.OutOfTurnReason
	}
	r.s.visits[id] = v
	return nil
}

func (r fakeVisitRepo) Extend(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, minutes int, reason *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return r.s.failWith
	}
	v, ok := r.s.visits[id]
	if !ok || v.ClinicID != clinicID {
		return nil
	}
	v.ExtensionMinutes += minutes
	if reason != nil {
		v.ExtensionReason = reason
	}
	r.s.visits[id] = v
	return nil
}

type fakePatientRepo struct{ s *memStore }

func (r fakePatientRepo) Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return r.s.failWith
	}
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	r.s.patients[patient.ID] = *patient
	return nil
}

func (r fakePatientRepo) FindByID(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID) (*entity.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	p, ok := r.s.patients[id]
	if !ok || p.ClinicID != clinicID {
		return nil, nil
	}
	return &p, nil
}

func (r fakePatientRepo) FindByPhoneAndName(ctx context.Context, db *gorm.DB, clinicID uuid.UUID, phone, name string) (*entity.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.patients {
		if p.ClinicID == clinicID && p.Phone == phone && p.Name == name {
			return &p, nil
		}
	}
	return nil, r.s.failWith
}

func (r fakePatientRepo) FindByFamily(ctx context.Context, db *gorm.DB, clinicID uuid.UUID, familyID string) ([]entity.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Patient
	for _, p := range r.s.patients {
		if p.ClinicID == clinicID && p.FamilyID == familyID {
			out = append(out, p)
		}
	}
	return out, r.s.failWith
}

func (r fakePatientRepo) UpdatePhone(ctx context.Context, db *gorm.DB, clinicID, id uuid.UUID, phone, familyID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patients[id]
	if !ok || p.ClinicID != clinicID {
		return 0, r.s.failWith
	}
	p.Phone, p.FamilyID = phone, familyID
	r.s.patients[id] = p
	return 1, nil
}

// Integrations fakes

type fakeAudit struct {
	mu      sync.Mutex
	records []service.AuditRecord
	err     error
}

func (a *fakeAudit) Log(ctx context.Context, db *gorm.DB, record service.AuditRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.records = append(a.records, record)
	return nil
}

func (a *fakeAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.records))
	for i, r := range a.records {
		out[i] = r.Action
	}
	return out
}

type fakeEvents struct {
	mu     sync.Mutex
	events []service.QueueEvent
	err    error
}

func (e *fakeEvents) Publish(ctx context.Context, event service.QueueEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, event)
	return nil
}

func (e *fakeEvents) Close() error { return nil }

func (e *fakeEvents) count(eventType string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ev := range e.events {
		if ev.Type == eventType {
			n++
		}
	}
	return n
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []service.TurnNotice
}

func (n *fakeNotifier) NotifyTurn(ctx context.Context, notice service.TurnNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return nil
}

type fakeArchiver struct {
	mu      sync.Mutex
	reports []service.SessionReport
}

func (a *fakeArchiver) Archive(ctx context.Context, report service.SessionReport) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reports = append(a.reports, report)
	return "sessions/test.json", nil
}

type fakeTokens struct {
	mu         sync.Mutex
	reserveErr error
	reserves   int
	restores   int
	cleared    int
	primed     int
	deltas     []int
}

func (f *fakeTokens) Reserve(ctx context.Context, doctorID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reserves++
	return f.reserveErr
}

func (f *fakeTokens) Restore(ctx context.Context, doctorID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restores++
	return nil
}

func (f *fakeTokens) AddDelta(ctx context.Context, doctorID uuid.UUID, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deltas = append(f.deltas, delta)
	return nil
}

func (f *fakeTokens) Prime(ctx context.Context, doctor *entity.Doctor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.primed++
	return nil
}

func (f *fakeTokens) Clear(ctx context.Context, doctorID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
	return nil
}

func (f *fakeTokens) SyncOnStartup(ctx context.Context) error { return nil }
func (f *fakeTokens) Stop()                                   {}

type fakeAdvisory struct {
	priority  string
	summary   string
	extension string
}

func (a fakeAdvisory) SuggestPriority(context.Context, uuid.UUID, []entity.QueueEntry) string {
	return a.priority
}

func (a fakeAdvisory) SummarizeSession(context.Context, entity.SessionStats) string {
	return a.summary
}

func (a fakeAdvisory) SuggestExtensionReason(context.Context, *entity.QueueEntry, int) string {
	return a.extension
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// fixture wires the usecases over one in-memory clinic store
type fixture struct {
	store    *memStore
	audit    *fakeAudit
	events   *fakeEvents
	notifier *fakeNotifier
	archiver *fakeArchiver
	tokens   *fakeTokens
	clock    *fakeClock
	integ    Integrations

	queue    *queueUsecase
	sessions *doctorSessionUsecase
	doctors  *doctorUsecase
	patients *patientUsecase
}

func newFixture() *fixture {
	return newFixtureWithAdvisory(fakeAdvisory{})
}

func newFixtureWithAdvisory(advisory service.AdvisoryService) *fixture {
	f := &fixture{
		store:    newMemStore(),
		audit:    &fakeAudit{},
		events:   &fakeEvents{},
		notifier: &fakeNotifier{},
		archiver: &fakeArchiver{},
		tokens:   &fakeTokens{reserveErr: service.ErrGateCold},
		clock:    &fakeClock{t: time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)},
	}
	f.integ = Integrations{
		Audit:    f.audit,
		Events:   f.events,
		Notifier: f.notifier,
		Advisory: advisory,
		Archiver: f.archiver,
		Tokens:   f.tokens,
	}

	log := quietLogger()
	tx := &serialTx{store: f.store}
	doctorRepo := fakeDoctorRepo{f.store}
	entryRepo := fakeEntryRepo{f.store}
	visitRepo := fakeVisitRepo{f.store}
	patientRepo := fakePatientRepo{f.store}

	f.queue = NewQueueUsecase(nil, log, tx, doctorRepo, entryRepo, visitRepo, patientRepo, f.integ).(*queueUsecase)
	f.queue.now = f.clock.Now
	f.sessions = NewDoctorSessionUsecase(nil, log, tx, doctorRepo, entryRepo, visitRepo, f.integ).(*doctorSessionUsecase)
	f.sessions.now = f.clock.Now
	f.doctors = NewDoctorUsecase(nil, log, doctorRepo, f.integ).(*doctorUsecase)
	f.patients = NewPatientUsecase(nil, log, patientRepo, f.integ).(*patientUsecase)
	return f
}

func (f *fixture) addDoctor(clinicID uuid.UUID, limit int) entity.Doctor {
	d := entity.Doctor{
		ID:              uuid.New(),
		ClinicID:        clinicID,
		Name:            "Dr. Rao",
		Status:          entity.DoctorStatusAvailable,
		DailyTokenLimit: limit,
		IsActive:        true,
	}
	f.store.mu.Lock()
	f.store.doctors[d.ID] = d
	f.store.mu.Unlock()
	return d
}

func (f *fixture) doctor(id uuid.UUID) entity.Doctor {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.doctors[id]
}

func (f *fixture) entry(id uuid.UUID) entity.QueueEntry {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.entries[id]
}

func (f *fixture) visit(id uuid.UUID) entity.Visit {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.visits[id]
}

func (f *fixture) calledCount(doctorID uuid.UUID) int {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	n := 0
	for _, e := range f.store.entries {
		if e.DoctorID == doctorID && e.IsCalled() {
			n++
		}
	}
	return n
}

var (
	_ repository.DoctorRepository     = fakeDoctorRepo{}
	_ repository.QueueEntryRepository = fakeEntryRepo{}
	_ repository.VisitRepository      = fakeVisitRepo{}
	_ repository.PatientRepository    = fakePatientRepo{}
	_ service.TokenGate               = (*fakeTokens)(nil)
)
