package entity

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// QueueStatus is shared by queue entries and visits
type QueueStatus string

const (
	QueueStatusWaiting   QueueStatus = "waiting"
	QueueStatusCalled    QueueStatus = "called"
	QueueStatusCompleted QueueStatus = "completed"
	QueueStatusSkipped   QueueStatus = "skipped"
	QueueStatusNoShow    QueueStatus = "no_show"
)

// IsLive reports whether the status belongs on the live queue display
func (s QueueStatus) IsLive() bool {
	return s == QueueStatusWaiting || s == QueueStatusCalled
}

// QueueEntry is a patient's place in a doctor's line. Position is derived from
// CheckInAt, never stored. SessionStarted pins the entry to one run of a
// session, since session names repeat from day to day.
type QueueEntry struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID       uuid.UUID   `gorm:"type:uuid;not null;index" json:"clinic_id"`
	DoctorID       uuid.UUID   `gorm:"type:uuid;not null;index" json:"doctor_id"`
	VisitID        uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex" json:"visit_id"`
	SessionName    string      `gorm:"type:varchar(100);not null" json:"session_name"`
	SessionStarted time.Time   `gorm:"not null" json:"session_started"`
	TokenNumber    int         `gorm:"not null" json:"token_number"`
	Status         QueueStatus `gorm:"type:varchar(20);not null;default:'waiting';index" json:"status"`
	CheckInAt      time.Time   `gorm:"not null;index" json:"check_in_at"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	Doctor *Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Visit  *Visit  `gorm:"foreignKey:VisitID" json:"visit,omitempty"`
}

func (QueueEntry) TableName() string {
	return "queue_entries"
}

func (e *QueueEntry) IsWaiting() bool {
	return e.Status == QueueStatusWaiting
}

func (e *QueueEntry) IsCalled() bool {
	return e.Status == QueueStatusCalled
}

// CanSkip allows skipping a waiting patient or the one just called
func (e *QueueEntry) CanSkip() bool {
	return e.Status == QueueStatusWaiting || e.Status == QueueStatusCalled
}

func (e *QueueEntry) CanRejoin() bool {
	return e.Status == QueueStatusSkipped || e.Status == QueueStatusNoShow
}

// statusRank puts the called patient ahead of everyone waiting
func statusRank(s QueueStatus) int {
	if s == QueueStatusCalled {
		return 0
	}
	return 1
}

// SortQueue orders entries by status (called first), then check-in time,
// then id so that identical timestamps still give a total order.
func SortQueue(entries []QueueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if ra, rb := statusRank(a.Status), statusRank(b.Status); ra != rb {
			return ra < rb
		}
		if !a.CheckInAt.Equal(b.CheckInAt) {
			return a.CheckInAt.Before(b.CheckInAt)
		}
		return a.ID.String() < b.ID.String()
	})
}
