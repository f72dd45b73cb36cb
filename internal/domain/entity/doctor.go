package entity

import (
	"time"

	"github.com/google/uuid"
)

// DoctorStatus represents a doctor's availability at the front desk
type DoctorStatus string

const (
	DoctorStatusAvailable DoctorStatus = "available"
	DoctorStatusBusy      DoctorStatus = "busy"
	DoctorStatusOnLeave   DoctorStatus = "on_leave"
)

func (s DoctorStatus) IsValid() bool {
	switch s {
	case DoctorStatusAvailable, DoctorStatusBusy, DoctorStatusOnLeave:
		return true
	}
	return false
}

// Doctor owns the working session and the pointer to the entry currently in
// consultation. CurrentEntryID is the compare-and-swap target for calls.
type Doctor struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID        uuid.UUID    `gorm:"type:uuid;not null;index" json:"clinic_id"`
	Name            string       `gorm:"type:varchar(255);not null" json:"name"`
	Specialty       string       `gorm:"type:varchar(100)" json:"specialty,omitempty"`
	Status          DoctorStatus `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	CurrentSession  string       `gorm:"type:varchar(100)" json:"current_session,omitempty"`
	SessionActive   bool         `gorm:"not null;default:false" json:"session_active"`
	SessionStarted  *time.Time   `json:"session_started,omitempty"`
	DailyTokenLimit int          `gorm:"not null;default:0" json:"daily_token_limit"`
	TokensIssued    int          `gorm:"not null;default:0" json:"tokens_issued"`
	CurrentEntryID  *uuid.UUID   `gorm:"type:uuid" json:"current_entry_id,omitempty"`
	IsActive        bool         `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt       time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// HasActiveSession reports whether the doctor is inside the named session
func (d *Doctor) HasActiveSession(name string) bool {
	return d.SessionActive && d.CurrentSession == name
}

// HoldsEntry reports whether the entry was issued by the session the doctor
// is running now, not an earlier run under the same name.
func (d *Doctor) HoldsEntry(e *QueueEntry) bool {
	if !d.HasActiveSession(e.SessionName) || d.SessionStarted == nil {
		return false
	}
	return !e.SessionStarted.Before(*d.SessionStarted)
}

// RemainingTokens is how many check-ins the current session can still take
func (d *Doctor) RemainingTokens() int {
	remaining := d.DailyTokenLimit - d.TokensIssued
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CanTransitionTo enforces that a doctor on leave must end the leave
// explicitly before becoming available again.
func (d *Doctor) CanTransitionTo(next DoctorStatus) bool {
	return !(d.Status == DoctorStatusOnLeave && next == DoctorStatusAvailable)
}
