package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionStats is derived from visit rows on demand and never stored as a
// mutable row. Figures are unrounded.
type SessionStats struct {
	ClinicID            uuid.UUID
	DoctorID            uuid.UUID
	SessionName         string
	TotalPatients       int
	Completed           int
	WaitingAtClose      int
	Called              int
	Skipped             int
	NoShow              int
	AverageWait         time.Duration
	WaitSamples         int
	AverageConsultation time.Duration
	ConsultationSamples int
	TotalRevenue        decimal.Decimal
}
